package cfd_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/flowdeck/pkg/cfd"
)

func TestDataSpan(t *testing.T) {
	t.Parallel()

	orders := []cfd.Order{
		orderAt(baseTime.Add(minutes(25)), 0, 5, 8, 11, 26, 41),
		orderAt(baseTime.Add(minutes(90)), 0, 1, 2, 3, 4, 5),
	}
	orders[1][cfd.Delivered] = "garbage"

	cfg, ok := cfd.DataSpan(orders, nil)
	require.True(t, ok)

	assert.True(t, cfg.Start.Equal(baseTime))
	assert.True(t, cfg.End.Equal(baseTime.Add(minutes(94))))
	require.NoError(t, cfg.Validate())
}

func TestDataSpan_NothingParses(t *testing.T) {
	t.Parallel()

	_, ok := cfd.DataSpan([]cfd.Order{{"x", "", "", "", "", ""}}, time.UTC)
	assert.False(t, ok)

	_, ok = cfd.DataSpan(nil, time.UTC)
	assert.False(t, ok)
}
