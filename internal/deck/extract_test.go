package deck

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractChartContent(t *testing.T) {
	t.Parallel()

	page := `<!DOCTYPE html><html><head><style>.x{}</style></head><body>` +
		`<div class="container"><div class="item" id="c1"></div></div>` +
		`<style>.container{}</style><script>init()</script></body></html>`

	got := extractChartContent(page)

	assert.Equal(t, `<div class="echart-box"><div class="item" id="c1"></div></div><script>init()</script>`, got)
	assert.Equal(t, "<p>fragment</p>", extractChartContent("<p>fragment</p>"))
	assert.Equal(t, "<!DOCTYPE html><body></body>", extractChartContent("<!DOCTYPE html><body></body>"))
}
