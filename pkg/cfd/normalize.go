package cfd

import (
	"fmt"
	"strings"
	"time"
)

// zonedLayouts carry their own offset; localLayouts are read in the reference zone.
var (
	zonedLayouts = []string{
		time.RFC3339Nano,
		time.RFC3339,
	}
	localLayouts = []string{
		"2006-01-02T15:04:05.999999999",
		"2006-01-02T15:04:05",
		"2006-01-02T15:04",
		"2006-01-02 15:04:05",
		"2006-01-02 15:04",
	}
)

// Normalizer parses raw timestamps and truncates them to minute precision
// in a fixed reference zone.
type Normalizer struct {
	loc *time.Location
}

// NewNormalizer returns a normalizer for the given zone. Nil means UTC.
func NewNormalizer(loc *time.Location) Normalizer {
	if loc == nil {
		loc = time.UTC
	}

	return Normalizer{loc: loc}
}

// Location returns the reference zone.
func (n Normalizer) Location() *time.Location {
	if n.loc == nil {
		return time.UTC
	}

	return n.loc
}

// Normalize parses raw and returns it truncated to the minute in the reference zone.
// Two inputs within the same minute yield equal values.
func (n Normalizer) Normalize(raw string) (time.Time, error) {
	t, err := n.parse(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, err
	}

	return n.Truncate(t), nil
}

// Truncate converts t into the reference zone and drops seconds and below.
func (n Normalizer) Truncate(t time.Time) time.Time {
	t = t.In(n.Location())

	return time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), 0, 0, t.Location())
}

func (n Normalizer) parse(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrInvalidTimestamp)
	}

	for _, layout := range zonedLayouts {
		t, err := time.Parse(layout, raw)
		if err == nil {
			return t, nil
		}
	}

	for _, layout := range localLayouts {
		t, err := time.ParseInLocation(layout, raw, n.Location())
		if err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}
