package cfd

import "time"

// Counts holds one cumulative count per phase in stack order:
// index 0 is Delivered, index NumPhases-1 is AwaitingPreparation.
type Counts [NumPhases]int

// Point is the cumulative state of all phases at one bucket.
type Point struct {
	Time   time.Time `json:"time"`
	Counts Counts    `json:"counts"`
}

// Count returns the number of orders that completed phase p by the point's time.
func (pt Point) Count(p Phase) int {
	if !p.Valid() {
		return 0
	}

	return pt.Counts[p.stackIndex()]
}

// RejectedEntry records an order-phase timestamp dropped during aggregation.
type RejectedEntry struct {
	Order int    `json:"order"`
	Phase Phase  `json:"phase"`
	Raw   string `json:"raw"`
	Err   error  `json:"-"`
}

// Series is a gap-free cumulative flow series over a bucket axis.
type Series struct {
	Points   []Point         `json:"points"`
	Rejected []RejectedEntry `json:"rejected,omitempty"`
	Orders   int             `json:"orders"`
}

// Empty reports whether every count at every bucket is zero.
func (s *Series) Empty() bool {
	if s == nil {
		return true
	}

	for _, pt := range s.Points {
		if pt.Counts != (Counts{}) {
			return false
		}
	}

	return true
}

// Phase extracts the count sequence of a single phase across all points.
func (s *Series) Phase(p Phase) []int {
	if s == nil {
		return nil
	}

	out := make([]int, len(s.Points))

	for i, pt := range s.Points {
		out[i] = pt.Count(p)
	}

	return out
}

// Last returns the final point, or a zero point for an empty series.
func (s *Series) Last() Point {
	if s == nil || len(s.Points) == 0 {
		return Point{}
	}

	return s.Points[len(s.Points)-1]
}
