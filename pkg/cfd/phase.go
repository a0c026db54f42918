// Package cfd builds cumulative flow diagram series from per-order phase
// completion timestamps.
package cfd

import "fmt"

// Phase is one of the fixed pizzeria process stages, in completion order.
type Phase int

// Process phases. The order is significant: an order completes them left to right.
const (
	AwaitingPreparation Phase = iota
	InPreparation
	AwaitingPackaging
	InPackaging
	AwaitingDelivery
	Delivered
)

// NumPhases is the number of process phases carried by every order.
const NumPhases = 6

var phaseKeys = [NumPhases]string{
	"awaiting_preparation",
	"in_preparation",
	"awaiting_packaging",
	"in_packaging",
	"awaiting_delivery",
	"delivered",
}

var phaseNames = [NumPhases]string{
	"Awaiting preparation",
	"In preparation",
	"Awaiting packaging",
	"In packaging",
	"Awaiting delivery",
	"Delivered",
}

// Chart colors, darkest for delivered so the finished band sits at the bottom.
var phaseColors = [NumPhases]string{
	"rgb(255, 232, 100)",
	"rgb(255, 174, 0)",
	"rgb(255, 123, 0)",
	"rgb(255, 51, 0)",
	"rgb(23, 165, 42)",
	"rgb(0, 100, 18)",
}

// Phases returns all phases in completion order.
func Phases() []Phase {
	return []Phase{AwaitingPreparation, InPreparation, AwaitingPackaging, InPackaging, AwaitingDelivery, Delivered}
}

// StackOrder returns all phases in chart stacking order (delivered first).
func StackOrder() []Phase {
	return []Phase{Delivered, AwaitingDelivery, InPackaging, AwaitingPackaging, InPreparation, AwaitingPreparation}
}

// Valid reports whether p is a known phase.
func (p Phase) Valid() bool {
	return p >= AwaitingPreparation && p <= Delivered
}

// Key returns the snake_case identifier used in files and APIs.
func (p Phase) Key() string {
	if !p.Valid() {
		return fmt.Sprintf("phase_%d", int(p))
	}

	return phaseKeys[p]
}

// String returns the display name of the phase.
func (p Phase) String() string {
	if !p.Valid() {
		return fmt.Sprintf("Phase(%d)", int(p))
	}

	return phaseNames[p]
}

// Color returns the chart color assigned to the phase.
func (p Phase) Color() string {
	if !p.Valid() {
		return ""
	}

	return phaseColors[p]
}

// stackIndex maps a phase to its slot in a Counts vector.
func (p Phase) stackIndex() int {
	return NumPhases - 1 - int(p)
}

// ParsePhase resolves a phase from its key.
func ParsePhase(key string) (Phase, error) {
	for i, k := range phaseKeys {
		if k == key {
			return Phase(i), nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrUnknownPhase, key)
}
