package assess

import (
	"math"
	"sync/atomic"
)

// DefaultThreshold is the threshold pre-selected on the form and used by API
// callers that omit one. It is swapped when the config file is reloaded.
type DefaultThreshold struct {
	bits atomic.Uint64
}

// NewDefaultThreshold returns a DefaultThreshold holding t.
func NewDefaultThreshold(t float64) *DefaultThreshold {
	d := &DefaultThreshold{}
	d.Store(t)
	return d
}

// Load returns the current default.
func (d *DefaultThreshold) Load() float64 {
	return math.Float64frombits(d.bits.Load())
}

// Store replaces the default.
func (d *DefaultThreshold) Store(t float64) {
	d.bits.Store(math.Float64bits(t))
}
