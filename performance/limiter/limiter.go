// This file is part of DynGB.
//
// DynGB is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// DynGB is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with DynGB.  If not, see <https://www.gnu.org/licenses/>.

// Package limiter provides a rough and ready way of limiting events to
// a fixed rate. The SDL shell uses it to pace frame presentation at the
// console's refresh rate.
//
// A new Limiter is created with:
//
//	lim := limiter.NewLimiter(59.73)
//
// Operations are then stalled with the Wait() function:
//
//	for {
//		lim.Wait()
//		renderImage()
//	}
package limiter

import (
	"time"
)

// Limiter ticks at the requested rate. Only any good if base
// performance is well above that rate.
type Limiter struct {
	perTick time.Duration
	tick    chan bool
}

// NewLimiter is the preferred method of initialisation for the Limiter
// type.
func NewLimiter(perSecond float64) *Limiter {
	lim := &Limiter{
		perTick: time.Duration(float64(time.Second) / perSecond),
		tick:    make(chan bool),
	}

	// the ticker adjusts its sleep by the measured drift of the
	// previous tick
	go func() {
		adjusted := lim.perTick
		t := time.Now()
		for {
			lim.tick <- true
			time.Sleep(adjusted)
			nt := time.Now()
			adjusted -= nt.Sub(t) - lim.perTick
			t = nt
		}
	}()

	return lim
}

// Wait blocks until the next tick.
func (lim *Limiter) Wait() {
	<-lim.tick
}
