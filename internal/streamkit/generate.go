// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package streamkit provides the two small concurrency primitives the
// bottle reader needs to expose "a lazy sequence of byte streams, plus a
// future that resolves to whatever comes after the sequence ends": a
// step-function-driven generator with a paired completion handle, and a
// prefix/remainder stream splitter.
//
// Both are the idiomatic-Go shape of what an async-Rust implementation
// would build out of a hand-rolled state cell behind a mutex and a
// runtime waker: a goroutine plus a channel already is that rendezvous
// point, so these are implemented directly on top of them rather than
// reinventing a polling state machine.
package streamkit

import "sync"

// Generator pulls items from a step function on a private goroutine and
// exposes them one at a time over Items(). Once the step function signals
// it has no more items, Generator closes the Items channel and the
// paired Completion resolves to the residual state.
type Generator[S any, I any] struct {
	items <-chan I
}

// Completion resolves to the generator's final state once the item
// sequence has been fully drained by the consumer.
type Completion[S any] struct {
	done  <-chan S
	once  sync.Once
	final S
}

// Step advances from state, either producing an item and the state to use
// for the next Step call, or reporting that there are no more items (ok
// == false) along with the final state. Generator itself is error-agnostic:
// callers that need to surface a failure encode it into I (the bottle
// package's frameEvent does this).
type Step[S any, I any] func(state S) (item I, ok bool, next S)

// Generate starts a generator from initial, driven by step. The step
// function runs on its own goroutine; Items() is safe to range over from
// the calling goroutine, and Wait on the returned Completion resolves once
// step has reported ok == false, which happens only after the consumer has
// received the last item.
func Generate[S any, I any](initial S, step Step[S, I]) (*Generator[S, I], *Completion[S]) {
	items := make(chan I)
	done := make(chan S, 1)

	go func() {
		defer close(items)
		state := initial
		for {
			item, ok, next := step(state)
			state = next
			if !ok {
				done <- state
				return
			}
			items <- item
		}
	}()

	return &Generator[S, I]{items: items}, &Completion[S]{done: done}
}

// Items returns the channel of produced items. It is closed once the step
// function reports ok == false.
func (g *Generator[S, I]) Items() <-chan I { return g.items }

// Wait blocks until the generator has produced its final state, i.e.
// until the consumer has drained Items() (or the generator goroutine has
// reached its ok == false transition on its own). It may be called before,
// during, or after the Items() range loop; it always returns the same
// value once resolved.
func (c *Completion[S]) Wait() S {
	c.once.Do(func() { c.final = <-c.done })
	return c.final
}
