// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package streamkit

// SplitUntil splits a channel of items into a prefix channel, yielding
// items up to and including the first one for which predicate returns
// true, and a Remainder func that blocks until the prefix has been fully
// drained — either because the predicate matched, or because source
// closed first.
//
// Remainder does not hand back a new channel: because SplitUntil never
// buffers more than the single in-flight item, source itself (once
// Remainder has returned) is exactly "the rest of the stream". Callers
// resume reading directly from the same source channel to continue past
// the split point; if source closed before a match, it will report
// closed again immediately, which is the correct "no more items" signal.
func SplitUntil[I any](source <-chan I, predicate func(I) bool) (prefix <-chan I, remainder func()) {
	out := make(chan I)
	done := make(chan struct{})

	go func() {
		defer close(out)
		defer close(done)
		for item := range source {
			matched := predicate(item)
			out <- item
			if matched {
				return
			}
		}
	}()

	return out, func() { <-done }
}
