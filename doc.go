// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package bottle implements the 4bottle self-describing binary container
// format: a typed header (magic, version, bottle type, metadata table)
// wrapping an ordered sequence of child streams. A child stream is either
// a raw byte sequence or another complete bottle, so bottles nest freely.
//
// Semantics and design:
//   - Sequential only: the format has no random access. A Bottle's inner
//     streams must be read in order; reading drives a single forward pass
//     over the underlying transport.
//   - Zero-copy: chunks handed to or received from the wire are plain
//     []byte slices, re-sliced rather than copied wherever the format
//     allows it (see ByteFrame).
//   - Non-blocking first, like code.hybscloud.com/framer: ChunkSource and
//     ChunkSink surface code.hybscloud.com/iox's ErrWouldBlock/ErrMore as
//     control-flow signals instead of failing the read or write.
//
// Wire format: see the package-level constants and Header/Table/Bottle
// doc comments for the exact byte layout.
package bottle
