// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"strings"
)

const hexDumpWidth = 16

// hexDump renders b as a 16-bytes-per-row hex dump with an ASCII gutter,
// non-printable bytes shown as '.'.
func hexDump(b []byte) string {
	var out strings.Builder
	for offset := 0; offset < len(b); offset += hexDumpWidth {
		end := offset + hexDumpWidth
		if end > len(b) {
			end = len(b)
		}
		row := b[offset:end]

		fmt.Fprintf(&out, "%08x  ", offset)
		for i := 0; i < hexDumpWidth; i++ {
			if i < len(row) {
				fmt.Fprintf(&out, "%02x ", row[i])
			} else {
				out.WriteString("   ")
			}
			if i == hexDumpWidth/2-1 {
				out.WriteByte(' ')
			}
		}
		out.WriteString(" |")
		for _, c := range row {
			if c >= 0x20 && c < 0x7f {
				out.WriteByte(c)
			} else {
				out.WriteByte('.')
			}
		}
		out.WriteString("|\n")
	}
	return out.String()
}
