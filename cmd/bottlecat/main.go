// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Command bottlecat decodes a 4bottle container from stdin or a file and
// prints its header, table, and inner-stream sizes. It exercises
// ReadBottle, Table decoding, and the generate/split primitives end-to-end
// outside of the test suite, the way the teacher's examples package
// exercises its own wire format.
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"code.hybscloud.com/bottle"
)

func main() {
	file := flag.String("file", "", "path to read a bottle from (default: stdin)")
	recurse := flag.Bool("recurse", false, "attempt to decode every inner stream as a nested bottle")
	verbose := flag.Bool("verbose", false, "print a hex dump of each inner stream, tagging failures with a trace id")
	maxDump := flag.Int("max-dump", 64, "maximum bytes of each inner stream to hex dump in -verbose mode")
	flag.Parse()

	if err := run(*file, *recurse, *verbose, *maxDump); err != nil {
		log.Fatal("bottlecat failed", "error", err)
	}
}

func run(file string, recurse, verbose bool, maxDump int) error {
	r := io.Reader(os.Stdin)
	if file != "" {
		f, err := os.Open(file)
		if err != nil {
			return fmt.Errorf("open %s: %w", file, err)
		}
		defer f.Close()
		r = f
	}

	source := bottle.NewChunkSourceFromReader(r, bottle.WithBlock())
	rbs := bottle.NewReadableByteStream(source)
	return dumpBottle(rbs, 0, recurse, verbose, maxDump)
}

func dumpBottle(rbs *bottle.ReadableByteStream, depth int, recurse, verbose bool, maxDump int) error {
	indent := strings.Repeat("  ", depth)

	bt, err := bottle.ReadBottle(rbs)
	if err != nil {
		return annotate(err, verbose)
	}
	log.Info(indent+"header", "type", bt.Header.Type, "fields", len(bt.Header.Table.Fields))
	for _, f := range bt.Header.Table.Fields {
		log.Info(indent+"field", "id", f.ID, "kind", f.Kind, "number", f.Number, "string", f.String)
	}

	for i := 0; ; i++ {
		is, err := bt.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return annotate(err, verbose)
		}

		data, err := io.ReadAll(is)
		if err != nil {
			return annotate(err, verbose)
		}
		log.Info(indent+"stream", "index", i, "bytes", len(data))

		if verbose {
			dumped := data
			if len(dumped) > maxDump {
				dumped = dumped[:maxDump]
			}
			fmt.Print(hexDump(dumped))
		}

		if recurse {
			nested := bottle.NewReadableByteStream(sliceChunkSource(data))
			if err := dumpBottle(nested, depth+1, recurse, verbose, maxDump); err != nil {
				log.Warn(indent+"not a nested bottle", "index", i, "error", err)
			}
		}

		if err := is.Close(); err != nil {
			return annotate(err, verbose)
		}
	}
}

// sliceChunkSource yields b once, then io.EOF.
func sliceChunkSource(b []byte) bottle.ChunkSource {
	done := false
	return bottle.ChunkSourceFunc(func() ([]byte, error) {
		if done {
			return nil, io.EOF
		}
		done = true
		return b, nil
	})
}

// annotate attaches a trace id to err in verbose mode, so a user reporting
// a decode failure can cite a single identifier for the occurrence.
func annotate(err error, verbose bool) error {
	if !verbose {
		return err
	}
	return fmt.Errorf("%w (trace %s)", err, uuid.New())
}
