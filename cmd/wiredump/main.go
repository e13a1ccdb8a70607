// Command wiredump pretty-prints a binary stream without a schema,
// walking it by wire type alone.
//
// Usage:
//
//	wiredump [-hex] [file]
//
// With no file it reads stdin. -hex treats the input as hex text
// (whitespace ignored) instead of raw bytes.
package main

import (
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/tagwire/tagwire/wire"
)

func main() {
	hexInput := flag.Bool("hex", false, "read input as hex text")
	flag.Parse()

	data, err := readInput(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "wiredump: %v\n", err)
		os.Exit(1)
	}
	if *hexInput {
		cleaned := strings.Map(dropSpace, string(data))
		data, err = hex.DecodeString(cleaned)
		if err != nil {
			fmt.Fprintf(os.Stderr, "wiredump: bad hex input: %v\n", err)
			os.Exit(1)
		}
	}

	d := wire.NewDecoder(data)
	for d.Remaining() > 0 {
		v, err := d.DecodeRaw()
		if err != nil {
			fmt.Fprintf(os.Stderr, "wiredump: at offset %d: %v\n", len(data)-d.Remaining(), err)
			os.Exit(1)
		}
		dump(os.Stdout, v, 0)
	}
}

func readInput(path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(path)
}

func dump(w io.Writer, v *wire.RawValue, depth int) {
	indent := strings.Repeat("  ", depth)
	switch v.Type {
	case wire.WireInteger:
		fmt.Fprintf(w, "%sinteger %d (zigzag %d)\n", indent, v.Integer, wire.DecodeZigZag64(v.Integer))
	case wire.WireFixed32:
		fmt.Fprintf(w, "%sfixed32 0x%08x (float %g)\n", indent, v.Fixed32, math.Float32frombits(v.Fixed32))
	case wire.WireFixed64:
		fmt.Fprintf(w, "%sfixed64 0x%016x (float %g)\n", indent, v.Fixed64, math.Float64frombits(v.Fixed64))
	case wire.WireBytes:
		if utf8.Valid(v.Bytes) && printable(v.Bytes) {
			fmt.Fprintf(w, "%sbytes %d %q\n", indent, len(v.Bytes), v.Bytes)
		} else {
			fmt.Fprintf(w, "%sbytes %d %x\n", indent, len(v.Bytes), v.Bytes)
		}
	case wire.WireSequence:
		fmt.Fprintf(w, "%ssequence count=%d\n", indent, len(v.Elems))
		for i := range v.Elems {
			dump(w, &v.Elems[i], depth+1)
		}
	case wire.WireVariant:
		fmt.Fprintf(w, "%svariant disc=%d\n", indent, v.Discriminator)
		dump(w, v.Inner, depth+1)
	}
}

func printable(b []byte) bool {
	for _, c := range b {
		if c < 0x20 && c != '\n' && c != '\t' {
			return false
		}
	}
	return true
}

func dropSpace(r rune) rune {
	if r == ' ' || r == '\n' || r == '\t' || r == '\r' {
		return -1
	}
	return r
}
