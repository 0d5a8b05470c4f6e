// Package loader provides LC-3 object-file loading.
//
// An object file is a sequence of big-endian 16-bit words. The first
// word is the origin (load) address; each subsequent word is loaded into
// consecutive memory cells starting there.
package loader

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/lc3sim/insts"
)

// Program represents a loaded object file ready for the machine.
type Program struct {
	// Origin is the address the payload loads at; execution begins here.
	Origin insts.Word
	// Words is the payload, in memory order.
	Words []insts.Word
}

// Load reads and parses the object file at path.
func Load(path string) (*Program, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open object file: %w", err)
	}
	defer func() { _ = f.Close() }()

	prog, err := Read(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return prog, nil
}

// Read parses an object file from r. The byte stream is big-endian
// regardless of host byte order; a truncated or odd-length stream is a
// load error.
func Read(r io.Reader) (*Program, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object file: %w", err)
	}

	if len(data) < 2 {
		return nil, fmt.Errorf("object file too short: %d bytes", len(data))
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("object file has odd length: %d bytes", len(data))
	}

	origin := insts.Word(binary.BigEndian.Uint16(data))
	words := make([]insts.Word, 0, len(data)/2-1)
	for i := 2; i < len(data); i += 2 {
		words = append(words, insts.Word(binary.BigEndian.Uint16(data[i:])))
	}

	if int(origin)+len(words) > 1<<16 {
		return nil, fmt.Errorf(
			"program of %d words at origin 0x%04X exceeds the address space",
			len(words), origin)
	}

	return &Program{Origin: origin, Words: words}, nil
}
