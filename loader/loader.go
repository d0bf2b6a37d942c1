// Package loader populates a vm.VM from the byte buffers an XEX container
// parser would otherwise produce. XEX parsing itself is external collaborator
// surface; this package consumes only its outputs: base_address,
// pe_data_offset, and a contiguous image.
package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/crtdll/py-ppc-xex/vm"
)

// Image is the external-collaborator payload this package hands to
// vm.NewVM: the loaded executable bytes and the two addresses needed to
// resolve virtual addresses against them.
type Image struct {
	BaseAddress  uint32
	PEDataOffset uint32
	Data         []byte
	EntryIAR     uint64
}

// descriptor is the JSON sidecar shape read alongside a flat binary image.
// Fields are plain Go ints rather than uint32 because encoding/json decodes
// numeric literals into float64/int64 first; SafeInt64ToUint32 validates the
// narrowing.
type descriptor struct {
	BaseAddress  int64  `json:"base_address"`
	PEDataOffset int64  `json:"pe_data_offset"`
	EntryIAR     uint64 `json:"entry_iar"`
}

// FromFile reads a flat binary image from path and a sidecar descriptor from
// path with its extension replaced by ".json". This stands in for full XEX
// container parsing, which is out of scope: it exists so the CLI and
// debugger have something concrete to load without a real container parser.
func FromFile(path string) (*Image, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loader: reading image %q: %w", path, err)
	}

	descPath := sidecarPath(path)
	descBytes, err := os.ReadFile(descPath)
	if err != nil {
		return nil, fmt.Errorf("loader: reading descriptor %q: %w", descPath, err)
	}

	var d descriptor
	if err := json.Unmarshal(descBytes, &d); err != nil {
		return nil, fmt.Errorf("loader: parsing descriptor %q: %w", descPath, err)
	}

	baseAddress, err := vm.SafeInt64ToUint32(d.BaseAddress)
	if err != nil {
		return nil, fmt.Errorf("loader: base_address: %w", err)
	}
	peDataOffset, err := vm.SafeInt64ToUint32(d.PEDataOffset)
	if err != nil {
		return nil, fmt.Errorf("loader: pe_data_offset: %w", err)
	}

	return &Image{
		BaseAddress:  baseAddress,
		PEDataOffset: peDataOffset,
		Data:         data,
		EntryIAR:     d.EntryIAR,
	}, nil
}

func sidecarPath(imagePath string) string {
	ext := filepath.Ext(imagePath)
	return strings.TrimSuffix(imagePath, ext) + ".json"
}

// IntoVM constructs a VM over the image and bootstraps it at EntryIAR.
// There is no assembler/parser stage between file and memory here: the
// input is already machine code.
func IntoVM(img *Image) *vm.VM {
	machine := vm.NewVM(img.Data, img.BaseAddress, img.PEDataOffset)
	machine.Bootstrap(img.EntryIAR)
	return machine
}
