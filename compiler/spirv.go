package compiler

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// spirvMagic is the first word of every SPIR-V module.
const spirvMagic = 0x07230203

// ErrInvalidSPIRV is returned for binaries that are not SPIR-V modules.
var ErrInvalidSPIRV = errors.New("compiler: invalid SPIR-V binary")

// Words converts a little-endian SPIR-V binary to 32-bit words and checks
// the module header.
func Words(b []byte) ([]uint32, error) {
	if len(b) < 20 || len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: %d bytes", ErrInvalidSPIRV, len(b))
	}
	words := make([]uint32, len(b)/4)
	for i := range words {
		words[i] = binary.LittleEndian.Uint32(b[i*4:])
	}
	if err := CheckWords(words); err != nil {
		return nil, err
	}
	return words, nil
}

// CheckWords reports whether words start with a complete SPIR-V header.
func CheckWords(words []uint32) error {
	if len(words) < 5 {
		return fmt.Errorf("%w: %d words", ErrInvalidSPIRV, len(words))
	}
	if words[0] != spirvMagic {
		return fmt.Errorf("%w: magic 0x%08X", ErrInvalidSPIRV, words[0])
	}
	return nil
}

// WordBytes converts SPIR-V words back to their little-endian encoding.
func WordBytes(words []uint32) []byte {
	b := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(b[i*4:], w)
	}
	return b
}

// ReadSPIRV loads and validates a SPIR-V file.
func ReadSPIRV(path string) ([]uint32, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read artifact: %w", err)
	}
	words, err := Words(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return words, nil
}

// writeFileAtomic writes data to a temporary file in the destination
// directory and renames it into place, so readers never observe a
// partially written artifact.
func writeFileAtomic(path string, data []byte) error {
	f, err := os.CreateTemp(filepath.Dir(path), ".artifact-*")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
