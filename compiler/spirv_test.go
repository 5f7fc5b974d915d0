package compiler

import (
	"errors"
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestWords(t *testing.T) {
	mod := testModule(42)
	got, err := Words(WordBytes(mod))
	if err != nil {
		t.Fatalf("Words: %v", err)
	}
	if !slices.Equal(got, mod) {
		t.Errorf("Words = %v, want %v", got, mod)
	}

	bad := map[string][]byte{
		"empty":       nil,
		"short":       WordBytes(mod[:4]),
		"unaligned":   append(WordBytes(mod), 0),
		"wrong magic": WordBytes([]uint32{0xDEADBEEF, 0x00010300, 0, 1, 0}),
	}
	for name, b := range bad {
		t.Run(name, func(t *testing.T) {
			if _, err := Words(b); !errors.Is(err, ErrInvalidSPIRV) {
				t.Errorf("Words error = %v, want ErrInvalidSPIRV", err)
			}
		})
	}
}

func TestReadSPIRV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.spv")
	if err := writeFileAtomic(path, WordBytes(testModule(7))); err != nil {
		t.Fatal(err)
	}
	words, err := ReadSPIRV(path)
	if err != nil {
		t.Fatalf("ReadSPIRV: %v", err)
	}
	if words[len(words)-1] != 7 {
		t.Errorf("last word = %d, want 7", words[len(words)-1])
	}

	if _, err := ReadSPIRV(filepath.Join(dir, "missing.spv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file error = %v, want ErrNotExist", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("writeFileAtomic left %d files, want 1", len(entries))
	}
}

func TestCheckWords(t *testing.T) {
	if err := CheckWords(testModule(0)); err != nil {
		t.Errorf("CheckWords(valid) = %v", err)
	}
	for name, words := range map[string][]uint32{
		"nil":    nil,
		"header": {spirvMagic, 0x00010300},
		"magic":  {1, 2, 3, 4, 5},
	} {
		if err := CheckWords(words); !errors.Is(err, ErrInvalidSPIRV) {
			t.Errorf("CheckWords(%s) = %v, want ErrInvalidSPIRV", name, err)
		}
	}
}
