package compiler

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// manifestExt is appended to an artifact path to name its manifest.
const manifestExt = ".meta"

// Artifact is a successfully built scene program. It is immutable once
// published; the consumer owns it after Poll returns it.
type Artifact struct {
	ID       string        // correlation id for logs
	Source   string        // scene source path
	Path     string        // binary path on disk, empty for in-memory artifacts
	Target   Target        // build target
	ModTime  time.Time     // source modification time the build started from
	BuiltAt  time.Time     // when the build finished
	Duration time.Duration // time spent in the builder
	SPIRV    []uint32      // module words
}

// NewArtifact wraps SPIR-V words built outside the supervisor.
func NewArtifact(source string, words []uint32) *Artifact {
	return &Artifact{
		ID:      uuid.NewString(),
		Source:  source,
		Target:  DefaultTarget,
		BuiltAt: time.Now(),
		SPIRV:   words,
	}
}

// Size returns the binary size in bytes.
func (a *Artifact) Size() int { return len(a.SPIRV) * 4 }

func (a *Artifact) String() string {
	return fmt.Sprintf("artifact %s (%s, %d bytes)", a.ID, a.Source, a.Size())
}

// manifest is the on-disk sidecar written next to each artifact binary.
type manifest struct {
	ID       string        `msgpack:"id"`
	Source   string        `msgpack:"source"`
	Target   string        `msgpack:"target"`
	ModTime  time.Time     `msgpack:"mod_time"`
	BuiltAt  time.Time     `msgpack:"built_at"`
	Duration time.Duration `msgpack:"duration"`
	Words    int           `msgpack:"words"`
}

// ManifestPath returns the manifest path for an artifact binary.
func ManifestPath(path string) string { return path + manifestExt }

// WriteManifest records a's metadata next to its binary.
func (a *Artifact) WriteManifest() error {
	if a.Path == "" {
		return errors.New("compiler: artifact has no path")
	}
	data, err := msgpack.Marshal(&manifest{
		ID:       a.ID,
		Source:   a.Source,
		Target:   string(a.Target),
		ModTime:  a.ModTime,
		BuiltAt:  a.BuiltAt,
		Duration: a.Duration,
		Words:    len(a.SPIRV),
	})
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := writeFileAtomic(ManifestPath(a.Path), data); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// LoadArtifact reads a binary built earlier, together with its manifest
// when one exists. Without a manifest the artifact gets a fresh ID and the
// binary's own modification time.
func LoadArtifact(path string) (*Artifact, error) {
	words, err := ReadSPIRV(path)
	if err != nil {
		return nil, err
	}
	a := &Artifact{Path: path, Target: DefaultTarget, SPIRV: words}

	data, err := os.ReadFile(ManifestPath(path))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat artifact: %w", err)
		}
		a.ID = uuid.NewString()
		a.ModTime = info.ModTime()
		a.BuiltAt = info.ModTime()
		return a, nil
	case err != nil:
		return nil, fmt.Errorf("read manifest: %w", err)
	}

	var m manifest
	if err := msgpack.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Words != len(words) {
		return nil, fmt.Errorf("%w: manifest lists %d words, binary has %d", ErrInvalidSPIRV, m.Words, len(words))
	}
	a.ID = m.ID
	a.Source = m.Source
	a.Target = Target(m.Target)
	a.ModTime = m.ModTime
	a.BuiltAt = m.BuiltAt
	a.Duration = m.Duration
	return a, nil
}
