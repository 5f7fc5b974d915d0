package compiler

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/spirv"
	"github.com/gogpu/sdfplay/internal/shader"
)

// Builder turns a scene source into a GPU binary on disk.
//
// Build is called synchronously from the supervisor goroutine and may take
// arbitrarily long. It returns the path of the single artifact it produced.
type Builder interface {
	Build(ctx context.Context, src string, target Target) (string, error)
}

// BuilderFunc adapts a function to the Builder interface.
type BuilderFunc func(ctx context.Context, src string, target Target) (string, error)

// Build calls f(ctx, src, target).
func (f BuilderFunc) Build(ctx context.Context, src string, target Target) (string, error) {
	return f(ctx, src, target)
}

// ArtifactPath returns the binary path for src inside outDir:
// scene.wgsl becomes outDir/scene.spv.
func ArtifactPath(outDir, src string) string {
	base := filepath.Base(src)
	return filepath.Join(outDir, strings.TrimSuffix(base, filepath.Ext(base))+".spv")
}

// NagaBuilder compiles WGSL scenes in-process with gogpu/naga.
//
// The source is assembled with the shader prelude unless it declares its
// own @fragment entry point.
type NagaBuilder struct {
	// OutDir receives the .spv files. Created on demand.
	OutDir string

	// Shader parameterizes the prelude. The zero value selects
	// shader.DefaultOptions().
	Shader shader.Options

	// Debug emits OpName/OpLine debug info.
	Debug bool

	// SkipValidation disables IR validation before code generation.
	SkipValidation bool
}

// Build implements Builder.
func (b *NagaBuilder) Build(ctx context.Context, src string, target Target) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	data, err := os.ReadFile(src)
	if err != nil {
		return "", fmt.Errorf("read scene: %w", err)
	}

	opts := b.Shader
	if opts.MaxSteps == 0 {
		opts = shader.DefaultOptions()
	}
	program, err := shader.Assemble(string(data), opts)
	if err != nil {
		return "", fmt.Errorf("%s: %w", src, err)
	}

	spv, err := b.compile(program, target)
	if err != nil {
		return "", fmt.Errorf("compile %s: %w", src, err)
	}

	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := ArtifactPath(b.OutDir, src)
	if err := writeFileAtomic(out, spv); err != nil {
		return "", fmt.Errorf("write artifact: %w", err)
	}
	return out, nil
}

// compile runs the naga stages one by one so the module can be checked
// between lowering and code generation.
func (b *NagaBuilder) compile(program string, target Target) ([]byte, error) {
	ast, err := naga.Parse(program)
	if err != nil {
		return nil, err
	}
	module, err := naga.LowerWithSource(ast, program)
	if err != nil {
		return nil, fmt.Errorf("lowering error: %w", err)
	}
	if !b.SkipValidation {
		verrs, err := naga.Validate(module)
		if err != nil {
			return nil, fmt.Errorf("validation error: %w", err)
		}
		if len(verrs) > 0 {
			return nil, fmt.Errorf("validation failed: %w", &verrs[0])
		}
	}
	if err := checkReturns(module); err != nil {
		return nil, err
	}
	return naga.GenerateSPIRV(module, spirv.Options{
		Version: target.SPIRVVersion(),
		Debug:   b.Debug,
	})
}

// CommandBuilder runs an external toolchain, for example
//
//	CommandBuilder{Command: "glslangValidator", Args: []string{"-V", "{src}", "-o", "{out}", "--target-env", "{target}"}}
//
// The placeholders {src}, {out} and {target} are substituted in Args. The
// command must write the binary to {out}.
type CommandBuilder struct {
	Command string
	Args    []string
	OutDir  string
	Dir     string // working directory; empty means the current one
}

// Build implements Builder.
func (b *CommandBuilder) Build(ctx context.Context, src string, target Target) (string, error) {
	if err := os.MkdirAll(b.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	out := ArtifactPath(b.OutDir, src)

	r := strings.NewReplacer("{src}", src, "{out}", out, "{target}", string(target))
	args := make([]string, len(b.Args))
	for i, a := range b.Args {
		args[i] = r.Replace(a)
	}

	cmd := exec.CommandContext(ctx, b.Command, args...)
	cmd.Dir = b.Dir
	output, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("%s: %w: %s", b.Command, err, bytes.TrimSpace(output))
	}
	if _, err := os.Stat(out); err != nil {
		return "", fmt.Errorf("%s produced no artifact: %w", b.Command, err)
	}
	return out, nil
}
