package compiler

import (
	"errors"
	"fmt"

	"github.com/gogpu/naga/spirv"
)

// ErrUnknownTarget is returned by ParseTarget.
var ErrUnknownTarget = errors.New("compiler: unknown build target")

// Target identifies the binary format a build produces: a SPIR-V version
// (spirv1.0 .. spirv1.6) or a Vulkan environment (vulkan1.0 .. vulkan1.3).
type Target string

// DefaultTarget is a Vulkan 1.1 environment, i.e. SPIR-V 1.3.
const DefaultTarget Target = "vulkan1.1"

var targetVersions = map[Target]spirv.Version{
	"spirv1.0":  spirv.Version1_0,
	"spirv1.1":  spirv.Version1_1,
	"spirv1.2":  spirv.Version1_2,
	"spirv1.3":  spirv.Version1_3,
	"spirv1.4":  spirv.Version1_4,
	"spirv1.5":  spirv.Version1_5,
	"spirv1.6":  spirv.Version1_6,
	"vulkan1.0": spirv.Version1_0,
	"vulkan1.1": spirv.Version1_3,
	"vulkan1.2": spirv.Version1_5,
	"vulkan1.3": spirv.Version1_6,
}

// ParseTarget validates s. An empty string selects DefaultTarget.
func ParseTarget(s string) (Target, error) {
	if s == "" {
		return DefaultTarget, nil
	}
	t := Target(s)
	if _, ok := targetVersions[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTarget, s)
	}
	return t, nil
}

// SPIRVVersion returns the SPIR-V version the target maps to. Unknown
// targets map to SPIR-V 1.3.
func (t Target) SPIRVVersion() spirv.Version {
	if v, ok := targetVersions[t]; ok {
		return v
	}
	return spirv.Version1_3
}

func (t Target) String() string { return string(t) }
