package toolchain

import (
	"fmt"
	"runtime"
	"slices"
	"strings"
	"sync"

	"github.com/vexide/arm-toolchain/downloader/core"
	"github.com/vexide/arm-toolchain/downloader/extract"
	"github.com/vexide/arm-toolchain/logging"
	"github.com/vexide/arm-toolchain/repository"
	"github.com/vexide/arm-toolchain/repository/version"
)

// HostOS is the operating system token used in asset names.
type HostOS string

const (
	Darwin  HostOS = "Darwin"
	Linux   HostOS = "Linux"
	Windows HostOS = "Windows"
)

// HostArch is an architecture token used in asset names.
type HostArch string

const (
	X86_64    HostArch = "x86_64"
	AArch64   HostArch = "AArch64"
	Universal HostArch = "universal"
)

// CurrentHost returns the running platform's OS token and the architecture
// tokens whose assets it can run, most specific first.
func CurrentHost() (HostOS, []HostArch, error) {
	return hostFor(runtime.GOOS, runtime.GOARCH)
}

func hostFor(goos, goarch string) (HostOS, []HostArch, error) {
	var hostOS HostOS
	switch goos {
	case "darwin":
		hostOS = Darwin
	case "linux":
		hostOS = Linux
	case "windows":
		hostOS = Windows
	default:
		return "", nil, fmt.Errorf("%w: operating system %s is not supported", core.ErrResolution, goos)
	}

	var arches []HostArch
	switch goarch {
	case "amd64":
		arches = append(arches, X86_64)
	case "arm64":
		arches = append(arches, AArch64)
	}
	if hostOS == Darwin && len(arches) > 0 {
		arches = append(arches, Universal)
	}
	if len(arches) == 0 {
		return "", nil, fmt.Errorf("%w: architecture %s is not supported", core.ErrResolution, goarch)
	}
	return hostOS, arches, nil
}

// Release is a fetched release whose version is derived from its tag on
// first use.
type Release struct {
	raw repository.Release

	once    sync.Once
	version version.ToolchainVersion
}

// NewRelease wraps a release returned by a ReleaseSource.
func NewRelease(raw repository.Release) *Release {
	return &Release{raw: raw}
}

func (r *Release) Version() version.ToolchainVersion {
	r.once.Do(func() {
		r.version = version.FromTagName(r.raw.TagName)
	})
	return r.version
}

func (r *Release) TagName() string { return r.raw.TagName }

func (r *Release) Assets() []repository.Asset { return r.raw.Assets }

// AssetFor picks the first asset built for hostOS and one of arches in a
// supported archive format.
func (r *Release) AssetFor(hostOS HostOS, arches []HostArch) (repository.Asset, error) {
	logging.LogDebug("🔍 Searching %d assets for %s %v", len(r.raw.Assets), hostOS, arches)

	for _, a := range r.raw.Assets {
		components, ext, ok := splitAssetName(a.Name)
		if !ok {
			logging.LogDebug("   Ignoring %s: no extension", a.Name)
			continue
		}

		correctOS := slices.Contains(components, string(hostOS))
		correctArch := slices.ContainsFunc(arches, func(arch HostArch) bool {
			return slices.Contains(components, string(arch))
		})
		correctExt := slices.Contains(extract.Extensions(), ext)

		logging.LogDebug("   %s: os=%t arch=%t ext=%t", a.Name, correctOS, correctArch, correctExt)
		if correctOS && correctArch && correctExt {
			return a, nil
		}
	}

	candidates := make([]string, 0, len(r.raw.Assets))
	for _, a := range r.raw.Assets {
		candidates = append(candidates, a.Name)
	}
	archNames := make([]string, 0, len(arches))
	for _, arch := range arches {
		archNames = append(archNames, string(arch))
	}
	return repository.Asset{}, &core.AssetMissingError{OS: string(hostOS), Arches: archNames, Candidates: candidates}
}

// splitAssetName splits "ATfE-19.1.5-Linux-x86_64.tar.xz" into its dash
// separated components with the extension removed from the last one.
func splitAssetName(name string) ([]string, string, bool) {
	components := strings.Split(name, "-")
	last := len(components) - 1
	base, ext, ok := strings.Cut(components[last], ".")
	if !ok {
		return nil, "", false
	}
	components[last] = base
	return components, ext, true
}
