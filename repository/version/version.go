package version

import (
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
)

const (
	// ReleasePrefix and ReleaseSuffix decorate version names in release tags,
	// e.g. "release-19.1.5-ATfE".
	ReleasePrefix = "release-"
	ReleaseSuffix = "-ATfE"

	// Latest and All are selectors, never stored as installed versions.
	Latest = "latest"
	All    = "all"
)

// ToolchainVersion identifies a toolchain release by name, e.g. "19.1.5".
type ToolchainVersion struct {
	Name string
}

// Parse normalises user input: surrounding space, a leading "v" and any
// release-tag decoration are removed.
func Parse(s string) ToolchainVersion {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, ReleasePrefix) || strings.HasSuffix(s, ReleaseSuffix) {
		return FromTagName(s)
	}
	if len(s) > 1 && (s[0] == 'v' || s[0] == 'V') && s[1] >= '0' && s[1] <= '9' {
		s = s[1:]
	}
	return ToolchainVersion{Name: s}
}

// FromTagName strips the release prefix and suffix from a tag.
func FromTagName(tag string) ToolchainVersion {
	name := strings.TrimPrefix(tag, ReleasePrefix)
	name = strings.TrimSuffix(name, ReleaseSuffix)
	return ToolchainVersion{Name: name}
}

// TagName renders the release tag for v.
func (v ToolchainVersion) TagName() string {
	return ReleasePrefix + v.Name + ReleaseSuffix
}

func (v ToolchainVersion) String() string {
	if v.IsMeta() {
		return v.Name
	}
	return "v" + v.Name
}

func (v ToolchainVersion) IsLatest() bool { return v.Name == Latest }
func (v ToolchainVersion) IsAll() bool    { return v.Name == All }

// IsMeta reports whether v is a selector rather than a concrete version.
func (v ToolchainVersion) IsMeta() bool { return v.IsLatest() || v.IsAll() }

// Compare orders versions by semantic version when both parse, otherwise
// by name. It returns -1, 0 or 1.
func Compare(a, b ToolchainVersion) int {
	sa, errA := semver.NewVersion(a.Name)
	sb, errB := semver.NewVersion(b.Name)
	switch {
	case errA == nil && errB == nil:
		return sa.Compare(sb)
	case errA == nil:
		return 1
	case errB == nil:
		return -1
	default:
		return strings.Compare(a.Name, b.Name)
	}
}

// Sort orders versions oldest first.
func Sort(versions []ToolchainVersion) {
	sort.SliceStable(versions, func(i, j int) bool {
		return Compare(versions[i], versions[j]) < 0
	})
}
