package rules

import (
	"runtime"
	"strings"

	"github.com/dlclark/regexp2"

	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/shared"
)

const (
	ActionAllow    = "allow"
	ActionDisallow = "disallow"
)

// Platform describes the target a rule list is evaluated against.
type Platform struct {
	OS      string // windows | osx | linux
	Arch    string // x86_64 | x86 | arm64 | arm32
	Version string // OS version, empty when unknown
}

// FeatureSet holds launch feature flags. Absent flags are false.
type FeatureSet map[string]bool

func DetectPlatform() Platform {
	return Platform{
		OS:      shared.OSKey(runtime.GOOS),
		Arch:    shared.ArchKey(runtime.GOARCH),
		Version: osVersion(),
	}
}

// Is64Bit reports whether ${arch} substitutes to 64.
func (p Platform) Is64Bit() bool {
	return p.Arch == "x86_64" || p.Arch == "arm64"
}

func (p Platform) IsWindows() bool {
	return p.OS == shared.OSWindows
}

// Evaluate folds the rules in order starting from deny; the last matching
// rule decides. An empty list allows.
func Evaluate(rulesList []manifests.Rule, p Platform, f FeatureSet) bool {
	if len(rulesList) == 0 {
		return true
	}
	allowed := false
	for _, r := range rulesList {
		if matches(r, p, f) {
			allowed = r.Action == ActionAllow
		}
	}
	return allowed
}

func matches(r manifests.Rule, p Platform, f FeatureSet) bool {
	if r.OS != nil {
		if r.OS.Name != "" && normalizeOS(r.OS.Name) != normalizeOS(p.OS) {
			return false
		}
		if r.OS.Arch != "" && normalizeArch(r.OS.Arch) != normalizeArch(p.Arch) {
			return false
		}
		if r.OS.Version != "" && !versionMatches(r.OS.Version, p.Version) {
			return false
		}
	}
	for key, want := range r.Features {
		if f[key] != want {
			return false
		}
	}
	return true
}

// Mojang historically uses "osx"; newer documents use "macos".
func normalizeOS(name string) string {
	name = strings.ToLower(name)
	if name == "macos" {
		return shared.OSMacos
	}
	return name
}

func normalizeArch(arch string) string {
	switch strings.ToLower(arch) {
	case "amd64", "x86_64", "x64":
		return "x86_64"
	case "aarch64", "arm64":
		return "arm64"
	case "386", "i386", "x86":
		return "x86"
	case "arm", "arm32":
		return "arm32"
	}
	return strings.ToLower(arch)
}

// Metadata carries Java regular expressions, hence regexp2.
func versionMatches(expr, version string) bool {
	if version == "" {
		return false
	}
	re, err := regexp2.Compile(expr, regexp2.None)
	if err != nil {
		return false
	}
	ok, err := re.MatchString(version)
	return err == nil && ok
}
