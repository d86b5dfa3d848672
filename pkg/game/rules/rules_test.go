package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"limeal.fr/mcengine/pkg/game/manifests"
)

var (
	windows = Platform{OS: "windows", Arch: "x86_64", Version: "10.0"}
	linux   = Platform{OS: "linux", Arch: "x86_64"}
	mac     = Platform{OS: "osx", Arch: "arm64", Version: "14.2.1"}
)

func allow(os *manifests.OSRule) manifests.Rule {
	return manifests.Rule{Action: ActionAllow, OS: os}
}

func disallow(os *manifests.OSRule) manifests.Rule {
	return manifests.Rule{Action: ActionDisallow, OS: os}
}

func TestEvaluateEmptyAllows(t *testing.T) {
	for _, p := range []Platform{windows, linux, mac} {
		assert.True(t, Evaluate(nil, p, nil))
		assert.True(t, Evaluate([]manifests.Rule{}, p, nil))
	}
}

func TestEvaluateUnconditionalDisallow(t *testing.T) {
	for _, p := range []Platform{windows, linux, mac} {
		assert.False(t, Evaluate([]manifests.Rule{disallow(nil)}, p, nil))
	}
}

func TestEvaluateLastMatchWins(t *testing.T) {
	list := []manifests.Rule{allow(&manifests.OSRule{Name: "windows"}), disallow(nil)}
	assert.False(t, Evaluate(list, windows, nil))

	list = []manifests.Rule{allow(nil), disallow(&manifests.OSRule{Name: "osx"})}
	assert.True(t, Evaluate(list, windows, nil))
	assert.True(t, Evaluate(list, linux, nil))
	assert.False(t, Evaluate(list, mac, nil))
}

func TestEvaluateDefaultDeny(t *testing.T) {
	list := []manifests.Rule{allow(&manifests.OSRule{Name: "linux"})}
	assert.True(t, Evaluate(list, linux, nil))
	assert.False(t, Evaluate(list, windows, nil))
}

func TestEvaluateMacosAlias(t *testing.T) {
	assert.True(t, Evaluate([]manifests.Rule{allow(&manifests.OSRule{Name: "macos"})}, mac, nil))
	assert.True(t, Evaluate([]manifests.Rule{allow(&manifests.OSRule{Name: "osx"})}, mac, nil))
}

func TestEvaluateArch(t *testing.T) {
	list := []manifests.Rule{allow(&manifests.OSRule{Arch: "x86"})}
	assert.False(t, Evaluate(list, linux, nil))
	assert.True(t, Evaluate(list, Platform{OS: "linux", Arch: "x86"}, nil))

	list = []manifests.Rule{allow(&manifests.OSRule{Name: "osx", Arch: "aarch64"})}
	assert.True(t, Evaluate(list, mac, nil))
}

func TestEvaluateOSVersion(t *testing.T) {
	list := []manifests.Rule{allow(nil), disallow(&manifests.OSRule{Name: "osx", Version: "^10\\.5\\.\\d$"})}
	assert.True(t, Evaluate(list, mac, nil))
	assert.False(t, Evaluate(list, Platform{OS: "osx", Arch: "x86_64", Version: "10.5.8"}, nil))

	// unknown host version never matches a version predicate
	assert.True(t, Evaluate(list, Platform{OS: "osx", Arch: "x86_64"}, nil))
}

func TestEvaluateFeatures(t *testing.T) {
	list := []manifests.Rule{{Action: ActionAllow, Features: map[string]bool{"has_custom_resolution": true}}}
	assert.False(t, Evaluate(list, linux, nil))
	assert.False(t, Evaluate(list, linux, FeatureSet{"has_custom_resolution": false}))
	assert.True(t, Evaluate(list, linux, FeatureSet{"has_custom_resolution": true}))

	list = []manifests.Rule{{Action: ActionAllow, Features: map[string]bool{"is_demo_user": false}}}
	assert.True(t, Evaluate(list, linux, nil))
}

func TestPlatformHelpers(t *testing.T) {
	assert.True(t, windows.IsWindows())
	assert.False(t, linux.IsWindows())
	assert.True(t, mac.Is64Bit())
	assert.False(t, Platform{Arch: "x86"}.Is64Bit())
	assert.NotEmpty(t, DetectPlatform().OS)
}
