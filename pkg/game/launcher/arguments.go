package launcher

import (
	"fmt"
	"strings"

	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/profile"
	"limeal.fr/mcengine/pkg/game/rules"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

const (
	ModernMainClass = "net.minecraft.client.main.Main"
	LegacyMainClass = "net.minecraft.client.Minecraft"
)

// CanHandleLegacy reports whether version belongs to the single-string
// argument era, i.e. anything before 1.13.
func CanHandleLegacy(version string) bool {
	return utils.VersionBefore(version, 1, 13, 0)
}

// argBuilder is implemented by legacyArgs and modernArgs only.
type argBuilder interface {
	jvmArgs(p placeholders, mem profile.Memory) ([]string, error)
	gameArgs(p placeholders) ([]string, error)
	defaultMainClass() string
}

// newArgBuilder dispatches on the version id when it parses as a release,
// and on the document's argument format otherwise (snapshots, loader ids).
func newArgBuilder(version string, meta *manifests.VersionMetadata, platform rules.Platform, features rules.FeatureSet) (argBuilder, error) {
	if _, err := utils.ParseGameVersion(version); err == nil {
		if CanHandleLegacy(version) {
			if meta.MinecraftArguments == "" {
				return nil, fmt.Errorf("%w: %s has no minecraftArguments", shared.ErrUnsupportedVersionFormat, version)
			}
			return &legacyArgs{meta: meta, platform: platform}, nil
		}
		if meta.Arguments == nil {
			return nil, fmt.Errorf("%w: %s has no arguments block", shared.ErrUnsupportedVersionFormat, version)
		}
		return &modernArgs{meta: meta, platform: platform, features: features}, nil
	}

	switch {
	case meta.IsLegacyFormat():
		return &legacyArgs{meta: meta, platform: platform}, nil
	case meta.IsModernFormat():
		return &modernArgs{meta: meta, platform: platform, features: features}, nil
	}
	return nil, fmt.Errorf("%w: %s", shared.ErrUnsupportedVersionFormat, version)
}

/////////////////////////////////////////////////////////////////////
// Placeholders
/////////////////////////////////////////////////////////////////////

// placeholders maps ${name} keys to their values.
type placeholders map[string]string

func (p placeholders) replacer() *strings.Replacer {
	pairs := make([]string, 0, len(p)*2)
	for key, value := range p {
		pairs = append(pairs, "${"+key+"}", value)
	}
	return strings.NewReplacer(pairs...)
}

// substitute replaces known placeholders in every token. Unknown ones are left as is.
func (p placeholders) substitute(tokens []string) []string {
	r := p.replacer()
	out := make([]string, len(tokens))
	for i, token := range tokens {
		out[i] = r.Replace(token)
	}
	return out
}

func (p placeholders) nativesDir() string {
	return p["natives_directory"]
}

/////////////////////////////////////////////////////////////////////
// Legacy
/////////////////////////////////////////////////////////////////////

// Java 8 is the runtime of this era, so nothing here may require Java 9+.
var legacyTuning = []string{
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+UseG1GC",
	"-XX:G1NewSizePercent=20",
	"-XX:G1ReservePercent=20",
	"-XX:MaxGCPauseMillis=50",
	"-XX:G1HeapRegionSize=32M",
}

type legacyArgs struct {
	meta     *manifests.VersionMetadata
	platform rules.Platform
}

func (l *legacyArgs) jvmArgs(p placeholders, mem profile.Memory) ([]string, error) {
	args := mem.ToArgs()
	args = append(args, legacyTuning...)
	switch l.platform.OS {
	case shared.OSWindows:
		args = append(args, "-XX:HeapDumpPath=MojangTricksIntelDriversForPerformance_javaw.exe_minecraft.exe.heapdump")
	case shared.OSMacos:
		args = append(args, "-XstartOnFirstThread")
	}
	if l.platform.OS == shared.OSWindows && !l.platform.Is64Bit() {
		args = append(args, "-Xss1M")
	}
	args = append(args,
		"-Djava.library.path="+p.nativesDir(),
		"-Dorg.lwjgl.librarypath="+p.nativesDir(),
		"-Dminecraft.launcher.brand="+p["launcher_name"],
		"-Dminecraft.launcher.version="+p["launcher_version"],
	)
	return args, nil
}

// gameArgs splits the template on whitespace before substituting, so values
// containing spaces stay a single argument.
func (l *legacyArgs) gameArgs(p placeholders) ([]string, error) {
	return p.substitute(strings.Fields(l.meta.MinecraftArguments)), nil
}

func (l *legacyArgs) defaultMainClass() string {
	return LegacyMainClass
}

/////////////////////////////////////////////////////////////////////
// Modern
/////////////////////////////////////////////////////////////////////

var modernTuning = []string{
	"-XX:+UseG1GC",
	"-XX:+ParallelRefProcEnabled",
	"-XX:MaxGCPauseMillis=200",
	"-XX:+UnlockExperimentalVMOptions",
	"-XX:+DisableExplicitGC",
	"-XX:+AlwaysPreTouch",
	"-XX:G1NewSizePercent=30",
	"-XX:G1MaxNewSizePercent=40",
	"-XX:G1HeapRegionSize=8M",
	"-XX:G1ReservePercent=20",
	"-XX:G1HeapWastePercent=5",
	"-XX:G1MixedGCCountTarget=4",
	"-XX:InitiatingHeapOccupancyPercent=15",
	"-XX:G1MixedGCLiveThresholdPercent=90",
	"-XX:G1RSetUpdatingPauseTimePercent=5",
	"-XX:SurvivorRatio=32",
	"-XX:+PerfDisableSharedMem",
	"-XX:MaxTenuringThreshold=1",
}

type modernArgs struct {
	meta     *manifests.VersionMetadata
	platform rules.Platform
	features rules.FeatureSet
}

func (m *modernArgs) evaluate(raw []any, p placeholders) ([]string, error) {
	parsed, err := manifests.ParseArguments(raw)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, arg := range parsed {
		if !rules.Evaluate(arg.Rules, m.platform, m.features) {
			continue
		}
		out = append(out, p.substitute(arg.Values)...)
	}
	return out, nil
}

func (m *modernArgs) jvmArgs(p placeholders, mem profile.Memory) ([]string, error) {
	args := mem.ToArgs()
	args = append(args, modernTuning...)

	var declared []string
	if m.meta.Arguments != nil {
		var err error
		declared, err = m.evaluate(m.meta.Arguments.JVM, p)
		if err != nil {
			return nil, fmt.Errorf("failed to build jvm arguments: %w", err)
		}
	}
	declared = stripClasspath(declared, p["classpath"])

	hasLibraryPath := false
	for _, arg := range declared {
		if strings.HasPrefix(arg, "-Djava.library.path=") {
			hasLibraryPath = true
		}
	}
	if !hasLibraryPath {
		args = append(args, "-Djava.library.path="+p.nativesDir())
	}
	return append(args, declared...), nil
}

func (m *modernArgs) gameArgs(p placeholders) ([]string, error) {
	if m.meta.Arguments == nil {
		return nil, nil
	}
	args, err := m.evaluate(m.meta.Arguments.Game, p)
	if err != nil {
		return nil, fmt.Errorf("failed to build game arguments: %w", err)
	}
	return args, nil
}

func (m *modernArgs) defaultMainClass() string {
	return ModernMainClass
}

// stripClasspath drops the "-cp <classpath>" pair documents declare, the
// pipeline places it right before the main class.
func stripClasspath(args []string, classpath string) []string {
	out := args[:0:0]
	for i := 0; i < len(args); i++ {
		if (args[i] == "-cp" || args[i] == "-classpath") && i+1 < len(args) && args[i+1] == classpath {
			i++
			continue
		}
		out = append(out, args[i])
	}
	return out
}
