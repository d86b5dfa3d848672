package shared

import (
	"runtime"
)

type Directory string

const (
	DirectoryAssets    Directory = "assets"
	DirectoryNatives   Directory = "natives"
	DirectoryLibraries Directory = "libraries"
	DirectoryVersions  Directory = "versions"
	DirectoryIndexes   Directory = "indexes"
	DirectoryObjects   Directory = "objects"
)

// Mojang's OS keys, used by rules (os.name) and by library natives maps.
const (
	OSWindows = "windows"
	OSMacos   = "osx"
	OSLinux   = "linux"
)

type Platform string

const (
	PlatformMacosIntel Platform = "mac-os"
	PlatformMacosArm   Platform = "mac-os-arm64"
	PlatformWindows    Platform = "windows-x64"
	PlatformWindowsArm Platform = "windows-arm64"
	PlatformWindowsX86 Platform = "windows-x86"
	PlatformLinux      Platform = "linux"
	PlatformLinuxI386  Platform = "linux-i386"
)

// CurrentPlatform returns the java runtime manifest key for the running host.
func CurrentPlatform() Platform {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return PlatformMacosArm
		}
		return PlatformMacosIntel
	case "windows":
		switch runtime.GOARCH {
		case "arm64":
			return PlatformWindowsArm
		case "386":
			return PlatformWindowsX86
		}
		return PlatformWindows
	default:
		if runtime.GOARCH == "386" {
			return PlatformLinuxI386
		}
		return PlatformLinux
	}
}

// OSKey maps a GOOS value to the name used in version metadata.
func OSKey(goos string) string {
	switch goos {
	case "windows":
		return OSWindows
	case "darwin":
		return OSMacos
	default:
		return OSLinux
	}
}

// ArchKey maps a GOARCH value to the name used in os.arch rule predicates.
func ArchKey(goarch string) string {
	return map[string]string{"amd64": "x86_64", "arm64": "arm64", "386": "x86", "arm": "arm32"}[goarch]
}

/////////////////////////////////////////////////////////////////////
// Remote endpoints
/////////////////////////////////////////////////////////////////////

const PISTON_MANIFEST_URL = "https://piston-meta.mojang.com/mc/game/version_manifest_v2.json"
const RUNTIME_MANIFEST_URL = "https://launchermeta.mojang.com/v1/products/java-runtime/2ec0cc96c44e5a76b9c8b7c39df7210883d12871/all.json"
const RESOURCES_URL = "https://resources.download.minecraft.net"
const LIBRARIES_URL = "https://libraries.minecraft.net/"

const INSTANCE_FILE = "instance.toml"

/////////////////////////////////////////////////////////////////////
// Progress
/////////////////////////////////////////////////////////////////////

type Stage string

const (
	StageCatalog   Stage = "catalog"
	StageMetadata  Stage = "metadata"
	StageClient    Stage = "client"
	StageLibraries Stage = "libraries"
	StageAssets    Stage = "assets"
	StageRuntime   Stage = "runtime"
	StageDone      Stage = "done"
)

// Event is one progress report. Percent is relative to the stage.
type Event struct {
	Stage       Stage
	Percent     float64
	CurrentItem string
	BytesDone   int64
	BytesTotal  int64
}

// ProgressCallback may be invoked from several workers at once and must not block.
type ProgressCallback func(Event)

func Percent(done, total int) float64 {
	if total <= 0 {
		return 100
	}
	return float64(done) * 100 / float64(total)
}
