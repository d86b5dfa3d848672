package java

import (
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/utils"
)

// Newest major any release requires, used when a version id cannot be parsed.
const LatestKnownMajor = 21

// Mojang runtime components per java major.
var components = map[int]string{
	8:  "jre-legacy",
	16: "java-runtime-alpha",
	17: "java-runtime-gamma",
	21: "java-runtime-delta",
}

// ComponentFor returns the Mojang runtime component providing major.
func ComponentFor(major int) (string, bool) {
	c, ok := components[major]
	return c, ok
}

// RequiredMajorVersion maps a release id to the java major it runs on:
// up to 1.16.5 java 8, 1.17 java 16, 1.18 to 1.20.4 java 17, then java 21.
func RequiredMajorVersion(gameVersion string) int {
	v, err := utils.ParseGameVersion(gameVersion)
	if err != nil || v.Major() != 1 {
		return LatestKnownMajor
	}
	switch {
	case v.Minor() < 17:
		return 8
	case v.Minor() == 17:
		return 16
	case v.Minor() < 20, v.Minor() == 20 && v.Patch() < 5:
		return 17
	default:
		return 21
	}
}

// RequiredMajorFor prefers the major declared by the version document.
func RequiredMajorFor(meta *manifests.VersionMetadata) int {
	if meta.JavaVersion != nil && meta.JavaVersion.MajorVersion > 0 {
		return meta.JavaVersion.MajorVersion
	}
	if meta.InheritsFrom != "" {
		return RequiredMajorVersion(meta.InheritsFrom)
	}
	return RequiredMajorVersion(meta.ID)
}
