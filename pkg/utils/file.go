package utils

import (
	"fmt"
	"strings"
)

// MavenPath converts a coordinate into its repository path:
// group:artifact:version[:classifier][@ext] ->
// group/as/dirs/artifact/version/artifact-version[-classifier].ext
func MavenPath(coord string) (string, error) {
	ext := "jar"
	if i := strings.LastIndex(coord, "@"); i >= 0 {
		ext = coord[i+1:]
		coord = coord[:i]
	}

	parts := strings.Split(coord, ":")
	if len(parts) < 3 || len(parts) > 4 {
		return "", fmt.Errorf("invalid maven coordinate format: %s (expected groupId:artifactId:version)", coord)
	}

	groupId := parts[0]
	artifactId := parts[1]
	version := parts[2]
	if groupId == "" || artifactId == "" || version == "" {
		return "", fmt.Errorf("invalid maven coordinate format: %s", coord)
	}

	fileName := fmt.Sprintf("%s-%s", artifactId, version)
	if len(parts) == 4 {
		fileName += "-" + parts[3]
	}
	fileName += "." + ext

	groupIdPath := strings.ReplaceAll(groupId, ".", "/")
	return fmt.Sprintf("%s/%s/%s/%s", groupIdPath, artifactId, version, fileName), nil
}

// BuildDownloadURLFromMavenPath returns the download url and the relative path of coord
// inside the repository at base, e.g. https://maven.fabricmc.net/ and org.ow2.asm:asm:9.8.
func BuildDownloadURLFromMavenPath(base, coord string) (string, string, error) {
	path, err := MavenPath(coord)
	if err != nil {
		return "", "", err
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base + path, path, nil
}
