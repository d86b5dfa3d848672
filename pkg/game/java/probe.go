package java

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
)

var versionRe = regexp.MustCompile(`"(.*?)"`) // extracts "17.0.10" or "1.8.0_392"

// javaVersion runs `java -version` and returns the quoted version string.
func javaVersion(ctx context.Context, javaPath string) (string, error) {
	cmd := exec.CommandContext(ctx, javaPath, "-version")
	var stderr bytes.Buffer
	cmd.Stderr = &stderr // java -version prints to stderr
	if err := cmd.Run(); err != nil {
		return "", err
	}
	return parseVersionOutput(stderr.String())
}

func parseVersionOutput(out string) (string, error) {
	m := versionRe.FindStringSubmatch(out)
	if len(m) < 2 {
		return "", fmt.Errorf("failed to parse version from: %s", out)
	}
	return m[1], nil
}

// majorOf normalizes "1.8.0_392" to 8 and "17.0.10" to 17.
func majorOf(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	if strings.HasPrefix(v, "1.") { // legacy Java 8 style
		parts := strings.SplitN(v, ".", 3)
		if len(parts) >= 2 {
			return atoi(parts[1])
		}
		return 0
	}
	parts := strings.SplitN(v, ".", 2)
	return atoi(parts[0])
}

func atoi(s string) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}
