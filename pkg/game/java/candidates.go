package java

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// systemCandidates lists java binaries in well-known install locations of the host.
func systemCandidates(ctx context.Context) []string {
	switch runtime.GOOS {
	case "darwin":
		return darwinCandidates(ctx)
	case "windows":
		return windowsCandidates()
	default:
		return linuxCandidates(ctx)
	}
}

// -------------------- macOS (incl. Homebrew + Temurin + Zulu) --------------------

func darwinCandidates(ctx context.Context) []string {
	var homes []string

	globs := []string{
		"/Library/Java/JavaVirtualMachines/*/Contents/Home",
		filepath.Join(os.Getenv("HOME"), "Library/Java/JavaVirtualMachines/*/Contents/Home"),
	}

	if prefix := brewPrefix(ctx); prefix != "" {
		globs = append(globs,
			filepath.Join(prefix, "opt", "openjdk", "libexec", "openjdk.jdk", "Contents", "Home"),
			filepath.Join(prefix, "opt", "openjdk@*", "libexec", "openjdk.jdk", "Contents", "Home"),
			filepath.Join(prefix, "opt", "temurin@*", "libexec", "openjdk.jdk", "Contents", "Home"),
		)
	}

	// Parse `/usr/libexec/java_home -V` list (don't trust -v picker)
	homes = append(homes, parseJavaHomeList(javaHomeVerbose(ctx))...)

	for _, g := range globs {
		if matches, _ := filepath.Glob(g); len(matches) > 0 {
			homes = append(homes, matches...)
		}
	}

	var cands []string
	for _, h := range homes {
		cands = append(cands, filepath.Join(h, "bin", "java"))
	}
	return cands
}

func brewPrefix(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, "brew", "--prefix").Output()
	if err == nil {
		return strings.TrimSpace(string(out))
	}
	if fi, err := os.Stat("/opt/homebrew"); err == nil && fi.IsDir() {
		return "/opt/homebrew" // Apple Silicon default
	}
	return "/usr/local" // Intel default
}

func javaHomeVerbose(ctx context.Context) string {
	out, _ := exec.CommandContext(ctx, "/usr/libexec/java_home", "-V").CombinedOutput() // -V prints to stderr
	return string(out)
}

func parseJavaHomeList(out string) []string {
	var homes []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "Matching Java Virtual Machines") {
			continue
		}
		if i := strings.LastIndex(line, "/Contents/Home"); i != -1 {
			start := strings.LastIndex(line[:i], " ")
			if start == -1 {
				start = 0
			}
			if home := strings.TrimSpace(line[start : i+len("/Contents/Home")]); home != "" {
				homes = append(homes, home)
			}
		}
	}
	return homes
}

// -------------------- Linux --------------------

func linuxCandidates(ctx context.Context) []string {
	var cands []string

	if out, err := exec.CommandContext(ctx, "update-alternatives", "--list", "java").Output(); err == nil {
		cands = append(cands, splitLines(string(out))...)
	}

	for _, g := range []string{
		"/usr/lib/jvm/*/bin/java",
		"/usr/java/*/bin/java",
		"/opt/java/*/bin/java",
	} {
		if matches, _ := filepath.Glob(g); len(matches) > 0 {
			cands = append(cands, matches...)
		}
	}
	return cands
}

// -------------------- Windows --------------------

func windowsCandidates() []string {
	var cands []string
	if jh := os.Getenv("JAVA_HOME"); jh != "" {
		cands = append(cands, filepath.Join(jh, "bin", "java.exe"))
	}
	for _, root := range []string{
		os.Getenv("ProgramFiles"),
		os.Getenv("ProgramFiles(x86)"),
		`C:\Program Files`,
		`C:\Program Files (x86)`,
	} {
		if root == "" {
			continue
		}
		for _, g := range []string{
			filepath.Join(root, "Java", "*", "bin", "java.exe"),
			filepath.Join(root, "Eclipse Adoptium", "jdk-*", "bin", "java.exe"),
			filepath.Join(root, "Eclipse Adoptium", "jre-*", "bin", "java.exe"),
			filepath.Join(root, "Zulu", "zulu*", "bin", "java.exe"),
		} {
			if matches, _ := filepath.Glob(g); len(matches) > 0 {
				cands = append(cands, matches...)
			}
		}
	}
	return cands
}

func splitLines(out string) []string {
	var res []string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			res = append(res, l)
		}
	}
	return res
}
