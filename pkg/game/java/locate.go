package java

import (
	"context"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"limeal.fr/mcengine/pkg/game/shared"
)

const versionTimeout = 8 * time.Second

// Locator finds a java binary for a major version. Results are cached per
// major until Invalidate is called.
type Locator struct {
	RuntimeDir string

	// Overridable for tests.
	Probe      func(ctx context.Context, javaPath string) (string, error)
	Candidates func(ctx context.Context) []string
	LookPath   func(file string) (string, error)

	// VersionTimeout bounds each candidate's -version run.
	VersionTimeout time.Duration

	logger *slog.Logger

	mu    sync.Mutex
	cache map[int]string
}

type Option func(*Locator)

func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) { l.logger = logger }
}

func NewLocator(runtimeDir string, opts ...Option) *Locator {
	l := &Locator{
		RuntimeDir: runtimeDir,
		Probe:      javaVersion,
		Candidates: systemCandidates,
		LookPath:   exec.LookPath,

		VersionTimeout: versionTimeout,

		logger: slog.Default(),
		cache:  make(map[int]string),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// BundledPath is where the java binary of an installed component lives.
func BundledPath(runtimeDir, component string) string {
	home := filepath.Join(runtimeDir, component)
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "jre.bundle", "Contents", "Home", "bin", "java")
	case "windows":
		return filepath.Join(home, "bin", "java.exe")
	default:
		return filepath.Join(home, "bin", "java")
	}
}

// Locate searches the bundled runtime first, then well-known system
// locations, then java on PATH. System binaries are validated with -version.
func (l *Locator) Locate(ctx context.Context, major int) (string, error) {
	l.mu.Lock()
	cached, ok := l.cache[major]
	l.mu.Unlock()
	if ok {
		if _, err := os.Stat(cached); err == nil {
			return cached, nil
		}
		l.Invalidate(major)
	}

	path, err := l.search(ctx, major)
	if err != nil {
		return "", err
	}

	l.mu.Lock()
	l.cache[major] = path
	l.mu.Unlock()
	return path, nil
}

func (l *Locator) search(ctx context.Context, major int) (string, error) {
	if component, ok := ComponentFor(major); ok && l.RuntimeDir != "" {
		bundled := BundledPath(l.RuntimeDir, component)
		if _, err := os.Stat(bundled); err == nil {
			l.logger.Debug("using bundled java", "major", major, "path", bundled)
			return bundled, nil
		}
	}

	listCtx, cancel := context.WithTimeout(ctx, l.VersionTimeout)
	candidates := l.Candidates(listCtx)
	cancel()
	if p, err := l.LookPath("java"); err == nil && p != "" {
		candidates = append(candidates, p)
	}

	seen := map[string]struct{}{}
	for _, c := range candidates {
		if c == "" {
			continue
		}
		abs, _ := filepath.Abs(c)
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}

		v, err := l.version(ctx, abs)
		if err != nil {
			l.logger.Debug("java probe failed", "path", abs, "error", err)
			continue
		}
		if majorOf(v) == major {
			l.logger.Debug("using system java", "major", major, "version", v, "path", abs)
			return abs, nil
		}
	}
	return "", &shared.RuntimeNotFoundError{RequiredMajor: major}
}

// version runs -version on one candidate under its own deadline.
func (l *Locator) version(ctx context.Context, javaPath string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, l.VersionTimeout)
	defer cancel()
	return l.Probe(ctx, javaPath)
}

// Invalidate forgets the cached path of major, e.g. after a reinstall.
func (l *Locator) Invalidate(major int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.cache, major)
}
