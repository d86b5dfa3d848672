package java

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

// Installer downloads Mojang's bundled runtimes into <RuntimeDir>/<component>.
type Installer struct {
	RuntimeDir  string
	ManifestURL string
	Platform    shared.Platform

	fetcher    *fetcher.Fetcher
	locator    *Locator
	onProgress shared.ProgressCallback
	logger     *slog.Logger
}

type InstallerOption func(*Installer)

func WithInstallLogger(logger *slog.Logger) InstallerOption {
	return func(i *Installer) { i.logger = logger }
}

func WithProgress(cb shared.ProgressCallback) InstallerOption {
	return func(i *Installer) { i.onProgress = cb }
}

// WithLocator makes Install invalidate the locator's cache entry.
func WithLocator(l *Locator) InstallerOption {
	return func(i *Installer) { i.locator = l }
}

func NewInstaller(f *fetcher.Fetcher, runtimeDir, manifestURL string, opts ...InstallerOption) *Installer {
	if manifestURL == "" {
		manifestURL = shared.RUNTIME_MANIFEST_URL
	}
	i := &Installer{
		RuntimeDir:  runtimeDir,
		ManifestURL: manifestURL,
		Platform:    shared.CurrentPlatform(),
		fetcher:     f,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Installer) readJSON(ctx context.Context, url, sha1 string, dest any) error {
	rc, _, err := i.fetcher.Open(ctx, url)
	if err != nil {
		return err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return shared.NewTransferError(url, err)
	}
	if sha1 != "" {
		if actual := utils.BytesSHA1(data); !strings.EqualFold(actual, sha1) {
			return &shared.HashMismatchError{Path: url, Expected: sha1, Actual: actual}
		}
	}
	return json.Unmarshal(data, dest)
}

// Install downloads the runtime for major and returns its java binary.
func (i *Installer) Install(ctx context.Context, major int) (string, error) {
	component, ok := ComponentFor(major)
	if !ok {
		return "", fmt.Errorf("no bundled runtime is published for java %d", major)
	}

	var index manifests.RuntimeIndex
	if err := i.readJSON(ctx, i.ManifestURL, "", &index); err != nil {
		return "", fmt.Errorf("failed to fetch runtime index: %w", err)
	}
	build, ok := index.Component(string(i.Platform), component)
	if !ok {
		return "", fmt.Errorf("java runtime %s not found for platform %s", component, i.Platform)
	}

	var manifest manifests.JavaRuntimeManifest
	if err := i.readJSON(ctx, build.Manifest.URL, build.Manifest.Sha1, &manifest); err != nil {
		return "", fmt.Errorf("failed to fetch runtime manifest for %s: %w", component, err)
	}

	home := filepath.Join(i.RuntimeDir, component)
	i.logger.Info("installing java runtime", "component", component, "version", build.Version.Name, "path", home)

	jobs, links, err := i.plan(home, manifest)
	if err != nil {
		return "", err
	}
	err = i.fetcher.FetchAll(ctx, jobs, func(done, total int, job fetcher.Job) {
		if i.onProgress != nil {
			i.onProgress(shared.Event{Stage: shared.StageRuntime, Percent: shared.Percent(done, total), CurrentItem: job.Name})
		}
	})
	if err != nil {
		return "", fmt.Errorf("failed to download runtime %s: %w", component, err)
	}
	if err := createLinks(links); err != nil {
		return "", err
	}

	if i.locator != nil {
		i.locator.Invalidate(major)
	}
	return BundledPath(i.RuntimeDir, component), nil
}

type link struct {
	path   string
	target string
}

func (i *Installer) plan(home string, manifest manifests.JavaRuntimeManifest) ([]fetcher.Job, []link, error) {
	names := make([]string, 0, len(manifest.Files))
	for name := range manifest.Files {
		names = append(names, name)
	}
	sort.Strings(names)

	var jobs []fetcher.Job
	var links []link
	for _, name := range names {
		file := manifest.Files[name]
		dest := filepath.Join(home, filepath.FromSlash(name))
		if !strings.HasPrefix(dest, filepath.Clean(home)+string(os.PathSeparator)) {
			return nil, nil, fmt.Errorf("illegal runtime path %s", name)
		}
		switch file.Type {
		case "directory":
			if err := os.MkdirAll(dest, 0755); err != nil {
				return nil, nil, err
			}
		case "file":
			if file.Downloads == nil {
				continue
			}
			jobs = append(jobs, fetcher.Job{
				Name:       name,
				URL:        file.Downloads.Raw.URL,
				Dest:       dest,
				Sha1:       file.Downloads.Raw.Sha1,
				Size:       file.Downloads.Raw.Size,
				Executable: file.Executable,
			})
		case "link":
			links = append(links, link{path: dest, target: file.Target})
		}
	}
	return jobs, links, nil
}

func createLinks(links []link) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	for _, l := range links {
		if err := os.MkdirAll(filepath.Dir(l.path), 0755); err != nil {
			return err
		}
		os.Remove(l.path)
		if err := os.Symlink(l.target, l.path); err != nil {
			return fmt.Errorf("failed to link %s: %w", l.path, err)
		}
	}
	return nil
}
