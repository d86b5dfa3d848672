package libraries

import (
	"fmt"
	"path/filepath"
	"strings"

	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/rules"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

// Entry is a jar placed under the libraries directory.
type Entry struct {
	Name string // maven coordinate
	Path string // absolute
	URL  string
	Sha1 string
	Size int64
}

// Native is a jar whose content is extracted into the natives directory.
type Native struct {
	Entry
	Classifier string
	Exclude    []string
}

type Resolved struct {
	Classpath []Entry
	Natives   []Native
}

type Resolver struct {
	LibrariesDir string
	Platform     rules.Platform
	Features     rules.FeatureSet
	LibrariesURL string // maven base for libraries declared without downloads
}

func NewResolver(librariesDir string, platform rules.Platform) *Resolver {
	return &Resolver{
		LibrariesDir: librariesDir,
		Platform:     platform,
		LibrariesURL: shared.LIBRARIES_URL,
	}
}

// Resolve keeps declaration order and drops libraries excluded by their rules.
func (r *Resolver) Resolve(libs []manifests.Library) (*Resolved, error) {
	res := &Resolved{}
	seen := map[string]bool{}
	for _, lib := range libs {
		if !rules.Evaluate(lib.Rules, r.Platform, r.Features) {
			continue
		}

		if native, ok, err := r.native(lib); err != nil {
			return nil, err
		} else if ok && !seen[native.Path] {
			seen[native.Path] = true
			res.Natives = append(res.Natives, native)
		}

		entry, ok, err := r.artifact(lib)
		if err != nil {
			return nil, err
		}
		if ok && !seen[entry.Path] {
			seen[entry.Path] = true
			res.Classpath = append(res.Classpath, entry)
		}
	}
	return res, nil
}

func (r *Resolver) entry(name, relPath, url, sha1 string, size int64) Entry {
	return Entry{
		Name: name,
		Path: filepath.Join(r.LibrariesDir, filepath.FromSlash(relPath)),
		URL:  url,
		Sha1: sha1,
		Size: size,
	}
}

func (r *Resolver) mavenBase(lib manifests.Library) string {
	if lib.URL != "" {
		return lib.URL
	}
	return r.LibrariesURL
}

func (r *Resolver) artifact(lib manifests.Library) (Entry, bool, error) {
	if lib.Downloads != nil {
		a := lib.Downloads.Artifact
		if a == nil {
			return Entry{}, false, nil
		}
		path := a.Path
		if path == "" {
			p, err := utils.MavenPath(lib.Name)
			if err != nil {
				return Entry{}, false, err
			}
			path = p
		}
		url := a.URL
		if url == "" {
			url = strings.TrimSuffix(r.mavenBase(lib), "/") + "/" + path
		}
		return r.entry(lib.Name, path, url, a.Sha1, a.Size), true, nil
	}

	// Libraries with only a natives map have no main artifact.
	if len(lib.Natives) > 0 {
		return Entry{}, false, nil
	}

	url, path, err := utils.BuildDownloadURLFromMavenPath(r.mavenBase(lib), lib.Name)
	if err != nil {
		return Entry{}, false, err
	}
	return r.entry(lib.Name, path, url, lib.Sha1, 0), true, nil
}

func (r *Resolver) classifierKey(lib manifests.Library) (string, bool) {
	key, ok := lib.Natives[r.Platform.OS]
	if !ok {
		return "", false
	}
	arch := "32"
	if r.Platform.Is64Bit() {
		arch = "64"
	}
	return strings.ReplaceAll(key, "${arch}", arch), true
}

func (r *Resolver) native(lib manifests.Library) (Native, bool, error) {
	key, ok := r.classifierKey(lib)
	if !ok {
		return Native{}, false, nil
	}

	var exclude []string
	if lib.Extract != nil {
		exclude = lib.Extract.Exclude
	}

	if lib.Downloads != nil {
		a := lib.Downloads.Classifiers[key]
		if a == nil {
			return Native{}, false, fmt.Errorf("library %s declares native %s without a download", lib.Name, key)
		}
		path := a.Path
		if path == "" {
			p, err := utils.MavenPath(lib.Name + ":" + key)
			if err != nil {
				return Native{}, false, err
			}
			path = p
		}
		return Native{Entry: r.entry(lib.Name, path, a.URL, a.Sha1, a.Size), Classifier: key, Exclude: exclude}, true, nil
	}

	url, path, err := utils.BuildDownloadURLFromMavenPath(r.mavenBase(lib), lib.Name+":"+key)
	if err != nil {
		return Native{}, false, err
	}
	return Native{Entry: r.entry(lib.Name, path, url, "", 0), Classifier: key, Exclude: exclude}, true, nil
}

/////////////////////////////////////////////////////////////////////
// Resolved
/////////////////////////////////////////////////////////////////////

// ClasspathWith returns library paths in order followed by the client jar.
func (res *Resolved) ClasspathWith(clientJar string) []string {
	entries := make([]string, 0, len(res.Classpath)+1)
	for _, e := range res.Classpath {
		entries = append(entries, e.Path)
	}
	return append(entries, clientJar)
}

// Verify reports the first library expected on disk that is missing.
func (res *Resolved) Verify() error {
	for _, e := range res.Classpath {
		if !utils.FileExists(e.Path) {
			return &shared.MissingArtifactError{Path: e.Path}
		}
	}
	for _, n := range res.Natives {
		if !utils.FileExists(n.Path) {
			return &shared.MissingArtifactError{Path: n.Path}
		}
	}
	return nil
}

// Jobs lists the downloads needed to materialize every library.
func (res *Resolved) Jobs() []fetcher.Job {
	jobs := make([]fetcher.Job, 0, len(res.Classpath)+len(res.Natives))
	for _, e := range res.Classpath {
		jobs = append(jobs, fetcher.Job{Name: e.Name, URL: e.URL, Dest: e.Path, Sha1: e.Sha1, Size: e.Size})
	}
	for _, n := range res.Natives {
		jobs = append(jobs, fetcher.Job{Name: n.Name + ":" + n.Classifier, URL: n.URL, Dest: n.Path, Sha1: n.Sha1, Size: n.Size})
	}
	return jobs
}

// JoinClasspath joins entries with the separator of the target OS.
func JoinClasspath(entries []string, osName string) string {
	return strings.Join(entries, Separator(osName))
}

func Separator(osName string) string {
	if osName == shared.OSWindows {
		return ";"
	}
	return ":"
}
