package manifests

/////////////////////////////////////////////////////////////////////
// Java runtime manifests
/////////////////////////////////////////////////////////////////////

type RuntimeFileDownload struct {
	URL  string `json:"url"`
	Size int64  `json:"size"`
	Sha1 string `json:"sha1"`
}

// Single entry of a component manifest
type JavaRuntimeManifestFile struct {
	Type       string `json:"type"` // file, directory or link
	Executable bool   `json:"executable,omitempty"`
	Target     string `json:"target,omitempty"` // link target
	Downloads  *struct {
		Lzma *RuntimeFileDownload `json:"lzma,omitempty"`
		Raw  RuntimeFileDownload  `json:"raw"`
	} `json:"downloads,omitempty"`
}

type JavaRuntimeManifest struct {
	Files map[string]JavaRuntimeManifestFile `json:"files"`
}

type JavaRuntime struct {
	Manifest RuntimeFileDownload `json:"manifest"`
	Version  struct {
		Name     string `json:"name"`
		Released string `json:"released"`
	} `json:"version"`
}

// Platform key ("linux", "mac-os-arm64", ...) to component name to builds.
type RuntimeIndex map[string]map[string][]JavaRuntime

// Component returns the first build of a component for a platform.
func (r RuntimeIndex) Component(platform, component string) (JavaRuntime, bool) {
	builds := r[platform][component]
	if len(builds) == 0 {
		return JavaRuntime{}, false
	}
	return builds[0], true
}
