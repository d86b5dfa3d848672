package manifests

import "time"

/////////////////////////////////////////////////////////////////////
// Catalog
/////////////////////////////////////////////////////////////////////

type VersionCatalog struct {
	Latest   LatestVersions   `json:"latest"`
	Versions []VersionSummary `json:"versions"`
}

type LatestVersions struct {
	Release  string `json:"release"`
	Snapshot string `json:"snapshot"`
}

type VersionSummary struct {
	ID          string    `json:"id"`
	Type        string    `json:"type"`
	URL         string    `json:"url"`
	Time        time.Time `json:"time"`
	ReleaseTime time.Time `json:"releaseTime"`
	SHA1        string    `json:"sha1,omitempty"`
}

// Find returns the summary with the given id.
func (c *VersionCatalog) Find(id string) (VersionSummary, bool) {
	for _, v := range c.Versions {
		if v.ID == id {
			return v, true
		}
	}
	return VersionSummary{}, false
}

func (c *VersionCatalog) IDs() []string {
	ids := make([]string, 0, len(c.Versions))
	for _, v := range c.Versions {
		ids = append(ids, v.ID)
	}
	return ids
}

/////////////////////////////////////////////////////////////////////
// VersionMetadata
/////////////////////////////////////////////////////////////////////

type Rule struct {
	Action   string          `json:"action"` // allow | disallow
	OS       *OSRule         `json:"os,omitempty"`
	Features map[string]bool `json:"features,omitempty"`
}

type OSRule struct {
	Name    string `json:"name,omitempty"`
	Arch    string `json:"arch,omitempty"`
	Version string `json:"version,omitempty"` // regex on the OS version
}

type Download struct {
	URL  string `json:"url"`
	Sha1 string `json:"sha1"`
	Size int64  `json:"size"`
}

type Artifact struct {
	Path string `json:"path"`
	Sha1 string `json:"sha1"`
	Size int64  `json:"size"`
	URL  string `json:"url"`
}

type LibraryDownloads struct {
	Artifact    *Artifact            `json:"artifact,omitempty"`
	Classifiers map[string]*Artifact `json:"classifiers,omitempty"`
}

type ExtractRules struct {
	Exclude []string `json:"exclude,omitempty"`
}

type Library struct {
	Name      string            `json:"name"`
	Downloads *LibraryDownloads `json:"downloads,omitempty"`
	URL       string            `json:"url,omitempty"` // maven repository base for libraries without downloads
	Sha1      string            `json:"sha1,omitempty"`
	Rules     []Rule            `json:"rules,omitempty"`
	Natives   map[string]string `json:"natives,omitempty"`
	Extract   *ExtractRules     `json:"extract,omitempty"`
}

type AssetIndexRef struct {
	ID        string `json:"id"`
	Sha1      string `json:"sha1"`
	Size      int64  `json:"size"`
	TotalSize int64  `json:"totalSize,omitempty"`
	URL       string `json:"url"`
}

type Downloads struct {
	Client *Download `json:"client,omitempty"`
	Server *Download `json:"server,omitempty"`
}

type JavaVersion struct {
	Component    string `json:"component"`
	MajorVersion int    `json:"majorVersion"`
}

// Arguments items are either a string or a {rules, value} object; see ParseArguments.
type Arguments struct {
	Game []any `json:"game,omitempty"`
	JVM  []any `json:"jvm,omitempty"`
}

type VersionMetadata struct {
	ID                     string         `json:"id"`
	Type                   string         `json:"type"`
	InheritsFrom           string         `json:"inheritsFrom,omitempty"`
	MainClass              string         `json:"mainClass"`
	MinimumLauncherVersion int            `json:"minimumLauncherVersion,omitempty"`
	MinecraftArguments     string         `json:"minecraftArguments,omitempty"`
	Arguments              *Arguments     `json:"arguments,omitempty"`
	AssetIndex             *AssetIndexRef `json:"assetIndex,omitempty"`
	Assets                 string         `json:"assets,omitempty"`
	Downloads              Downloads      `json:"downloads"`
	Libraries              []Library      `json:"libraries"`
	JavaVersion            *JavaVersion   `json:"javaVersion,omitempty"`
	ReleaseTime            time.Time      `json:"releaseTime"`
	Time                   time.Time      `json:"time"`
}

func (m *VersionMetadata) IsLegacyFormat() bool {
	return m.MinecraftArguments != "" && m.Arguments == nil
}

func (m *VersionMetadata) IsModernFormat() bool {
	return m.Arguments != nil
}

// AssetsID is the asset index id, falling back to the "assets" field of very old documents.
func (m *VersionMetadata) AssetsID() string {
	if m.AssetIndex != nil && m.AssetIndex.ID != "" {
		return m.AssetIndex.ID
	}
	if m.Assets != "" {
		return m.Assets
	}
	return "legacy"
}

/////////////////////////////////////////////////////////////////////
// AssetIndex
/////////////////////////////////////////////////////////////////////

type AssetIndex struct {
	Objects map[string]AssetObject `json:"objects"`
}

type AssetObject struct {
	Hash string `json:"hash"`
	Size int64  `json:"size"`
}
