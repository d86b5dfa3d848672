package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sahilm/fuzzy"
	"github.com/unascribed/FlexVer/go/flexver"
	"golang.org/x/exp/slices"

	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

// Catalog and metadata requests fail fast.
const RequestTimeout = 30 * time.Second

type Catalog struct {
	fetcher *fetcher.Fetcher
	url     string
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Catalog)

func WithLogger(logger *slog.Logger) Option {
	return func(c *Catalog) { c.logger = logger }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Catalog) { c.timeout = d }
}

func New(f *fetcher.Fetcher, catalogURL string, opts ...Option) *Catalog {
	if catalogURL == "" {
		catalogURL = shared.PISTON_MANIFEST_URL
	}
	c := &Catalog{
		fetcher: f,
		url:     catalogURL,
		timeout: RequestTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Catalog) get(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	rc, _, err := c.fetcher.Open(ctx, url)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, shared.NewTransferError(url, err)
	}
	return data, nil
}

func (c *Catalog) FetchCatalog(ctx context.Context) (*manifests.VersionCatalog, error) {
	data, err := c.get(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch version catalog: %w", err)
	}
	var cat manifests.VersionCatalog
	if err := json.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to decode version catalog: %w", err)
	}
	c.logger.Debug("fetched version catalog", "versions", len(cat.Versions), "release", cat.Latest.Release)
	return &cat, nil
}

// FetchVersionMetadata returns the decoded document and its raw bytes,
// which are what gets cached on disk.
func (c *Catalog) FetchVersionMetadata(ctx context.Context, summary manifests.VersionSummary) (*manifests.VersionMetadata, []byte, error) {
	data, err := c.get(ctx, summary.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to fetch metadata for %s: %w", summary.ID, err)
	}
	if summary.SHA1 != "" {
		if actual := utils.BytesSHA1(data); !strings.EqualFold(actual, summary.SHA1) {
			return nil, nil, &shared.HashMismatchError{Path: summary.URL, Expected: summary.SHA1, Actual: actual}
		}
	}
	meta, err := decodeMetadata(data)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode metadata for %s: %w", summary.ID, err)
	}
	return meta, data, nil
}

// Lookup finds id in the catalog, suggesting close ids when it is unknown.
func Lookup(cat *manifests.VersionCatalog, id string) (manifests.VersionSummary, error) {
	if summary, ok := cat.Find(id); ok {
		return summary, nil
	}
	notFound := &shared.VersionNotFoundError{ID: id}
	for i, match := range fuzzy.Find(id, cat.IDs()) {
		if i == 3 {
			break
		}
		notFound.Suggestions = append(notFound.Suggestions, match.Str)
	}
	return manifests.VersionSummary{}, notFound
}

// SortedIDs lists catalog ids of the given types, newest first.
func SortedIDs(cat *manifests.VersionCatalog, types ...string) []string {
	var ids []string
	for _, v := range cat.Versions {
		if len(types) == 0 || slices.Contains(types, v.Type) {
			ids = append(ids, v.ID)
		}
	}
	flexver.VersionSlice(ids).Sort()
	slices.Reverse(ids)
	return ids
}

/////////////////////////////////////////////////////////////////////
// Local cache
/////////////////////////////////////////////////////////////////////

func MetadataPath(gameDir, id string) string {
	return filepath.Join(gameDir, string(shared.DirectoryVersions), id, id+".json")
}

func decodeMetadata(data []byte) (*manifests.VersionMetadata, error) {
	var meta manifests.VersionMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadCachedMetadata returns (nil, nil) when the document is not cached.
func LoadCachedMetadata(gameDir, id string) (*manifests.VersionMetadata, error) {
	data, err := os.ReadFile(MetadataPath(gameDir, id))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	meta, err := decodeMetadata(data)
	if err != nil {
		return nil, fmt.Errorf("failed to decode cached metadata for %s: %w", id, err)
	}
	return meta, nil
}

// SaveMetadata stores the document verbatim.
func SaveMetadata(gameDir, id string, raw []byte) error {
	path := MetadataPath(gameDir, id)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
	}
	return os.WriteFile(path, raw, 0644)
}

// LoadResolvedMetadata loads a cached document and merges the chain of
// versions it inherits from.
func LoadResolvedMetadata(gameDir, id string) (*manifests.VersionMetadata, error) {
	seen := map[string]bool{}
	var load func(id string) (*manifests.VersionMetadata, error)
	load = func(id string) (*manifests.VersionMetadata, error) {
		if seen[id] {
			return nil, fmt.Errorf("inheritance cycle at %s", id)
		}
		seen[id] = true

		meta, err := LoadCachedMetadata(gameDir, id)
		if err != nil {
			return nil, err
		}
		if meta == nil {
			return nil, &shared.MissingArtifactError{Path: MetadataPath(gameDir, id)}
		}
		if meta.InheritsFrom == "" {
			return meta, nil
		}
		parent, err := load(meta.InheritsFrom)
		if err != nil {
			return nil, err
		}
		return manifests.Inherit(meta, parent), nil
	}
	return load(id)
}
