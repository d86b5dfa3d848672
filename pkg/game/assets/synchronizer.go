package assets

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

// Progress is reported once every ReportEvery completed objects.
const ReportEvery = 50

// Synchronizer mirrors an asset index and its objects into the
// content-addressed store under assets/objects/<hh>/<hash>.
type Synchronizer struct {
	fetcher      *fetcher.Fetcher
	resourcesURL string
	reportEvery  int
	logger       *slog.Logger
}

type Option func(*Synchronizer)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Synchronizer) { s.logger = logger }
}

func WithReportEvery(n int) Option {
	return func(s *Synchronizer) {
		if n > 0 {
			s.reportEvery = n
		}
	}
}

func NewSynchronizer(f *fetcher.Fetcher, resourcesURL string, opts ...Option) *Synchronizer {
	if resourcesURL == "" {
		resourcesURL = shared.RESOURCES_URL
	}
	s := &Synchronizer{
		fetcher:      f,
		resourcesURL: strings.TrimSuffix(resourcesURL, "/"),
		reportEvery:  ReportEvery,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func IndexPath(assetsDir, id string) string {
	return filepath.Join(assetsDir, string(shared.DirectoryIndexes), id+".json")
}

func ObjectPath(assetsDir, hash string) string {
	return filepath.Join(assetsDir, string(shared.DirectoryObjects), hash[:2], hash)
}

// Sync fetches the index then every object missing from the store.
func (s *Synchronizer) Sync(ctx context.Context, ref manifests.AssetIndexRef, assetsDir string, onProgress shared.ProgressCallback) error {
	indexPath := IndexPath(assetsDir, ref.ID)
	if err := s.fetcher.Fetch(ctx, ref.URL, indexPath, ref.Sha1, nil); err != nil {
		return fmt.Errorf("failed to fetch asset index %s: %w", ref.ID, err)
	}

	data, err := os.ReadFile(indexPath)
	if err != nil {
		return err
	}
	var index manifests.AssetIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return fmt.Errorf("failed to decode asset index %s: %w", ref.ID, err)
	}

	jobs, err := s.missingObjects(index, assetsDir)
	if err != nil {
		return err
	}
	s.logger.Info("syncing assets", "index", ref.ID, "objects", len(index.Objects), "missing", len(jobs))

	report := func(done, total int, item string) {
		if onProgress != nil {
			onProgress(shared.Event{Stage: shared.StageAssets, Percent: shared.Percent(done, total), CurrentItem: item})
		}
	}

	err = s.fetcher.FetchAll(ctx, jobs, func(done, total int, job fetcher.Job) {
		if done%s.reportEvery == 0 && done != total {
			report(done, total, job.Name)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to fetch assets: %w", err)
	}
	report(len(jobs), len(jobs), "")
	return nil
}

func (s *Synchronizer) missingObjects(index manifests.AssetIndex, assetsDir string) ([]fetcher.Job, error) {
	names := make([]string, 0, len(index.Objects))
	for name := range index.Objects {
		names = append(names, name)
	}
	sort.Strings(names)

	seen := map[string]bool{}
	var jobs []fetcher.Job
	for _, name := range names {
		obj := index.Objects[name]
		if len(obj.Hash) < 2 {
			return nil, fmt.Errorf("invalid hash %q for asset %s", obj.Hash, name)
		}
		if seen[obj.Hash] {
			continue
		}
		seen[obj.Hash] = true

		dest := ObjectPath(assetsDir, obj.Hash)
		// The hash is the file name, presence is enough.
		if utils.FileExists(dest) {
			continue
		}
		jobs = append(jobs, fetcher.Job{
			Name: name,
			URL:  fmt.Sprintf("%s/%s/%s", s.resourcesURL, obj.Hash[:2], obj.Hash),
			Dest: dest,
			Sha1: obj.Hash,
			Size: obj.Size,
		})
	}
	return jobs, nil
}
