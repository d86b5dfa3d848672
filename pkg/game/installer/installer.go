package installer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"limeal.fr/mcengine/pkg/game/assets"
	"limeal.fr/mcengine/pkg/game/catalog"
	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/folder"
	"limeal.fr/mcengine/pkg/game/libraries"
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/rules"
	"limeal.fr/mcengine/pkg/game/shared"
)

// Installer materializes a version into an instance directory. Running it
// again on a complete instance only re-reads the catalog.
type Installer struct {
	fetcher      *fetcher.Fetcher
	catalog      *catalog.Catalog
	assets       *assets.Synchronizer
	platform     rules.Platform
	librariesURL string
	onProgress   shared.ProgressCallback
	logger       *slog.Logger
}

type Option func(*Installer)

func WithLogger(logger *slog.Logger) Option {
	return func(i *Installer) { i.logger = logger }
}

func WithProgress(cb shared.ProgressCallback) Option {
	return func(i *Installer) { i.onProgress = cb }
}

func WithPlatform(p rules.Platform) Option {
	return func(i *Installer) { i.platform = p }
}

func WithLibrariesURL(url string) Option {
	return func(i *Installer) { i.librariesURL = url }
}

func New(f *fetcher.Fetcher, c *catalog.Catalog, s *assets.Synchronizer, opts ...Option) *Installer {
	i := &Installer{
		fetcher:      f,
		catalog:      c,
		assets:       s,
		platform:     rules.DetectPlatform(),
		librariesURL: shared.LIBRARIES_URL,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

func (i *Installer) emit(ev shared.Event) {
	if i.onProgress != nil {
		i.onProgress(ev)
	}
}

// Install fetches everything versionID needs into instanceDir and records
// the instance descriptor.
func (i *Installer) Install(ctx context.Context, versionID, instanceDir string) (*folder.Instance, error) {
	gameDir, err := filepath.Abs(instanceDir)
	if err != nil {
		return nil, err
	}
	g := folder.New(gameDir)

	var cat *manifests.VersionCatalog
	meta, err := i.metadata(ctx, g, versionID, &cat, map[string]bool{})
	if err != nil {
		return nil, err
	}

	if err := i.installClient(ctx, g, versionID, meta); err != nil {
		return nil, err
	}
	if err := i.installLibraries(ctx, g, meta); err != nil {
		return nil, err
	}
	if meta.AssetIndex != nil {
		if err := i.assets.Sync(ctx, *meta.AssetIndex, g.AssetsDir(), i.onProgress); err != nil {
			return nil, err
		}
	} else if err := os.MkdirAll(g.AssetsDir(), 0755); err != nil {
		return nil, err
	}

	inst, err := i.writeInstance(gameDir, versionID)
	if err != nil {
		return nil, err
	}
	i.emit(shared.Event{Stage: shared.StageDone, Percent: 100, CurrentItem: versionID})
	i.logger.Info("install complete", "version", versionID, "path", gameDir)
	return inst, nil
}

// metadata returns the merged document of id, preferring the local cache and
// installing the documents it inherits from.
func (i *Installer) metadata(ctx context.Context, g *folder.GameFolder, id string, cat **manifests.VersionCatalog, seen map[string]bool) (*manifests.VersionMetadata, error) {
	if seen[id] {
		return nil, fmt.Errorf("inheritance cycle at %s", id)
	}
	seen[id] = true

	if *cat == nil {
		i.emit(shared.Event{Stage: shared.StageCatalog, CurrentItem: id})
		c, err := i.catalog.FetchCatalog(ctx)
		if err != nil {
			return nil, err
		}
		*cat = c
	}

	meta, err := catalog.LoadCachedMetadata(g.Path, id)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		summary, err := catalog.Lookup(*cat, id)
		if err != nil {
			return nil, err
		}
		i.emit(shared.Event{Stage: shared.StageMetadata, CurrentItem: id})
		fetched, raw, err := i.catalog.FetchVersionMetadata(ctx, summary)
		if err != nil {
			return nil, err
		}
		if err := catalog.SaveMetadata(g.Path, id, raw); err != nil {
			return nil, fmt.Errorf("failed to cache metadata for %s: %w", id, err)
		}
		meta = fetched
	} else {
		i.logger.Debug("using cached metadata", "version", id)
	}

	if meta.InheritsFrom == "" {
		return meta, nil
	}
	parent, err := i.metadata(ctx, g, meta.InheritsFrom, cat, seen)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s inherited by %s: %w", meta.InheritsFrom, id, err)
	}
	return manifests.Inherit(meta, parent), nil
}

func (i *Installer) installClient(ctx context.Context, g *folder.GameFolder, id string, meta *manifests.VersionMetadata) error {
	client := meta.Downloads.Client
	if client == nil {
		return fmt.Errorf("version %s declares no client download", id)
	}
	err := i.fetcher.Fetch(ctx, client.URL, g.ClientJar(id), client.Sha1, func(done, total int64) {
		if total <= 0 {
			total = client.Size
		}
		i.emit(shared.Event{
			Stage:       shared.StageClient,
			Percent:     shared.Percent(int(done), int(total)),
			CurrentItem: id + ".jar",
			BytesDone:   done,
			BytesTotal:  total,
		})
	})
	if err != nil {
		return fmt.Errorf("failed to fetch client jar: %w", err)
	}
	return nil
}

func (i *Installer) installLibraries(ctx context.Context, g *folder.GameFolder, meta *manifests.VersionMetadata) error {
	resolver := libraries.NewResolver(g.LibrariesDir(), i.platform)
	resolver.LibrariesURL = i.librariesURL
	resolved, err := resolver.Resolve(meta.Libraries)
	if err != nil {
		return fmt.Errorf("failed to resolve libraries: %w", err)
	}
	if err := os.MkdirAll(g.LibrariesDir(), 0755); err != nil {
		return err
	}

	jobs := resolved.Jobs()
	i.logger.Info("fetching libraries", "count", len(jobs))
	return i.fetcher.FetchAll(ctx, jobs, func(done, total int, job fetcher.Job) {
		i.emit(shared.Event{Stage: shared.StageLibraries, Percent: shared.Percent(done, total), CurrentItem: job.Name})
	})
}

func (i *Installer) writeInstance(gameDir, versionID string) (*folder.Instance, error) {
	inst, err := folder.LoadInstance(gameDir)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		inst = &folder.Instance{ID: filepath.Base(gameDir)}
	}
	inst.Version = versionID
	inst.GameDir = gameDir
	inst.InstalledAt = time.Now().UTC().Truncate(time.Second)
	if err := folder.SaveInstance(inst); err != nil {
		return nil, err
	}
	return inst, nil
}
