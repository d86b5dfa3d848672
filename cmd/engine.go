package cmd

import (
	"limeal.fr/mcengine/pkg/connectors"
	"limeal.fr/mcengine/pkg/game/assets"
	"limeal.fr/mcengine/pkg/game/catalog"
	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/installer"
	"limeal.fr/mcengine/pkg/game/java"
	"limeal.fr/mcengine/pkg/game/launcher"
	"limeal.fr/mcengine/pkg/game/shared"
)

// engine wires the components from the loaded configuration.
type engine struct {
	fetcher *fetcher.Fetcher
	catalog *catalog.Catalog
	locator *java.Locator
}

func newEngine() *engine {
	registry := connectors.NewRegistry(cfg.ConnectorOptions())
	f := fetcher.New(registry, fetcher.WithWorkers(cfg.Workers), fetcher.WithLogger(logger))
	return &engine{
		fetcher: f,
		catalog: catalog.New(f, cfg.CatalogURL, catalog.WithLogger(logger)),
		locator: java.NewLocator(cfg.RuntimeDir, java.WithLogger(logger)),
	}
}

func (e *engine) Close() error {
	return e.fetcher.Close()
}

func (e *engine) installer(onProgress shared.ProgressCallback) *installer.Installer {
	return installer.New(e.fetcher, e.catalog,
		assets.NewSynchronizer(e.fetcher, cfg.ResourcesURL, assets.WithLogger(logger)),
		installer.WithLogger(logger),
		installer.WithLibrariesURL(cfg.LibrariesURL),
		installer.WithProgress(onProgress),
	)
}

func (e *engine) runtimeInstaller(onProgress shared.ProgressCallback) *java.Installer {
	return java.NewInstaller(e.fetcher, cfg.RuntimeDir, cfg.RuntimeManifestURL,
		java.WithInstallLogger(logger),
		java.WithLocator(e.locator),
		java.WithProgress(onProgress),
	)
}

func (e *engine) pipeline(opts ...launcher.Option) *launcher.Pipeline {
	opts = append([]launcher.Option{
		launcher.WithLogger(logger),
		launcher.WithLauncherBrand(cfg.LauncherName, cfg.LauncherVersion),
	}, opts...)
	return launcher.NewPipeline(e.locator, opts...)
}
