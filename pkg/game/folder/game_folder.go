package folder

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"limeal.fr/mcengine/pkg/game/shared"
)

// GameFolder is the on-disk layout of an instance:
//
//	versions/<id>/<id>.jar, versions/<id>/<id>.json, versions/<id>/natives/
//	libraries/<group>/<artifact>/<version>/<artifact>-<version>.jar
//	assets/indexes/<id>.json, assets/objects/<hh>/<hash>
type GameFolder struct {
	Path string
}

func New(path string) *GameFolder {
	return &GameFolder{Path: path}
}

// GetGameFolderPathForFolder returns the per-user data directory for folderName.
func GetGameFolderPathForFolder(folderName string) (string, error) {
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(os.Getenv("HOME"), "Library", "Application Support", folderName), nil
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), folderName), nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return filepath.Join(os.Getenv("HOME"), "."+folderName), nil
	}
	return "", fmt.Errorf("unsupported OS")
}

func (g *GameFolder) GetPath() string {
	return g.Path
}

func (g *GameFolder) GetDirectory(directory shared.Directory) string {
	return filepath.Join(g.Path, string(directory))
}

func (g *GameFolder) VersionDir(id string) string {
	return filepath.Join(g.GetDirectory(shared.DirectoryVersions), id)
}

func (g *GameFolder) ClientJar(id string) string {
	return filepath.Join(g.VersionDir(id), id+".jar")
}

func (g *GameFolder) MetadataFile(id string) string {
	return filepath.Join(g.VersionDir(id), id+".json")
}

func (g *GameFolder) NativesDir(id string) string {
	return filepath.Join(g.VersionDir(id), string(shared.DirectoryNatives))
}

func (g *GameFolder) LibrariesDir() string {
	return g.GetDirectory(shared.DirectoryLibraries)
}

func (g *GameFolder) AssetsDir() string {
	return g.GetDirectory(shared.DirectoryAssets)
}

// Validate checks that everything a launch reads is present.
func (g *GameFolder) Validate(id string) error {
	var missing []string
	for _, path := range []string{
		g.ClientJar(id),
		g.MetadataFile(id),
		g.LibrariesDir(),
		g.AssetsDir(),
	} {
		if _, err := os.Stat(path); err != nil {
			missing = append(missing, path)
		}
	}
	if len(missing) > 0 {
		return &shared.IncompleteInstanceError{Missing: missing}
	}
	return nil
}
