package installer

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limeal.fr/mcengine/pkg/connectors"
	"limeal.fr/mcengine/pkg/game/assets"
	"limeal.fr/mcengine/pkg/game/catalog"
	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/folder"
	"limeal.fr/mcengine/pkg/game/java"
	"limeal.fr/mcengine/pkg/game/launcher"
	"limeal.fr/mcengine/pkg/game/profile"
	"limeal.fr/mcengine/pkg/game/rules"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

type fakeSpawner struct {
	last launcher.Command
}

func (f *fakeSpawner) Spawn(ctx context.Context, cmd launcher.Command) (int, error) {
	f.last = cmd
	return 777, nil
}

func nativesZip(t *testing.T) []byte {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("liblwjgl64.so")
	require.NoError(t, err)
	_, err = w.Write([]byte("elf"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

type world struct {
	srv       *httptest.Server
	artifacts int64

	mu    sync.RWMutex
	files map[string][]byte
}

func (w *world) add(path string, data []byte) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.files[path] = data
}

// newWorld serves a catalog holding 1.12.2 with one library, one native and
// two asset objects.
func newWorld(t *testing.T) *world {
	w := &world{files: map[string][]byte{}}
	mux := http.NewServeMux()
	w.srv = httptest.NewServer(mux)
	t.Cleanup(w.srv.Close)
	base := w.srv.URL

	client := []byte("client jar")
	lib := []byte("guava jar")
	native := nativesZip(t)
	w.add("/client.jar", client)
	w.add("/libraries/com/google/guava/guava/21.0/guava-21.0.jar", lib)
	w.add("/libraries/org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar", native)

	objects := map[string]any{}
	for _, name := range []string{"icons/icon_16x16.png", "minecraft/sounds/step.ogg"} {
		data := []byte(name)
		hash := utils.BytesSHA1(data)
		w.add("/objects/"+hash[:2]+"/"+hash, data)
		objects[name] = map[string]any{"hash": hash, "size": len(data)}
	}
	index, err := json.Marshal(map[string]any{"objects": objects})
	require.NoError(t, err)
	w.add("/indexes/1.12.json", index)

	meta, err := json.Marshal(map[string]any{
		"id":                 "1.12.2",
		"type":               "release",
		"mainClass":          "net.minecraft.client.main.Main",
		"minecraftArguments": "--username ${auth_player_name} --version ${version_name}",
		"assets":             "1.12",
		"assetIndex":         map[string]any{"id": "1.12", "url": base + "/indexes/1.12.json", "sha1": utils.BytesSHA1(index)},
		"downloads": map[string]any{
			"client": map[string]any{"url": base + "/client.jar", "sha1": utils.BytesSHA1(client), "size": len(client)},
		},
		"libraries": []any{
			map[string]any{
				"name": "com.google.guava:guava:21.0",
				"downloads": map[string]any{"artifact": map[string]any{
					"path": "com/google/guava/guava/21.0/guava-21.0.jar",
					"url":  base + "/libraries/com/google/guava/guava/21.0/guava-21.0.jar",
					"sha1": utils.BytesSHA1(lib),
				}},
			},
			map[string]any{
				"name":    "org.lwjgl.lwjgl:lwjgl-platform:2.9.4",
				"natives": map[string]any{"linux": "natives-linux", "windows": "natives-windows"},
				"downloads": map[string]any{"classifiers": map[string]any{
					"natives-linux": map[string]any{
						"path": "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar",
						"url":  base + "/libraries/org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar",
						"sha1": utils.BytesSHA1(native),
					},
				}},
			},
			map[string]any{
				"name":  "ca.weblite:java-objc-bridge:1.0.0",
				"rules": []any{map[string]any{"action": "allow", "os": map[string]any{"name": "osx"}}},
			},
		},
	})
	require.NoError(t, err)

	mux.HandleFunc("/manifest.json", func(rw http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(rw, `{"latest":{"release":"1.12.2","snapshot":"1.12.2"},"versions":[
			{"id":"1.12.2","type":"release","url":"%s/v/1.12.2.json","sha1":"%s"}]}`, base, utils.BytesSHA1(meta))
	})
	mux.HandleFunc("/v/1.12.2.json", func(rw http.ResponseWriter, r *http.Request) {
		rw.Write(meta)
	})
	mux.HandleFunc("/", func(rw http.ResponseWriter, r *http.Request) {
		w.mu.RLock()
		data, ok := w.files[r.URL.Path]
		w.mu.RUnlock()
		if !ok {
			rw.WriteHeader(http.StatusNotFound)
			return
		}
		if !strings.HasPrefix(r.URL.Path, "/indexes/") {
			atomic.AddInt64(&w.artifacts, 1)
		}
		rw.Write(data)
	})
	return w
}

func (w *world) installer(t *testing.T, opts ...Option) *Installer {
	f := fetcher.New(connectors.NewRegistry(connectors.Options{}), fetcher.WithWorkers(1))
	t.Cleanup(func() { f.Close() })
	opts = append([]Option{
		WithPlatform(rules.Platform{OS: shared.OSLinux, Arch: "x86_64"}),
		WithLibrariesURL(w.srv.URL + "/libraries/"),
	}, opts...)
	return New(f,
		catalog.New(f, w.srv.URL+"/manifest.json"),
		assets.NewSynchronizer(f, w.srv.URL+"/objects/"),
		opts...,
	)
}

func TestInstall(t *testing.T) {
	w := newWorld(t)
	dir := filepath.Join(t.TempDir(), "survival")

	var mu sync.Mutex
	stages := map[shared.Stage]bool{}
	inst, err := w.installer(t, WithProgress(func(ev shared.Event) {
		mu.Lock()
		stages[ev.Stage] = true
		mu.Unlock()
	})).Install(context.Background(), "1.12.2", dir)
	require.NoError(t, err)

	assert.Equal(t, "survival", inst.ID)
	assert.Equal(t, "1.12.2", inst.Version)
	assert.Equal(t, int64(5), atomic.LoadInt64(&w.artifacts))

	g := folder.New(dir)
	require.NoError(t, g.Validate("1.12.2"))
	assert.FileExists(t, filepath.Join(g.LibrariesDir(), "com/google/guava/guava/21.0/guava-21.0.jar"))
	assert.FileExists(t, filepath.Join(g.LibrariesDir(), "org/lwjgl/lwjgl-platform/2.9.4/lwjgl-platform-2.9.4-natives-linux.jar"))
	assert.NoFileExists(t, filepath.Join(g.LibrariesDir(), "ca/weblite/java-objc-bridge/1.0.0/java-objc-bridge-1.0.0.jar"))
	assert.FileExists(t, assets.IndexPath(g.AssetsDir(), "1.12"))

	for _, s := range []shared.Stage{shared.StageCatalog, shared.StageMetadata, shared.StageClient, shared.StageLibraries, shared.StageAssets, shared.StageDone} {
		assert.True(t, stages[s], "missing %s event", s)
	}

	loaded, err := folder.LoadInstance(dir)
	require.NoError(t, err)
	assert.Equal(t, "1.12.2", loaded.Version)
}

func TestInstallThenLaunch(t *testing.T) {
	w := newWorld(t)
	dir := filepath.Join(t.TempDir(), "survival")
	linux64 := rules.Platform{OS: shared.OSLinux, Arch: "x86_64"}

	inst, err := w.installer(t).Install(context.Background(), "1.12.2", dir)
	require.NoError(t, err)

	javaPath := filepath.Join(t.TempDir(), "java")
	require.NoError(t, os.WriteFile(javaPath, []byte("#!/bin/sh"), 0755))

	spawner := &fakeSpawner{}
	p := launcher.NewPipeline(java.NewLocator(""), launcher.WithSpawner(spawner), launcher.WithPlatform(linux64))
	res, err := p.Launch(context.Background(), inst, profile.AuthInfo{
		Username: "Steve", UUID: "abc-123", AccessToken: "tok", UserType: profile.UserTypeMSA,
	}, launcher.LaunchOptions{JavaPath: javaPath})
	require.NoError(t, err)
	assert.Equal(t, 777, res.PID)

	g := folder.New(dir)
	cmd := spawner.last
	assert.Equal(t, javaPath, cmd.Path)
	cp := -1
	for i, arg := range cmd.Args {
		if arg == "-cp" {
			cp = i
			break
		}
	}
	require.Greater(t, cp, 0)
	assert.Equal(t, []string{
		filepath.Join(g.LibrariesDir(), "com/google/guava/guava/21.0/guava-21.0.jar"),
		g.ClientJar("1.12.2"),
	}, strings.Split(cmd.Args[cp+1], ":"))
	assert.Equal(t, "net.minecraft.client.main.Main", cmd.Args[cp+2])
	assert.Equal(t, []string{"--username", "Steve", "--version", "1.12.2"}, cmd.Args[cp+3:])
	assert.FileExists(t, filepath.Join(g.NativesDir("1.12.2"), "liblwjgl64.so"))
}

func TestInstallIsIdempotent(t *testing.T) {
	w := newWorld(t)
	dir := t.TempDir()
	i := w.installer(t)

	_, err := i.Install(context.Background(), "1.12.2", dir)
	require.NoError(t, err)
	first := atomic.LoadInt64(&w.artifacts)

	_, err = i.Install(context.Background(), "1.12.2", dir)
	require.NoError(t, err)
	assert.Equal(t, first, atomic.LoadInt64(&w.artifacts))
}

func TestInstallKeepsInstanceSettings(t *testing.T) {
	w := newWorld(t)
	dir := t.TempDir()
	require.NoError(t, folder.SaveInstance(&folder.Instance{ID: "custom", GameDir: dir, MemoryMB: 4096}))

	inst, err := w.installer(t).Install(context.Background(), "1.12.2", dir)
	require.NoError(t, err)
	assert.Equal(t, "custom", inst.ID)
	assert.Equal(t, 4096, inst.MemoryMB)
}

func TestInstallRepairsCorruptedLibrary(t *testing.T) {
	w := newWorld(t)
	dir := t.TempDir()
	i := w.installer(t)

	_, err := i.Install(context.Background(), "1.12.2", dir)
	require.NoError(t, err)

	jar := filepath.Join(dir, "libraries/com/google/guava/guava/21.0/guava-21.0.jar")
	require.NoError(t, os.WriteFile(jar, []byte("garbage"), 0644))
	before := atomic.LoadInt64(&w.artifacts)

	_, err = i.Install(context.Background(), "1.12.2", dir)
	require.NoError(t, err)
	assert.Equal(t, before+1, atomic.LoadInt64(&w.artifacts))
	assert.True(t, utils.HasFileWithChecksum(jar, utils.BytesSHA1([]byte("guava jar"))))
}

func TestInstallUnknownVersion(t *testing.T) {
	w := newWorld(t)
	_, err := w.installer(t).Install(context.Background(), "1.12", t.TempDir())
	var notFound *shared.VersionNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Contains(t, notFound.Suggestions, "1.12.2")
}

func TestInstallInheritedProfile(t *testing.T) {
	w := newWorld(t)
	dir := t.TempDir()

	profile := `{"id":"fabric-1.12.2","inheritsFrom":"1.12.2","mainClass":"net.fabricmc.loader.launch.knot.KnotClient","libraries":[]}`
	require.NoError(t, catalog.SaveMetadata(dir, "fabric-1.12.2", []byte(profile)))

	_, err := w.installer(t).Install(context.Background(), "fabric-1.12.2", dir)
	require.NoError(t, err)

	g := folder.New(dir)
	assert.FileExists(t, g.ClientJar("fabric-1.12.2"))
	assert.FileExists(t, g.MetadataFile("1.12.2"))
}

func TestImportProfile(t *testing.T) {
	w := newWorld(t)
	dir := t.TempDir()

	// loader libraries only declare a maven coordinate and repository
	loader := []byte("fabric loader jar")
	w.add("/maven/net/fabricmc/fabric-loader/0.15.0/fabric-loader-0.15.0.jar", loader)

	profile := fmt.Sprintf(`{"id":"fabric-loader-0.15.0-1.12.2","inheritsFrom":"1.12.2","type":"release",
		"mainClass":"net.fabricmc.loader.impl.launch.knot.KnotClient",
		"libraries":[{"name":"net.fabricmc:fabric-loader:0.15.0","url":"%s/maven/"}]}`, w.srv.URL)
	source := filepath.Join(t.TempDir(), "fabric.json")
	require.NoError(t, os.WriteFile(source, []byte(profile), 0644))

	i := w.installer(t)
	id, err := i.ImportProfile(context.Background(), source, dir)
	require.NoError(t, err)
	assert.Equal(t, "fabric-loader-0.15.0-1.12.2", id)

	_, err = i.Install(context.Background(), id, dir)
	require.NoError(t, err)

	g := folder.New(dir)
	require.NoError(t, g.Validate(id))
	assert.True(t, utils.HasFileWithChecksum(
		filepath.Join(g.LibrariesDir(), "net/fabricmc/fabric-loader/0.15.0/fabric-loader-0.15.0.jar"),
		utils.BytesSHA1(loader),
	))

	merged, err := catalog.LoadResolvedMetadata(dir, id)
	require.NoError(t, err)
	assert.Equal(t, "net.fabricmc.loader.impl.launch.knot.KnotClient", merged.MainClass)
	assert.Equal(t, "net.fabricmc:fabric-loader:0.15.0", merged.Libraries[0].Name)
}

func TestImportProfileRejectsStandaloneDocument(t *testing.T) {
	w := newWorld(t)
	source := filepath.Join(t.TempDir(), "vanilla.json")
	require.NoError(t, os.WriteFile(source, []byte(`{"id":"1.12.2","libraries":[]}`), 0644))

	_, err := w.installer(t).ImportProfile(context.Background(), source, t.TempDir())
	assert.ErrorContains(t, err, "does not inherit")
}

func TestSourceURL(t *testing.T) {
	url, err := SourceURL("https://meta.fabricmc.net/v2/versions/loader/1.20.4/0.15.0/profile/json")
	require.NoError(t, err)
	assert.Equal(t, "https://meta.fabricmc.net/v2/versions/loader/1.20.4/0.15.0/profile/json", url)

	url, err = SourceURL("profile.json")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(url, "file:///"))
	assert.True(t, strings.HasSuffix(url, "/profile.json"))

	url, err = SourceURL(filepath.Join("my profiles#1", "100%.json"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(url, "/my%20profiles%231/100%25.json"), url)
}

func TestImportProfileFromEscapedPath(t *testing.T) {
	w := newWorld(t)
	dir := filepath.Join(t.TempDir(), "my profiles#1")
	require.NoError(t, os.MkdirAll(dir, 0755))
	source := filepath.Join(dir, "fabric 100%.json")
	require.NoError(t, os.WriteFile(source, []byte(`{"id":"fabric-1.12.2","inheritsFrom":"1.12.2","libraries":[]}`), 0644))

	id, err := w.installer(t).ImportProfile(context.Background(), source, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, "fabric-1.12.2", id)
}
