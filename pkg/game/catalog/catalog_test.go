package catalog

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"limeal.fr/mcengine/pkg/connectors"
	"limeal.fr/mcengine/pkg/game/fetcher"
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

const metadataDoc = `{"id":"1.12.2","type":"release","mainClass":"net.minecraft.client.main.Main","minecraftArguments":"--username ${auth_player_name}","libraries":[]}`

func newServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	var srv *httptest.Server
	mux.HandleFunc("/manifest.json", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"latest":{"release":"1.20.4","snapshot":"24w14a"},"versions":[
			{"id":"24w14a","type":"snapshot","url":"%[1]s/v/24w14a.json"},
			{"id":"1.20.4","type":"release","url":"%[1]s/v/1.20.4.json"},
			{"id":"1.12.2","type":"release","url":"%[1]s/v/1.12.2.json","sha1":"%[2]s"},
			{"id":"1.9","type":"release","url":"%[1]s/v/1.9.json"}
		]}`, srv.URL, utils.BytesSHA1([]byte(metadataDoc)))
	})
	mux.HandleFunc("/v/1.12.2.json", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(metadataDoc))
	})
	mux.HandleFunc("/slow", func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	})
	srv = httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func newCatalog(t *testing.T, url string, opts ...Option) *Catalog {
	f := fetcher.New(connectors.NewRegistry(connectors.Options{}))
	t.Cleanup(func() { f.Close() })
	return New(f, url, opts...)
}

func TestFetchCatalogAndMetadata(t *testing.T) {
	srv := newServer(t)
	c := newCatalog(t, srv.URL+"/manifest.json")

	cat, err := c.FetchCatalog(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "1.20.4", cat.Latest.Release)
	require.Len(t, cat.Versions, 4)

	summary, err := Lookup(cat, "1.12.2")
	require.NoError(t, err)

	meta, raw, err := c.FetchVersionMetadata(context.Background(), summary)
	require.NoError(t, err)
	assert.Equal(t, "1.12.2", meta.ID)
	assert.True(t, meta.IsLegacyFormat())
	assert.Equal(t, metadataDoc, string(raw))
}

func TestFetchMetadataHashMismatch(t *testing.T) {
	srv := newServer(t)
	c := newCatalog(t, srv.URL+"/manifest.json")

	_, _, err := c.FetchVersionMetadata(context.Background(), manifests.VersionSummary{
		ID: "1.12.2", URL: srv.URL + "/v/1.12.2.json", SHA1: "deadbeef",
	})
	var mismatch *shared.HashMismatchError
	assert.True(t, errors.As(err, &mismatch))
}

func TestFetchCatalogTimeout(t *testing.T) {
	srv := newServer(t)
	c := newCatalog(t, srv.URL+"/slow", WithTimeout(50*time.Millisecond))

	_, err := c.FetchCatalog(context.Background())
	assert.ErrorIs(t, err, shared.ErrTimeout)
}

func TestLookupSuggestions(t *testing.T) {
	cat := &manifests.VersionCatalog{Versions: []manifests.VersionSummary{{ID: "1.12.2"}, {ID: "1.12.1"}, {ID: "1.20.4"}}}
	_, err := Lookup(cat, "1.12")
	var notFound *shared.VersionNotFoundError
	require.True(t, errors.As(err, &notFound))
	assert.Equal(t, "1.12", notFound.ID)
	assert.Contains(t, notFound.Suggestions, "1.12.2")
	assert.Contains(t, err.Error(), "did you mean")
}

func TestSortedIDs(t *testing.T) {
	cat := &manifests.VersionCatalog{Versions: []manifests.VersionSummary{
		{ID: "1.9", Type: "release"},
		{ID: "1.20.4", Type: "release"},
		{ID: "24w14a", Type: "snapshot"},
		{ID: "1.12.2", Type: "release"},
	}}
	assert.Equal(t, []string{"1.20.4", "1.12.2", "1.9"}, SortedIDs(cat, "release"))
	assert.Len(t, SortedIDs(cat), 4)
}

func TestMetadataCache(t *testing.T) {
	dir := t.TempDir()

	meta, err := LoadCachedMetadata(dir, "1.12.2")
	require.NoError(t, err)
	assert.Nil(t, meta)

	require.NoError(t, SaveMetadata(dir, "1.12.2", []byte(metadataDoc)))
	meta, err = LoadCachedMetadata(dir, "1.12.2")
	require.NoError(t, err)
	require.NotNil(t, meta)
	assert.Equal(t, "net.minecraft.client.main.Main", meta.MainClass)
}

func TestLoadResolvedMetadataInherits(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, SaveMetadata(dir, "1.12.2", []byte(metadataDoc)))
	require.NoError(t, SaveMetadata(dir, "forge-1.12.2", []byte(`{
		"id":"forge-1.12.2","inheritsFrom":"1.12.2",
		"mainClass":"net.minecraft.launchwrapper.Launch",
		"libraries":[{"name":"net.minecraftforge:forge:14.23.5"}]}`)))

	meta, err := LoadResolvedMetadata(dir, "forge-1.12.2")
	require.NoError(t, err)
	assert.Equal(t, "forge-1.12.2", meta.ID)
	assert.Equal(t, "net.minecraft.launchwrapper.Launch", meta.MainClass)
	assert.Equal(t, "--username ${auth_player_name}", meta.MinecraftArguments)
	require.Len(t, meta.Libraries, 1)

	_, err = LoadResolvedMetadata(dir, "missing")
	var missing *shared.MissingArtifactError
	assert.True(t, errors.As(err, &missing))
}
