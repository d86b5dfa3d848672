package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"strings"

	"limeal.fr/mcengine/pkg/game/catalog"
	"limeal.fr/mcengine/pkg/game/manifests"
)

// SourceURL turns a local path into a file:// url. Urls are returned unchanged.
func SourceURL(source string) (string, error) {
	if strings.Contains(source, "://") {
		return source, nil
	}
	abs, err := filepath.Abs(source)
	if err != nil {
		return "", err
	}
	abs = filepath.ToSlash(abs)
	if !strings.HasPrefix(abs, "/") {
		abs = "/" + abs
	}
	return (&url.URL{Scheme: "file", Path: abs}).String(), nil
}

// ImportProfile stores a loader profile (a version document inheriting from
// a vanilla version, as published by fabric or quilt) into the instance so
// Install can resolve it. It returns the profile id.
func (i *Installer) ImportProfile(ctx context.Context, source, instanceDir string) (string, error) {
	sourceURL, err := SourceURL(source)
	if err != nil {
		return "", err
	}
	rc, _, err := i.fetcher.Open(ctx, sourceURL)
	if err != nil {
		return "", fmt.Errorf("failed to open profile %s: %w", source, err)
	}
	defer rc.Close()

	raw, err := io.ReadAll(rc)
	if err != nil {
		return "", fmt.Errorf("failed to read profile %s: %w", source, err)
	}

	var profile manifests.VersionMetadata
	if err := json.Unmarshal(raw, &profile); err != nil {
		return "", fmt.Errorf("failed to decode profile %s: %w", source, err)
	}
	if profile.ID == "" {
		return "", fmt.Errorf("profile %s has no id", source)
	}
	if profile.InheritsFrom == "" {
		return "", fmt.Errorf("profile %s does not inherit from a version", profile.ID)
	}

	gameDir, err := filepath.Abs(instanceDir)
	if err != nil {
		return "", err
	}
	if err := catalog.SaveMetadata(gameDir, profile.ID, raw); err != nil {
		return "", err
	}
	i.logger.Info("imported loader profile", "id", profile.ID, "inheritsFrom", profile.InheritsFrom)
	return profile.ID, nil
}
