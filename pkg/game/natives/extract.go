package natives

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Extract unpacks every entry of jar not matching an exclude prefix into destDir.
// Existing files are overwritten.
func Extract(jar, destDir string, exclude []string) error {
	zipReader, err := zip.OpenReader(jar)
	if err != nil {
		return fmt.Errorf("failed to open native archive %s: %w", jar, err)
	}
	defer zipReader.Close()

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}
	root, err := filepath.Abs(destDir)
	if err != nil {
		return err
	}

	for _, file := range zipReader.File {
		if excluded(file.Name, exclude) {
			continue
		}

		destPath := filepath.Join(root, filepath.FromSlash(file.Name))
		if destPath != root && !strings.HasPrefix(destPath, root+string(os.PathSeparator)) {
			return fmt.Errorf("illegal path in native archive %s: %s", jar, file.Name)
		}

		if file.FileInfo().IsDir() {
			if err := os.MkdirAll(destPath, 0755); err != nil {
				return fmt.Errorf("failed to create directory %s: %w", destPath, err)
			}
			continue
		}
		if err := extractFile(file, destPath); err != nil {
			return err
		}
	}
	return nil
}

func excluded(name string, exclude []string) bool {
	for _, prefix := range exclude {
		if strings.HasPrefix(name, prefix) {
			return true
		}
	}
	return false
}

func extractFile(file *zip.File, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	sourceFile, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open file in zip: %w", err)
	}
	defer sourceFile.Close()

	destFile, err := os.OpenFile(destPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0755)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	if _, err := io.Copy(destFile, sourceFile); err != nil {
		destFile.Close()
		return fmt.Errorf("failed to extract %s: %w", file.Name, err)
	}
	return destFile.Close()
}
