package utils

import (
	"crypto/sha1"
	"encoding/hex"
	"io"
	"os"
	"strings"
)

func BytesSHA1(data []byte) string {
	h := sha1.New()
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// FileSHA1 hashes a file without loading it in memory.
func FileSHA1(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ReaderSHA1(f)
}

func ReaderSHA1(r io.Reader) (string, error) {
	h := sha1.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// HasFileWithChecksum reports whether path exists with the given sha1.
func HasFileWithChecksum(path, checksum string) bool {
	sum, err := FileSHA1(path)
	if err != nil {
		return false
	}
	return strings.EqualFold(sum, checksum)
}

func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
