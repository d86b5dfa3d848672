package connectors

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"limeal.fr/mcengine/pkg/game/shared"
)

const FILE_SCHEME = "file"

var driveLetter = regexp.MustCompile(`^/[A-Za-z]:`)

// FileConnector serves file:// URLs. Paths are absolute, or relative to the
// working directory when they start with ./
type FileConnector struct {
	Path string
}

func NewFileConnector(uri string, opts Options) (Connector, error) {
	return &FileConnector{Path: strings.TrimPrefix(uri, FILE_SCHEME+"://")}, nil
}

func (c *FileConnector) localPath(remotePath string) string {
	p := remotePath
	if c.Path != "" {
		p = filepath.Join(c.Path, remotePath)
	}
	// file:///C:/x
	if driveLetter.MatchString(p) {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

func (c *FileConnector) GetURI() string {
	return FILE_SCHEME + "://" + c.Path
}

func (c *FileConnector) GetScheme() string {
	return FILE_SCHEME
}

func (c *FileConnector) Connect(ctx context.Context) error {
	return nil
}

func (c *FileConnector) IsConnected() bool {
	return true
}

func (c *FileConnector) Close() error {
	return nil
}

func (c *FileConnector) Open(ctx context.Context, remotePath string) (io.ReadCloser, int64, error) {
	path := c.localPath(remotePath)
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, &shared.TransferError{URL: FILE_SCHEME + "://" + path, Err: err}
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, 0, &shared.TransferError{URL: FILE_SCHEME + "://" + path, Err: err}
	}
	return f, st.Size(), nil
}

func (c *FileConnector) HasFile(ctx context.Context, remotePath string) bool {
	_, err := os.Stat(c.localPath(remotePath))
	return err == nil
}
