package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sync"
)

// Connector is a read-only artifact source reachable through one URL scheme.
type Connector interface {
	GetURI() string
	GetScheme() string

	Connect(ctx context.Context) error
	IsConnected() bool
	Close() error

	// Open streams remotePath. size is -1 when unknown.
	Open(ctx context.Context, remotePath string) (rc io.ReadCloser, size int64, err error)
	HasFile(ctx context.Context, remotePath string) bool
}

type Options struct {
	HTTPClient *http.Client
	UserAgent  string
	KnownHosts string // known_hosts file for sftp, defaults to ~/.ssh/known_hosts
	PoolSize   int    // sftp connections per host

	// InsecureIgnoreHostKey disables sftp host key checking.
	InsecureIgnoreHostKey bool
}

type Factory func(uri string, opts Options) (Connector, error)

var CONNECTORS = map[string]Factory{
	SFTP_SCHEME:  NewSFTPConnector,
	FILE_SCHEME:  NewFileConnector,
	HTTP_SCHEME:  NewHttpConnector,
	HTTPS_SCHEME: NewHttpConnector,
}

func FindConnectorFromURI(uri string, opts Options) (Connector, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return nil, fmt.Errorf("invalid uri %s: %w", uri, err)
	}
	factory, ok := CONNECTORS[parsed.Scheme]
	if !ok {
		return nil, fmt.Errorf("unsupported scheme %q", parsed.Scheme)
	}
	return factory(uri, opts)
}

// ReadFile reads a whole remote file.
func ReadFile(ctx context.Context, c Connector, remotePath string) ([]byte, error) {
	rc, _, err := c.Open(ctx, remotePath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// ReadJSON reads a remote file and unmarshals it into dest.
func ReadJSON(ctx context.Context, c Connector, remotePath string, dest any) error {
	data, err := ReadFile(ctx, c, remotePath)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to decode %s: %w", remotePath, err)
	}
	return nil
}

/////////////////////////////////////////////////////////////////////
// Registry
/////////////////////////////////////////////////////////////////////

// Registry keeps one connector per scheme and host so connections are reused
// across downloads.
type Registry struct {
	opts Options

	mu         sync.Mutex
	connectors map[string]Connector
}

func NewRegistry(opts Options) *Registry {
	return &Registry{opts: opts, connectors: make(map[string]Connector)}
}

// Resolve returns the connector serving rawURL and the path to open on it.
func (r *Registry) Resolve(rawURL string) (Connector, string, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, "", fmt.Errorf("invalid url %s: %w", rawURL, err)
	}

	base := parsed.Scheme + "://"
	remotePath := parsed.Path
	switch parsed.Scheme {
	case FILE_SCHEME:
		remotePath = parsed.Host + parsed.Path
	case SFTP_SCHEME:
		if parsed.User != nil {
			base += parsed.User.String() + "@"
		}
		base += parsed.Host
	default:
		// http paths are re-joined into a URL, keep them escaped.
		remotePath = parsed.EscapedPath()
		if parsed.User != nil {
			base += parsed.User.String() + "@"
		}
		base += parsed.Host
		if parsed.RawQuery != "" {
			remotePath += "?" + parsed.RawQuery
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.connectors[base]; ok {
		return c, remotePath, nil
	}
	c, err := FindConnectorFromURI(base, r.opts)
	if err != nil {
		return nil, "", err
	}
	r.connectors[base] = c
	return c, remotePath, nil
}

func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	var firstErr error
	for key, c := range r.connectors {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.connectors, key)
	}
	return firstErr
}
