package connectors

import (
	"context"
	"io"
	"net/http"
	"strings"

	"limeal.fr/mcengine/pkg/game/shared"
)

const HTTP_SCHEME = "http"
const HTTPS_SCHEME = "https"

type HttpConnector struct {
	URL string

	Secured bool // https or http

	client    *http.Client
	userAgent string
}

func NewHttpConnector(uri string, opts Options) (Connector, error) {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	return &HttpConnector{
		URL:       strings.TrimSuffix(uri, "/"),
		Secured:   strings.HasPrefix(uri, HTTPS_SCHEME+"://"),
		client:    client,
		userAgent: opts.UserAgent,
	}, nil
}

func (c *HttpConnector) getURL(remotePath string) string {
	if strings.HasPrefix(remotePath, "/") {
		return c.URL + remotePath
	}
	return c.URL + "/" + remotePath
}

func (c *HttpConnector) GetURI() string {
	return c.URL
}

func (c *HttpConnector) GetScheme() string {
	if c.Secured {
		return HTTPS_SCHEME
	}
	return HTTP_SCHEME
}

func (c *HttpConnector) Connect(ctx context.Context) error {
	return nil
}

func (c *HttpConnector) IsConnected() bool {
	return true
}

func (c *HttpConnector) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HttpConnector) do(ctx context.Context, method, remotePath string) (*http.Response, error) {
	url := c.getURL(remotePath)
	req, err := http.NewRequestWithContext(ctx, method, url, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, shared.NewTransferError(url, err)
	}
	if !(resp.StatusCode >= 200 && resp.StatusCode < 300) {
		resp.Body.Close()
		return nil, &shared.TransferError{URL: url, StatusCode: resp.StatusCode}
	}
	return resp, nil
}

func (c *HttpConnector) Open(ctx context.Context, remotePath string) (io.ReadCloser, int64, error) {
	resp, err := c.do(ctx, http.MethodGet, remotePath)
	if err != nil {
		return nil, 0, err
	}
	return resp.Body, resp.ContentLength, nil
}

func (c *HttpConnector) HasFile(ctx context.Context, remotePath string) bool {
	resp, err := c.do(ctx, http.MethodHead, remotePath)
	if err != nil {
		return false
	}
	resp.Body.Close()
	return true
}
