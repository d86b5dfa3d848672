package fetcher

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"limeal.fr/mcengine/pkg/connectors"
	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

// Fetcher downloads artifacts to disk and verifies their sha1.
// Fetches to distinct destinations may run concurrently.
type Fetcher struct {
	registry *connectors.Registry
	workers  int
	logger   *slog.Logger
}

type Option func(*Fetcher)

func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) { f.logger = logger }
}

// WithWorkers bounds the number of concurrent transfers in FetchAll.
func WithWorkers(n int) Option {
	return func(f *Fetcher) {
		if n > 0 {
			f.workers = n
		}
	}
}

func New(registry *connectors.Registry, opts ...Option) *Fetcher {
	f := &Fetcher{
		registry: registry,
		workers:  runtime.NumCPU(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Close releases pooled connections.
func (f *Fetcher) Close() error {
	return f.registry.Close()
}

// Open streams a remote resource without writing it to disk.
func (f *Fetcher) Open(ctx context.Context, url string) (io.ReadCloser, int64, error) {
	c, remotePath, err := f.registry.Resolve(url)
	if err != nil {
		return nil, 0, err
	}
	return c.Open(ctx, remotePath)
}

// Fetch downloads url to dest. When expectedSHA1 is set and dest already holds
// those bytes nothing is transferred. A download whose digest differs is deleted
// and reported as *shared.HashMismatchError.
func (f *Fetcher) Fetch(ctx context.Context, url, dest, expectedSHA1 string, onProgress func(done, total int64)) error {
	if expectedSHA1 != "" && utils.HasFileWithChecksum(dest, expectedSHA1) {
		f.logger.Debug("already up to date", "path", dest)
		return nil
	}

	rc, size, err := f.Open(ctx, url)
	if err != nil {
		return err
	}
	defer rc.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", dest, err)
	}
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dest, err)
	}

	h := sha1.New()
	pw := &progressWriter{total: size, onProgress: onProgress}
	_, copyErr := io.Copy(io.MultiWriter(out, h, pw), rc)
	closeErr := out.Close()
	if copyErr != nil {
		os.Remove(dest)
		return shared.NewTransferError(url, copyErr)
	}
	if closeErr != nil {
		os.Remove(dest)
		return fmt.Errorf("failed to write %s: %w", dest, closeErr)
	}

	actual := hex.EncodeToString(h.Sum(nil))
	if expectedSHA1 != "" && !strings.EqualFold(actual, expectedSHA1) {
		os.Remove(dest)
		return &shared.HashMismatchError{Path: dest, Expected: expectedSHA1, Actual: actual}
	}
	return nil
}

type progressWriter struct {
	done       int64
	total      int64
	onProgress func(done, total int64)
}

func (p *progressWriter) Write(b []byte) (int, error) {
	p.done += int64(len(b))
	if p.onProgress != nil {
		p.onProgress(p.done, p.total)
	}
	return len(b), nil
}

/////////////////////////////////////////////////////////////////////
// Batch
/////////////////////////////////////////////////////////////////////

type Job struct {
	Name       string // shown in progress events
	URL        string
	Dest       string
	Sha1       string
	Size       int64
	Executable bool
}

func (j Job) label() string {
	if j.Name != "" {
		return j.Name
	}
	return j.Dest
}

func (f *Fetcher) fetchJob(ctx context.Context, job Job) error {
	// Without a hash, presence is the only validity check we have.
	if job.Sha1 == "" && utils.FileExists(job.Dest) {
		return nil
	}
	if err := f.Fetch(ctx, job.URL, job.Dest, job.Sha1, nil); err != nil {
		return err
	}
	if job.Executable {
		return os.Chmod(job.Dest, 0755)
	}
	return nil
}

// FetchAll runs jobs on a bounded worker pool. The first failure cancels the
// batch: no new job is started and that error is returned.
func (f *Fetcher) FetchAll(ctx context.Context, jobs []Job, onDone func(done, total int, job Job)) error {
	total := len(jobs)
	if total == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	numWorkers := f.workers
	if numWorkers > total {
		numWorkers = total
	}

	jobChan := make(chan Job)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var firstError error
	var done int64

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobChan {
				if err := f.fetchJob(ctx, job); err != nil {
					mu.Lock()
					if firstError == nil {
						firstError = fmt.Errorf("failed to fetch %s: %w", job.label(), err)
						cancel()
					}
					mu.Unlock()
					continue
				}
				n := atomic.AddInt64(&done, 1)
				if onDone != nil {
					onDone(int(n), total, job)
				}
			}
		}()
	}

dispatch:
	for _, job := range jobs {
		select {
		case jobChan <- job:
		case <-ctx.Done():
			break dispatch
		}
	}
	close(jobChan)
	wg.Wait()

	if firstError != nil {
		return firstError
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	f.logger.Debug("batch complete", "files", total)
	return nil
}
