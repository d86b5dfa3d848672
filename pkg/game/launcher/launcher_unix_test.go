//go:build unix

package launcher

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecSpawnerOutputFile(t *testing.T) {
	dir := t.TempDir()
	exited := make(chan error, 1)
	s := &ExecSpawner{
		OutputFile: DetachedOutputFile(dir),
		OnExit:     func(err error) { exited <- err },
	}

	pid, err := s.Spawn(context.Background(), Command{
		Path: "/bin/sh",
		Args: []string{"-c", "echo out; echo err >&2"},
		Dir:  dir,
	})
	require.NoError(t, err)
	assert.Greater(t, pid, 0)

	select {
	case err := <-exited:
		require.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("process did not exit")
	}

	data, err := os.ReadFile(filepath.Join(dir, "logs", "launcher-output.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "out\n")
	assert.Contains(t, string(data), "err\n")
}

func TestExecSpawnerOutputFileAppends(t *testing.T) {
	dir := t.TempDir()
	out := DetachedOutputFile(dir)
	require.NoError(t, os.MkdirAll(filepath.Dir(out), 0755))
	require.NoError(t, os.WriteFile(out, []byte("previous run\n"), 0644))

	exited := make(chan error, 1)
	s := &ExecSpawner{OutputFile: out, OnExit: func(err error) { exited <- err }}
	_, err := s.Spawn(context.Background(), Command{Path: "/bin/sh", Args: []string{"-c", "echo next"}, Dir: dir})
	require.NoError(t, err)
	require.NoError(t, <-exited)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "previous run\nnext\n", string(data))
}
