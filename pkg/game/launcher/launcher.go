package launcher

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"limeal.fr/mcengine/pkg/game/shared"
)

// Command is a fully built game command line.
type Command struct {
	Path string
	Args []string
	Dir  string
	Env  []string
}

// Spawner starts the game process and returns its pid without waiting for it.
type Spawner interface {
	Spawn(ctx context.Context, cmd Command) (int, error)
}

// ExecSpawner starts a detached child process. Its output is forwarded to
// the logger, or appended to OutputFile when set, and OnExit runs once the
// game exits.
type ExecSpawner struct {
	Logger *slog.Logger
	OnExit func(err error)

	// OutputFile, when set, receives the game's stdout and stderr directly.
	OutputFile string
}

// DetachedOutputFile is where a detached game of gameDir writes its output.
func DetachedOutputFile(gameDir string) string {
	return filepath.Join(gameDir, "logs", "launcher-output.log")
}

func (s *ExecSpawner) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

func (s *ExecSpawner) Spawn(ctx context.Context, c Command) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	// not bound to ctx: the game outlives the launch call
	cmd := exec.Command(c.Path, c.Args...)
	cmd.Dir = c.Dir
	cmd.Env = append(os.Environ(), c.Env...)
	setupProcessAttributes(cmd)

	log := s.logger()
	stdout := &logWriter{logger: log, level: slog.LevelInfo, stream: "stdout"}
	stderr := &logWriter{logger: log, level: slog.LevelWarn, stream: "stderr"}
	var output *os.File
	if s.OutputFile != "" {
		if err := os.MkdirAll(filepath.Dir(s.OutputFile), 0755); err != nil {
			return 0, &shared.ProcessSpawnError{Err: err}
		}
		f, err := os.OpenFile(s.OutputFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return 0, &shared.ProcessSpawnError{Err: err}
		}
		output = f
		cmd.Stdout = f
		cmd.Stderr = f
	} else {
		cmd.Stdout = stdout
		cmd.Stderr = stderr
	}

	err := cmd.Start()
	if output != nil {
		// the child holds its own descriptor
		output.Close()
	}
	if err != nil {
		return 0, &shared.ProcessSpawnError{Err: err}
	}
	pid := cmd.Process.Pid
	log.Info("game process started", "pid", pid, "output", s.OutputFile)

	go func() {
		err := cmd.Wait()
		stdout.Flush()
		stderr.Flush()

		var exitErr *exec.ExitError
		switch {
		case err == nil:
			log.Info("game process exited", "pid", pid, "code", 0)
		case errors.As(err, &exitErr):
			log.Warn("game process exited", "pid", pid, "code", exitErr.ExitCode())
		default:
			log.Error("game process failed", "pid", pid, "error", err)
		}
		if s.OnExit != nil {
			s.OnExit(err)
		}
	}()
	return pid, nil
}

// logWriter forwards complete lines of process output to a logger.
type logWriter struct {
	logger *slog.Logger
	level  slog.Level
	stream string

	mu  sync.Mutex
	buf bytes.Buffer
}

func (lw *logWriter) Write(p []byte) (int, error) {
	lw.mu.Lock()
	defer lw.mu.Unlock()

	lw.buf.Write(p)
	for {
		line, err := lw.buf.ReadString('\n')
		if err != nil {
			// keep the partial line for the next write
			lw.buf.Reset()
			lw.buf.WriteString(line)
			break
		}
		lw.emit(line)
	}
	return len(p), nil
}

// Flush logs whatever is left after the process exits.
func (lw *logWriter) Flush() {
	lw.mu.Lock()
	defer lw.mu.Unlock()
	if lw.buf.Len() > 0 {
		lw.emit(lw.buf.String())
		lw.buf.Reset()
	}
}

func (lw *logWriter) emit(line string) {
	line = strings.TrimRight(line, "\r\n")
	if strings.TrimSpace(line) == "" {
		return
	}
	lw.logger.Log(context.Background(), lw.level, line, "stream", lw.stream)
}
