package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/conduit-lang/xgen/internal/builderrors"
)

// RequestEnv is the environment variable holding the request file path
const RequestEnv = "XGEN_REQUEST"

// DefaultValidationExitCode is the exit code signalling validation errors
const DefaultValidationExitCode = 1

// Exec runs the engine as an external process. The request is written to
// the temp directory and its path passed in XGEN_REQUEST. Exit code 0 is a
// clean run, the validation exit code reports validation errors, anything
// else is an engine failure.
type Exec struct {
	command            []string
	validationExitCode int
	logger             *zap.Logger
}

// NewExec creates a process-backed engine running command
func NewExec(command []string, validationExitCode int, logger *zap.Logger) (*Exec, error) {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return nil, builderrors.Configurationf("configure engine", "engine.command must not be empty")
	}
	if validationExitCode == 0 {
		validationExitCode = DefaultValidationExitCode
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Exec{
		command:            append([]string(nil), command...),
		validationExitCode: validationExitCode,
		logger:             logger,
	}, nil
}

// Launch implements Engine
func (e *Exec) Launch(ctx context.Context, req *Request) (bool, error) {
	path, err := WriteRequest(req)
	if err != nil {
		return false, err
	}

	log := e.logger.With(zap.String("engine", e.command[0]))
	stdout := &lineWriter{emit: func(line string) { log.Info(line) }}
	stderr := &lineWriter{emit: func(line string) { log.Warn(line) }}

	cmd := exec.CommandContext(ctx, e.command[0], e.command[1:]...)
	cmd.Dir = req.BaseDir
	cmd.Env = append(os.Environ(), RequestEnv+"="+path)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	log.Debug("starting engine", zap.Strings("args", e.command[1:]), zap.String("request", path))
	err = cmd.Run()
	stdout.Flush()
	stderr.Flush()

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return false, nil
	case errors.As(err, &exitErr) && exitErr.ExitCode() == e.validationExitCode:
		return true, nil
	case errors.As(err, &exitErr):
		return false, fmt.Errorf("engine exited with code %d", exitErr.ExitCode())
	default:
		return false, fmt.Errorf("failed to run engine: %w", err)
	}
}

// lineWriter forwards complete lines to emit
type lineWriter struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	emit func(string)
}

func (w *lineWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.buf.Write(p)
	for {
		line, err := w.buf.ReadString('\n')
		if err != nil {
			// incomplete line, keep it for the next write
			w.buf.Reset()
			w.buf.WriteString(line)
			return len(p), nil
		}
		w.emitLine(line)
	}
}

// Flush emits any buffered partial line
func (w *lineWriter) Flush() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.buf.Len() > 0 {
		w.emitLine(w.buf.String())
		w.buf.Reset()
	}
}

func (w *lineWriter) emitLine(line string) {
	line = strings.TrimRight(line, "\r\n")
	if line != "" {
		w.emit(line)
	}
}
