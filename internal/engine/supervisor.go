package engine

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// stopGracePeriod bounds the wait for a voluntary exit after "quit".
const stopGracePeriod = 2 * time.Second

// Transport is the line pipe to a running engine process. Tests substitute
// a scripted implementation.
type Transport interface {
	SendLine(line string) error
	ReadLine() (string, error)
}

type procState int

const (
	procNotStarted procState = iota
	procRunning
	procStopped
)

// handle bundles one spawned engine process with its line-buffered pipes.
// The pipes are created with os.Pipe and owned here rather than through
// StdinPipe/StdoutPipe, so the Wait goroutine never closes the read end
// under ReadLine and a response written just before exit is still readable.
type handle struct {
	cmd     *exec.Cmd
	stdin   *bufio.Writer
	stdinC  io.Closer
	stdout  *bufio.Reader
	stdoutC io.Closer
	state   procState
	done    chan struct{} // closed once Wait returns
}

func (h *handle) SendLine(line string) error {
	if _, err := h.stdin.WriteString(line); err != nil {
		return err
	}
	return h.stdin.Flush()
}

func (h *handle) ReadLine() (string, error) {
	line, err := h.stdout.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (h *handle) exited() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

type Config struct {
	// BinaryPath is the engine executable.
	BinaryPath string
	// RuntimeLibDir, when it exists, is prepended to the child's dynamic
	// library search path so native engine dependencies resolve.
	RuntimeLibDir string
}

// Supervisor owns the search-engine subprocess: spawn, graceful or forced
// stop, crash detection and lazy restart. Recovery is on-demand only; there
// is no background monitor.
type Supervisor struct {
	cfg    Config
	logger *zap.Logger

	mu sync.Mutex
	h  *handle
}

func NewSupervisor(cfg Config, logger *zap.Logger) (*Supervisor, error) {
	if strings.TrimSpace(cfg.BinaryPath) == "" {
		return nil, fmt.Errorf("engine binary path required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Supervisor{cfg: cfg, logger: logger}, nil
}

// Start spawns a fresh engine process, stopping any existing one first.
// A restart also discards the engine's transposition table.
func (s *Supervisor) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

// Stop terminates the process: "quit" first, kill after the grace period.
// The handle is always left stopped.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

// EnsureRunning starts the engine if it was never started or has exited.
// This is the self-healing path invoked lazily before every request.
func (s *Supervisor) EnsureRunning() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.runningLocked() {
		return nil
	}
	return s.startLocked()
}

// BestMove writes one request line and blocks on a single response line.
// Pipe failures restart the process and report the error to the caller;
// the search itself is never retried here.
func (s *Supervisor) BestMove(req Request) (Response, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.runningLocked() {
		if err := s.startLocked(); err != nil {
			return Response{}, err
		}
	}

	line, err := roundTrip(s.h, req)
	if err != nil {
		s.logger.Warn("engine pipe failure, restarting",
			zap.Error(err),
			zap.String("binary", s.cfg.BinaryPath),
		)
		if startErr := s.startLocked(); startErr != nil {
			s.logger.Error("engine restart failed", zap.Error(startErr))
		}
		return Response{}, fmt.Errorf("engine round trip: %w", err)
	}
	return ParseResponse(line), nil
}

// roundTrip runs one request over any transport.
func roundTrip(t Transport, req Request) (string, error) {
	if err := t.SendLine(EncodeRequest(req)); err != nil {
		return "", err
	}
	return t.ReadLine()
}

func (s *Supervisor) runningLocked() bool {
	return s.h != nil && s.h.state == procRunning && !s.h.exited()
}

func (s *Supervisor) startLocked() error {
	s.stopLocked()

	cmd := exec.Command(s.cfg.BinaryPath)
	cmd.Env = augmentLibraryPath(os.Environ(), s.cfg.RuntimeLibDir)

	stdinR, stdinW, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("create stdin pipe: %w", err)
	}
	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		stdinR.Close()
		stdinW.Close()
		return fmt.Errorf("create stdout pipe: %w", err)
	}
	cmd.Stdin = stdinR
	cmd.Stdout = stdoutW
	cmd.Stderr = os.Stderr

	if err := cmd.Start(); err != nil {
		stdinR.Close()
		stdinW.Close()
		stdoutR.Close()
		stdoutW.Close()
		return fmt.Errorf("start engine: %w", err)
	}
	// The child holds its own copies; drop ours so EOF propagates.
	stdinR.Close()
	stdoutW.Close()

	h := &handle{
		cmd:     cmd,
		stdin:   bufio.NewWriter(stdinW),
		stdinC:  stdinW,
		stdout:  bufio.NewReader(stdoutR),
		stdoutC: stdoutR,
		state:   procRunning,
		done:    make(chan struct{}),
	}
	go func() {
		_ = cmd.Wait()
		close(h.done)
	}()
	s.h = h

	s.logger.Info("engine started",
		zap.Int("pid", cmd.Process.Pid),
		zap.String("binary", s.cfg.BinaryPath),
	)
	return nil
}

func (s *Supervisor) stopLocked() {
	h := s.h
	s.h = nil
	if h == nil || h.state != procRunning {
		return
	}
	defer func() {
		h.state = procStopped
		h.stdinC.Close()
		h.stdoutC.Close()
	}()

	if h.exited() {
		return
	}
	if err := h.SendLine("quit\n"); err == nil {
		select {
		case <-h.done:
			return
		case <-time.After(stopGracePeriod):
		}
	}
	s.logger.Warn("engine did not exit voluntarily, killing",
		zap.Int("pid", h.cmd.Process.Pid),
	)
	_ = h.cmd.Process.Kill()
	<-h.done
}

// augmentLibraryPath prepends dir to the environment's dynamic library
// search path when the directory exists. An empty dir falls back to the
// platform default runtime directory.
func augmentLibraryPath(env []string, dir string) []string {
	if strings.TrimSpace(dir) == "" {
		dir = defaultRuntimeLibDir()
	}
	if dir == "" {
		return env
	}
	if _, err := os.Stat(dir); err != nil {
		return env
	}

	key := "LD_LIBRARY_PATH"
	switch runtime.GOOS {
	case "windows":
		key = "PATH"
	case "darwin":
		key = "DYLD_LIBRARY_PATH"
	}

	out := make([]string, 0, len(env)+1)
	found := false
	for _, kv := range env {
		if eq := strings.IndexByte(kv, '='); eq > 0 && strings.EqualFold(kv[:eq], key) {
			kv = key + "=" + dir + string(os.PathListSeparator) + kv[eq+1:]
			found = true
		}
		out = append(out, kv)
	}
	if !found {
		out = append(out, key+"="+dir)
	}
	return out
}

func defaultRuntimeLibDir() string {
	if runtime.GOOS == "windows" {
		return `C:\msys64\ucrt64\bin`
	}
	return ""
}
