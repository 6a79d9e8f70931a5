package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

const (
	stderrTailSize = 8 * 1024
	waitDelay      = 2 * time.Second
)

// Options configures a child process.
type Options struct {
	// Stdout receives the process stdout. Nil discards it.
	Stdout *os.File

	// ExtraFiles are inherited as fd 3, 4, ... and addressed as pipe:3, pipe:4.
	// Not supported on Windows.
	ExtraFiles []*os.File

	// QuitOnStdin makes Shutdown request exit by writing "q" to stdin.
	// Only meaningful when stdin is not the data input.
	QuitOnStdin bool
}

// Process is a running ffmpeg child process.
type Process struct {
	cmd         *exec.Cmd
	stdin       io.WriteCloser
	stderr      *tailBuffer
	quitOnStdin bool

	done    chan struct{}
	waitErr error

	stdinMu     sync.Mutex
	stdinClosed bool

	shutdownOnce sync.Once
	shutdownErr  error
}

// Start launches ffmpeg at path with args.
func Start(path string, args []string, opts Options) (*Process, error) {
	cmd := exec.Command(path, args...)

	stderr := newTailBuffer(stderrTailSize)
	cmd.Stderr = stderr
	if opts.Stdout != nil {
		cmd.Stdout = opts.Stdout
	}
	cmd.ExtraFiles = opts.ExtraFiles
	cmd.WaitDelay = waitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to get stdin pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	p := &Process{
		cmd:         cmd,
		stdin:       stdin,
		stderr:      stderr,
		quitOnStdin: opts.QuitOnStdin,
		done:        make(chan struct{}),
	}
	go func() {
		p.waitErr = cmd.Wait()
		close(p.done)
	}()

	return p, nil
}

// Write writes data to the process stdin.
func (p *Process) Write(data []byte) (int, error) {
	p.stdinMu.Lock()
	defer p.stdinMu.Unlock()

	if p.stdinClosed {
		return 0, ErrNotRunning
	}
	select {
	case <-p.done:
		return 0, ErrNotRunning
	default:
	}

	n, err := p.stdin.Write(data)
	if err != nil {
		return n, fmt.Errorf("write to ffmpeg: %w", err)
	}
	return n, nil
}

// Exited is closed once the process has exited.
func (p *Process) Exited() <-chan struct{} {
	return p.done
}

// Err returns the exit error after the process has exited, nil before.
func (p *Process) Err() error {
	select {
	case <-p.done:
		return p.exitError()
	default:
		return nil
	}
}

// Stderr returns the tail of the process stderr.
func (p *Process) Stderr() string {
	return p.stderr.String()
}

// Shutdown asks the process to finish and waits until it exits or ctx is done.
// Closing stdin (and writing "q" when QuitOnStdin is set) is the request;
// the process is killed if it has not exited when ctx expires.
// Shutdown is safe to call more than once and returns the first result.
func (p *Process) Shutdown(ctx context.Context) error {
	p.shutdownOnce.Do(func() {
		p.shutdownErr = p.shutdown(ctx)
	})
	return p.shutdownErr
}

func (p *Process) shutdown(ctx context.Context) error {
	p.stdinMu.Lock()
	if !p.stdinClosed {
		if p.quitOnStdin {
			// The process may already be gone; the wait below reports that.
			_, _ = p.stdin.Write([]byte("q\n"))
		}
		p.stdin.Close()
		p.stdinClosed = true
	}
	p.stdinMu.Unlock()

	select {
	case <-p.done:
		return p.exitError()
	case <-ctx.Done():
		if p.cmd.Process != nil {
			p.cmd.Process.Kill()
		}
		<-p.done
		return ErrKilled
	}
}

// Kill terminates the process immediately and waits for it.
func (p *Process) Kill() {
	select {
	case <-p.done:
		return
	default:
	}
	if p.cmd.Process != nil {
		p.cmd.Process.Kill()
	}
	<-p.done
}

func (p *Process) exitError() error {
	if p.waitErr == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(p.waitErr, &exitErr) && exitErr.ExitCode() == 255 {
		// ffmpeg exits with 255 when asked to quit interactively.
		return nil
	}
	return fmt.Errorf("ffmpeg exited: %w\nstderr: %s", p.waitErr, p.stderr.String())
}

// CombinedOutput runs ffmpeg to completion and returns stdout and stderr.
// A non-zero exit is not an error: informational invocations such as
// -list_devices always fail after printing what they were asked for.
func CombinedOutput(ctx context.Context, args ...string) ([]byte, error) {
	path, err := Find()
	if err != nil {
		return nil, err
	}

	out, err := exec.CommandContext(ctx, path, args...).CombinedOutput()
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return out, fmt.Errorf("run ffmpeg: %w", err)
		}
	}
	return out, nil
}

// tailBuffer keeps the last max bytes written to it.
type tailBuffer struct {
	mu  sync.Mutex
	buf []byte
	max int
}

func newTailBuffer(max int) *tailBuffer {
	return &tailBuffer{max: max}
}

func (b *tailBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.buf = append(b.buf, p...)
	if over := len(b.buf) - b.max; over > 0 {
		b.buf = append(b.buf[:0], b.buf[over:]...)
	}
	return len(p), nil
}

func (b *tailBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return string(b.buf)
}
