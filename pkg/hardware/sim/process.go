package sim

import (
	"context"
	"sync"
)

// KilledExitCode is the exit code reported by a killed Process.
const KilledExitCode = -9

// Process is a simulated subprocess that runs until told to exit.
type Process struct {
	done chan struct{}

	mu     sync.Mutex
	code   int
	exited bool
	killed bool
}

// NewProcess creates a running process.
func NewProcess() *Process {
	return &Process{done: make(chan struct{})}
}

// Exit ends the process with code. Later calls are ignored.
func (p *Process) Exit(code int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return
	}
	p.code = code
	p.exited = true
	close(p.done)
}

func (p *Process) Poll() (int, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.code, p.exited
}

func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited {
		return nil
	}
	p.killed = true
	p.code = KilledExitCode
	p.exited = true
	close(p.done)
	return nil
}

// Killed reports whether Kill ended the process.
func (p *Process) Killed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.killed
}

func (p *Process) Wait(ctx context.Context) (int, error) {
	select {
	case <-p.done:
		code, _ := p.Poll()
		return code, nil
	case <-ctx.Done():
		return -1, ctx.Err()
	}
}
