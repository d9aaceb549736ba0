package output

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

type ProgressOptions struct {
	Interactive bool
}

// ProgressEmitter renders an in-place "[n/total] file" status line on
// terminals while the probe stage runs, and clears it before any persistent
// transcript line is written by the wrapped emitter.
type ProgressEmitter struct {
	dst  io.Writer
	next EventEmitter

	mu          sync.Mutex
	interactive bool
	activeLine  string
	index       int
	total       int
}

func NewProgressEmitter(dst io.Writer, next EventEmitter) *ProgressEmitter {
	return NewProgressEmitterWithOptions(dst, next, ProgressOptions{
		Interactive: SupportsInPlaceUpdates(dst),
	})
}

func NewProgressEmitterWithOptions(dst io.Writer, next EventEmitter, opts ProgressOptions) *ProgressEmitter {
	return &ProgressEmitter{dst: dst, next: next, interactive: opts.Interactive}
}

func SupportsInPlaceUpdates(dst io.Writer) bool {
	file, ok := dst.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return (info.Mode() & os.ModeCharDevice) != 0
}

func (p *ProgressEmitter) Emit(event Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event.Event {
	case EventRunStarted:
		p.index = 0
		if total, ok := event.Details["total"].(int); ok {
			p.total = total
		}
	case EventFileProbed:
		p.index++
		if event.Level == LevelInfo {
			if err := p.renderStatusLocked(event.Path); err != nil {
				return err
			}
		}
	}

	if event.Event == EventFileProbed && event.Level == LevelInfo {
		return p.next.Emit(event)
	}

	if err := p.clearStatusLocked(); err != nil {
		return err
	}
	return p.next.Emit(event)
}

func (p *ProgressEmitter) Flush() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.clearStatusLocked()
}

func (p *ProgressEmitter) renderStatusLocked(path string) error {
	if !p.interactive {
		return nil
	}
	status := fmt.Sprintf("[%d/%d] %s", p.index, p.total, filepath.Base(path))
	if status == p.activeLine {
		return nil
	}
	p.activeLine = status
	_, err := fmt.Fprintf(p.dst, "\r\033[2K%s", status)
	return err
}

func (p *ProgressEmitter) clearStatusLocked() error {
	if !p.interactive || p.activeLine == "" {
		return nil
	}
	p.activeLine = ""
	_, err := fmt.Fprint(p.dst, "\r\033[2K")
	return err
}
