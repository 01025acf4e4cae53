package config

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/fluxionai/fluxion-oss/pkg/domain"
)

// FileProvider serves the Program decoded from a local document file and
// hot-reloads it when the file changes.
type FileProvider struct {
	path        string
	mu          sync.RWMutex
	program     *domain.Program
	subscribers []chan *domain.Program
	watcher     *fsnotify.Watcher
	cancel      context.CancelFunc
}

// NewFileProvider creates a provider watching the specified document file.
func NewFileProvider(path string) (*FileProvider, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())

	p := &FileProvider{
		path:    absPath,
		program: &domain.Program{},
		watcher: watcher,
		cancel:  cancel,
	}

	// Initial load
	if err := p.load(); err != nil {
		// If file doesn't exist yet, we start with an empty program but still watch
		log.Printf("Warning: initial document load failed: %v", err)
	}

	// Start watching
	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to watch directory: %w", err)
	}

	go p.watchLoop(ctx)

	return p, nil
}

// CurrentProgram returns the most recently decoded program.
func (p *FileProvider) CurrentProgram() *domain.Program {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.program
}

// Subscribe returns a channel that receives the program on every reload.
// The current program is delivered immediately.
func (p *FileProvider) Subscribe() <-chan *domain.Program {
	p.mu.Lock()
	defer p.mu.Unlock()
	ch := make(chan *domain.Program, 1)
	p.subscribers = append(p.subscribers, ch)
	ch <- p.program
	return ch
}

// Close stops the watcher and cleans up resources.
func (p *FileProvider) Close() error {
	p.cancel()
	return p.watcher.Close()
}

func (p *FileProvider) watchLoop(ctx context.Context) {
	var debounceTimer *time.Timer
	debounceDuration := 100 * time.Millisecond

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}

			// We only care about our specific file
			// Note: fsnotify events might use different path separators or relative paths
			cleanEventName := filepath.Clean(event.Name)
			if cleanEventName != p.path {
				continue
			}

			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Chmod) {
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(debounceDuration, func() {
					if err := p.load(); err != nil {
						log.Printf("Error reloading pipeline document: %v", err)
					} else {
						log.Printf("Pipeline document reloaded from %s", p.path)
					}
				})
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("Watcher error: %v", err)
		}
	}
}

func (p *FileProvider) load() error {
	doc, err := LoadFile(p.path)
	if err != nil {
		return err
	}

	program := doc.ToDomain()

	p.mu.Lock()
	p.program = program
	subscribers := make([]chan *domain.Program, len(p.subscribers))
	copy(subscribers, p.subscribers)
	p.mu.Unlock()

	// Notify subscribers
	for _, ch := range subscribers {
		select {
		case ch <- program:
		default:
			// Skip if channel is full (slow consumer)
		}
	}

	return nil
}
