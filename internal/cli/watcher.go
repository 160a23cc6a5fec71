package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/jwtly10/coffeesave"
	"github.com/jwtly10/coffeesave/internal/config"
	"github.com/jwtly10/coffeesave/internal/lsp"
)

type WatcherOptions struct {
	// Quiet period after the last write to a file before it is compiled
	Debounce time.Duration
}

var DefaultWatcherOptions = WatcherOptions{
	Debounce: 200 * time.Millisecond,
}

// Watcher turns file system changes under a workspace root into [lsp.Host] events,
// standing in for an editor.
type Watcher struct {
	root     string
	host     lsp.Host
	watcher  *fsnotify.Watcher
	matcher  gitignore.Matcher
	debounce time.Duration

	mu     sync.Mutex
	timers map[string]*time.Timer

	events chan func(context.Context)
}

// NewWatcher starts watching root and every directory below it that is not ignored
func NewWatcher(root string, host lsp.Host, opts WatcherOptions) (*Watcher, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve watch root: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultWatcherOptions.Debounce
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		root:     absRoot,
		host:     host,
		watcher:  fsw,
		matcher:  ignoreMatcher(absRoot),
		debounce: opts.Debounce,
		timers:   make(map[string]*time.Timer),
		events:   make(chan func(context.Context), 64),
	}

	if err := w.addTree(absRoot); err != nil {
		fsw.Close()
		return nil, err
	}

	return w, nil
}

// Run delivers events to the host until ctx is done
func (w *Watcher) Run(ctx context.Context) error {
	slog.Info("watching for changes", "root", w.root)

	go w.eventLoop(ctx)
	defer w.stopTimers()

	for {
		select {
		case <-ctx.Done():
			return w.watcher.Close()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handle(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("file watcher error", "error", err)
		}
	}
}

// eventLoop runs host events one at a time
func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-w.events:
			ev(ctx)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}
	if w.ignored(event.Name) {
		return
	}

	info, err := os.Stat(event.Name)
	if err != nil {
		// gone again before we got to it
		return
	}

	if info.IsDir() {
		if event.Has(fsnotify.Create) {
			if err := w.addTree(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
			}
		}
		return
	}

	switch {
	case config.IsSettingsFile(event.Name) && filepath.Dir(event.Name) == w.root:
		slog.Debug("settings file changed", "path", event.Name)
		w.schedule(event.Name, func(ctx context.Context) {
			w.host.DidChangeConfiguration(ctx)
		})

	case coffeesave.IsSourceFile(event.Name):
		slog.Debug("source file changed", "path", event.Name, "op", event.Op.String())
		path := event.Name
		w.schedule(path, func(ctx context.Context) {
			content, err := os.ReadFile(path)
			if err != nil {
				slog.Error("failed to read changed file", "path", path, "error", err)
				return
			}
			w.host.DidSave(ctx, lsp.SaveEvent{Path: path, Text: string(content)})
		})
	}
}

// schedule queues ev once path has been quiet for the debounce period
func (w *Watcher) schedule(path string, ev func(context.Context)) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.timers[path]; ok {
		t.Stop()
	}
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.timers, path)
		w.mu.Unlock()

		select {
		case w.events <- ev:
		default:
			slog.Warn("event queue full, dropping change", "path", path)
		}
	})
}

func (w *Watcher) stopTimers() {
	w.mu.Lock()
	defer w.mu.Unlock()

	for path, t := range w.timers {
		t.Stop()
		delete(w.timers, path)
	}
}

func (w *Watcher) addTree(dir string) error {
	return filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != w.root && w.ignored(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			return fmt.Errorf("failed to watch %s: %w", path, err)
		}
		return nil
	})
}

func (w *Watcher) ignored(path string) bool {
	rel, err := filepath.Rel(w.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return true
	}
	if rel == "." {
		return false
	}

	info, err := os.Stat(path)
	isDir := err == nil && info.IsDir()
	return w.matcher.Match(strings.Split(rel, string(os.PathSeparator)), isDir)
}
