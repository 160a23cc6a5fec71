package lsp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync/atomic"

	"github.com/jwtly10/coffeesave"
	"github.com/jwtly10/coffeesave/internal/compiler"
	"github.com/jwtly10/coffeesave/internal/config"
	"github.com/jwtly10/coffeesave/internal/transformer"
)

// errorTag prefixes compiler and minifier failures shown to the user
const errorTag = "CoffeeScript:"

// ErrConfigBusy is returned when a settings lookup is attempted while another one is running
var ErrConfigBusy = errors.New("configuration reload in progress")

// CompilerFactory builds the compiler for a workspace
type CompilerFactory func(root string, settings coffeesave.Settings) (compiler.Compiler, error)

// CoffeeCompiler is the default [CompilerFactory], running the coffee binary
func CoffeeCompiler(root string, settings coffeesave.Settings) (compiler.Compiler, error) {
	return compiler.NewCoffee(root, settings.CompilerPath)
}

type SaveServiceOptions struct {
	// Source of workspace settings
	Settings SettingsSource
	// Where user facing messages go
	Notifier Notifier
	// Builds the compiler for a workspace, defaults to [CoffeeCompiler]
	NewCompiler CompilerFactory
	// Minifier used for compressed output, defaults to esbuild
	Minifier compiler.Minifier
	// Number of workspace settings kept in memory
	CacheSize int
}

func (o SaveServiceOptions) Validate() error {
	if o.Settings == nil {
		return fmt.Errorf("settings source is required")
	}
	if o.Notifier == nil {
		return fmt.Errorf("notifier is required")
	}
	return nil
}

// SaveService compiles CoffeeScript files when the host reports them saved.
//
// It is the single implementation of [Host]; the language server and the file watcher
// only translate their own events into calls on it.
type SaveService struct {
	folders     *Folders
	source      SettingsSource
	notifier    Notifier
	newCompiler CompilerFactory
	minifier    compiler.Minifier
	cache       *config.Cache

	state    atomic.Int32
	shutdown atomic.Bool
}

var _ Host = (*SaveService)(nil)

func NewSaveService(opts SaveServiceOptions) (*SaveService, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid save service options: %w", err)
	}

	cache, err := config.NewCache(opts.CacheSize)
	if err != nil {
		return nil, err
	}

	s := &SaveService{
		folders:     NewFolders(),
		source:      opts.Settings,
		notifier:    opts.Notifier,
		newCompiler: opts.NewCompiler,
		minifier:    opts.Minifier,
		cache:       cache,
	}
	if s.newCompiler == nil {
		s.newCompiler = CoffeeCompiler
	}
	if s.minifier == nil {
		s.minifier = compiler.NewEsbuild()
	}

	return s, nil
}

// Folders returns the workspace folder registry
func (s *SaveService) Folders() *Folders {
	return s.folders
}

// State returns what the service is currently doing
func (s *SaveService) State() State {
	return State(s.state.Load())
}

// Shutdown stops the service from handling further saves.
//
// Compilations already running are not waited for.
func (s *SaveService) Shutdown() {
	s.shutdown.Store(true)
}

func (s *SaveService) IsShutdown() bool {
	return s.shutdown.Load()
}

// DidSave compiles a saved source file. All failures are reported through the notifier.
func (s *SaveService) DidSave(ctx context.Context, ev SaveEvent) {
	if s.shutdown.Load() {
		slog.Debug("ignoring save after shutdown", "path", ev.Path)
		return
	}
	if !coffeesave.IsSourceFile(ev.Path) {
		return
	}

	root, ok := s.folders.RootFor(ev.Path)
	if !ok {
		slog.Debug("saved file is outside all workspace folders", "path", ev.Path)
		return
	}

	settings, err := s.settings(ctx, root)
	if err != nil {
		slog.Debug("configuration unavailable, skipping compile", "path", ev.Path, "error", err)
		return
	}

	params, inline := coffeesave.SelectParams(ev.Text, settings)
	slog.Debug("compiling saved file", "path", ev.Path, "root", root, "inline_directive", inline, "params", params)

	comp, err := s.newCompiler(root, settings)
	if err != nil {
		s.notifier.Error(ctx, fmt.Sprintf("%s %v", errorTag, err))
		return
	}

	t := transformer.NewTransformer(comp, s.minifier, transformer.TransformOptions{
		Backup: coffeesave.ToBool(settings.Backup, false),
	})

	res, err := t.Transform(ctx, transformer.Source{
		Path:          ev.Path,
		Text:          ev.Text,
		WorkspaceRoot: root,
	}, params)
	if err != nil {
		s.report(ctx, ev.Path, err)
		return
	}

	if res.BackupPath != "" {
		s.notifier.Info(ctx, fmt.Sprintf("Backed up existing %s to %s", res.Output.OutputFileName, filepath.Base(res.BackupPath)))
	}
	s.notifier.Success(ctx, fmt.Sprintf("Compiled %s to %s", relTo(root, ev.Path), relTo(root, res.Output.OutputPath())))
}

// DidChangeConfiguration drops all cached settings, they are looked up again on the next save
func (s *SaveService) DidChangeConfiguration(ctx context.Context) {
	slog.Debug("configuration changed, purging settings cache", "entries", s.cache.Len())
	s.cache.Purge()
}

func (s *SaveService) DidChangeWorkspaceFolders(ctx context.Context, added, removed []string) {
	s.folders.Remove(removed...)
	for _, root := range removed {
		s.cache.Remove(filepath.Clean(root))
	}
	s.folders.Add(added...)
	slog.Debug("workspace folders changed", "added", added, "removed", removed, "folders", s.folders.List())
}

// settings returns the settings for root, looking them up when they are not cached.
// Lookups never nest: a lookup while another is running fails with [ErrConfigBusy].
func (s *SaveService) settings(ctx context.Context, root string) (coffeesave.Settings, error) {
	if cached, ok := s.cache.Get(root); ok {
		return cached, nil
	}

	if !s.state.CompareAndSwap(int32(StateIdle), int32(StateReloadingConfig)) {
		return coffeesave.Settings{}, ErrConfigBusy
	}
	defer s.state.Store(int32(StateIdle))

	settings, err := s.source.Settings(ctx, root)
	if err != nil {
		return coffeesave.Settings{}, err
	}

	s.cache.Add(root, settings)
	return settings, nil
}

func (s *SaveService) report(ctx context.Context, path string, err error) {
	slog.Debug("compile failed", "path", path, "error", err)

	var terr *transformer.Error
	if !errors.As(err, &terr) {
		s.notifier.Error(ctx, err.Error())
		return
	}

	switch terr.Stage {
	case transformer.StageResolve:
		if errors.Is(err, coffeesave.ErrOutsideWorkspace) {
			s.notifier.Error(ctx, fmt.Sprintf("Invalid output path for %s: %v", filepath.Base(path), terr.Err))
			return
		}
		s.notifier.Error(ctx, terr.Err.Error())
	case transformer.StageCompile, transformer.StageMinify:
		s.notifier.Error(ctx, fmt.Sprintf("%s %v", errorTag, terr.Err))
	default:
		s.notifier.Error(ctx, terr.Error())
	}
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return rel
}
