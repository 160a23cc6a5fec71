package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
	"github.com/jwtly10/coffeesave"
	"github.com/jwtly10/coffeesave/internal/compiler"
	"github.com/jwtly10/coffeesave/internal/config"
	"github.com/jwtly10/coffeesave/internal/lsp"
	"github.com/jwtly10/coffeesave/internal/transformer"
)

const (
	maxFiles   = 1000
	maxWorkers = 4
)

type TranspileResult struct {
	Path      string
	OutPath   string
	SourceMap bool
	Backup    string
	Duration  time.Duration
}

type ProcessResult struct {
	Path   string
	Result transformer.Result
	Error  error
}

type ProcessorOptions struct {
	// Builds the compiler for a workspace, defaults to [lsp.CoffeeCompiler]
	NewCompiler lsp.CompilerFactory
	// Minifier for compressed output, defaults to esbuild
	Minifier compiler.Minifier
	// Where workspace settings come from, defaults to the workspace settings file
	Settings lsp.SettingsSource
}

// Processor compiles every CoffeeScript file under a path, outside of any editor
type Processor struct {
	newCompiler lsp.CompilerFactory
	minifier    compiler.Minifier
	source      lsp.SettingsSource
}

func NewProcessor(opts ProcessorOptions) *Processor {
	p := &Processor{
		newCompiler: opts.NewCompiler,
		minifier:    opts.Minifier,
		source:      opts.Settings,
	}
	if p.newCompiler == nil {
		p.newCompiler = lsp.CoffeeCompiler
	}
	if p.minifier == nil {
		p.minifier = compiler.NewEsbuild()
	}
	if p.source == nil {
		p.source = config.FileSource{}
	}
	return p
}

// ProcessPath compiles path, a single source file or a directory searched recursively.
//
// Output templates resolve against root. An empty root means the directory itself,
// or for a single file the closest ancestor holding a settings file or a .git directory.
func (p *Processor) ProcessPath(ctx context.Context, path, root string) ([]TranspileResult, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return nil, fmt.Errorf("error accessing path: %w", err)
	}

	if root == "" {
		if info.IsDir() {
			root = absPath
		} else {
			root = FindWorkspaceRoot(filepath.Dir(absPath))
		}
	}
	if root, err = filepath.Abs(root); err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root: %w", err)
	}

	settings, err := p.source.Settings(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("failed to load settings for %s: %w", root, err)
	}

	if info.IsDir() {
		return p.processDirectory(ctx, absPath, root, settings)
	}

	result := p.processFile(ctx, absPath, root, settings)
	if result.Error != nil {
		return nil, result.Error
	}

	return []TranspileResult{toTranspileResult(root, result)}, nil
}

// FindWorkspaceRoot walks up from dir to the first directory holding a settings file
// or a .git directory. dir itself is returned when there is none.
func FindWorkspaceRoot(dir string) string {
	for current := dir; ; {
		for _, name := range append([]string{".git"}, config.FileNames...) {
			if _, err := os.Stat(filepath.Join(current, name)); err == nil {
				return current
			}
		}

		parent := filepath.Dir(current)
		if parent == current {
			return dir
		}
		current = parent
	}
}

// ignoreMatcher builds a gitignore matcher for root.
//
// If a .git directory is found, it will be used to load .gitignore patterns.
// node_modules is always skipped.
func ignoreMatcher(root string) gitignore.Matcher {
	patterns := []gitignore.Pattern{gitignore.ParsePattern("node_modules/", nil)}

	if _, err := os.Stat(filepath.Join(root, ".git")); err == nil {
		patterns = append(patterns, gitignore.ParsePattern(".git/", nil))

		if data, err := os.ReadFile(filepath.Join(root, ".gitignore")); err == nil {
			for _, p := range strings.Split(string(data), "\n") {
				if p = strings.TrimSpace(p); p != "" && !strings.HasPrefix(p, "#") {
					patterns = append(patterns, gitignore.ParsePattern(p, nil))
				}
			}
		}
	}

	return gitignore.NewMatcher(patterns)
}

// findFiles walks the directory tree starting at dir and returns the CoffeeScript sources in it
func (p *Processor) findFiles(dir string) ([]string, error) {
	var files []string
	matcher := ignoreMatcher(dir)

	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		if relPath == "." {
			return nil
		}

		pathComponents := strings.Split(relPath, string(os.PathSeparator))
		if matcher.Match(pathComponents, info.IsDir()) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if !info.IsDir() && coffeesave.IsSourceFile(path) {
			if len(files) >= maxFiles {
				return fmt.Errorf("max files limit reached (%d)", maxFiles)
			}
			files = append(files, path)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no CoffeeScript files found in %s", dir)
	}

	return files, nil
}

func (p *Processor) processDirectory(ctx context.Context, dir, root string, settings coffeesave.Settings) ([]TranspileResult, error) {
	startTime := time.Now()
	slog.Debug("starting directory processing", "path", dir, "root", root)
	files, err := p.findFiles(dir)
	if err != nil {
		return nil, err
	}

	slog.Debug("found files to process", "count", len(files), "duration", time.Since(startTime))

	jobs := make(chan string, len(files))
	results := make(chan ProcessResult, len(files))

	var wg sync.WaitGroup
	for i := 0; i < maxWorkers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				results <- p.processFile(ctx, path, root, settings)
			}
		}()
	}

	for _, file := range files {
		jobs <- file
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	var failed int
	var transpileResults []TranspileResult

	for result := range results {
		if result.Error != nil {
			failed++
			slog.Error("failed to compile file", "path", result.Path, "error", result.Error)
			continue
		}

		tr := toTranspileResult(root, result)
		transpileResults = append(transpileResults, tr)

		slog.Debug("file compiled",
			"source", tr.Path,
			"output", tr.OutPath,
		)
	}

	slices.SortFunc(transpileResults, func(a, b TranspileResult) int {
		return strings.Compare(a.Path, b.Path)
	})

	if failed > 0 {
		return transpileResults, fmt.Errorf("encountered %d errors during compilation", failed)
	}

	slog.Debug("compilation completed", "duration", time.Since(startTime), "processed", len(transpileResults))
	return transpileResults, nil
}

func (p *Processor) processFile(ctx context.Context, path, root string, settings coffeesave.Settings) ProcessResult {
	result := ProcessResult{Path: path}

	slog.Debug("processing file", "path", path)

	if !coffeesave.IsSourceFile(path) {
		result.Error = fmt.Errorf("not a CoffeeScript file: %s", path)
		return result
	}

	content, err := os.ReadFile(path)
	if err != nil {
		result.Error = fmt.Errorf("error reading file: %w", err)
		return result
	}

	params, inline := coffeesave.SelectParams(string(content), settings)
	slog.Debug("selected compile parameters", "path", path, "inline_directive", inline, "params", params)

	comp, err := p.newCompiler(root, settings)
	if err != nil {
		result.Error = err
		return result
	}

	t := transformer.NewTransformer(comp, p.minifier, transformer.TransformOptions{
		Backup: coffeesave.ToBool(settings.Backup, false),
	})

	res, err := t.Transform(ctx, transformer.Source{
		Path:          path,
		Text:          string(content),
		WorkspaceRoot: root,
	}, params)
	if err != nil {
		result.Error = err
		return result
	}

	result.Result = res
	slog.Debug("file processed",
		"path", path,
		"duration", res.Duration)

	return result
}

func toTranspileResult(root string, r ProcessResult) TranspileResult {
	relSource, err := filepath.Rel(root, r.Path)
	if err != nil {
		relSource = r.Path
	}
	relOut, err := filepath.Rel(root, r.Result.Output.OutputPath())
	if err != nil {
		relOut = r.Result.Output.OutputPath()
	}

	return TranspileResult{
		Path:      relSource,
		OutPath:   relOut,
		SourceMap: r.Result.SourceMapWritten,
		Backup:    r.Result.BackupPath,
		Duration:  r.Result.Duration,
	}
}
