package transformer

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/jwtly10/coffeesave"
	"github.com/jwtly10/coffeesave/internal/compiler"
)

type TransformOptions struct {
	// If true, an existing output file is backed up before it is overwritten
	Backup bool
}

// Transformer runs the compile-and-write pipeline for a single source file
type Transformer struct {
	compiler compiler.Compiler
	minifier compiler.Minifier
	backup   *coffeesave.BackupManager

	opts TransformOptions
}

// NewTransformer creates a new Transformer instance with the specified options [TransformOptions]
func NewTransformer(c compiler.Compiler, m compiler.Minifier, opts TransformOptions) *Transformer {
	return &Transformer{
		compiler: c,
		minifier: m,
		backup:   coffeesave.NewBackupManager(),
		opts:     opts,
	}
}

// Source is a saved source file
type Source struct {
	// Absolute path of the file
	Path string
	// Full text of the file at save time
	Text string
	// Workspace folder the file belongs to
	WorkspaceRoot string
}

type Result struct {
	Output coffeesave.ResolvedOutput
	// Set when a separate source map file was written
	SourceMapWritten bool
	// Path of the backup taken of the previous output, if any
	BackupPath string
	Duration   time.Duration
}

// Transform compiles src with params and writes the result.
//
// Failures are returned as [*Error] carrying the failing [Stage]. A source map written
// before a later stage fails is left in place.
func (t *Transformer) Transform(ctx context.Context, src Source, params coffeesave.Params) (Result, error) {
	start := time.Now()
	slog.Debug("transforming document", "path", src.Path, "root", src.WorkspaceRoot)

	out, err := coffeesave.Resolve(src.Path, src.WorkspaceRoot, params)
	if err != nil {
		return Result{}, &Error{Stage: StageResolve, Path: src.Path, Err: err}
	}
	result := Result{Output: out}

	compiled, err := t.compiler.Compile(ctx, compiler.Input{
		Text:     src.Text,
		Filename: src.Path,
	}, compiler.Flags{
		Bare:      params.Bare,
		Header:    params.Header,
		InlineMap: params.InlineMap,
		SourceMap: params.SourceMap,
	})
	if err != nil {
		return result, &Error{Stage: StageCompile, Path: src.Path, Err: err}
	}

	code := compiled.JS
	if compiled.SourceMap != nil && !params.InlineMap {
		if err := t.writeSourceMap(out, src.Path, compiled.SourceMap); err != nil {
			return result, err
		}
		result.SourceMapWritten = true
	}

	if params.Compress {
		minified, err := t.minifier.Minify(ctx, code)
		if err != nil {
			return result, &Error{Stage: StageMinify, Path: src.Path, Err: err}
		}
		code = minified.Code
	}

	if result.SourceMapWritten {
		code += fmt.Sprintf("\n//# sourceMappingURL=%s\n", out.SourceMapFileName)
	}

	if t.opts.Backup {
		result.BackupPath, err = t.backup.CreateBackupOf(out.OutputPath())
		if err != nil {
			return result, &Error{Stage: StageBackup, Path: out.OutputPath(), Err: err}
		}
	}

	if err := t.write(out.OutputPath(), code); err != nil {
		return result, err
	}

	result.Duration = time.Since(start)
	slog.Debug("document transformed",
		"source", src.Path,
		"output", out.OutputPath(),
		"sourcemap", result.SourceMapWritten,
		"compress", params.Compress,
		"duration", result.Duration)

	return result, nil
}

func (t *Transformer) writeSourceMap(out coffeesave.ResolvedOutput, srcPath string, sm *compiler.SourceMap) error {
	source := filepath.Base(srcPath)
	if rel, err := filepath.Rel(out.OutputDir, srcPath); err == nil {
		source = filepath.ToSlash(rel)
	}

	data, err := sm.Generate(out.OutputFileName, []string{source})
	if err != nil {
		return &Error{Stage: StageSourceMap, Path: out.SourceMapPath(), Err: err}
	}

	return t.write(out.SourceMapPath(), string(data))
}

func (t *Transformer) write(path, content string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return &Error{Stage: StageMkdir, Path: filepath.Dir(path), Err: err}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return &Error{Stage: StageWrite, Path: path, Err: err}
	}
	return nil
}
