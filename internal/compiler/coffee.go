package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/jwtly10/coffeesave"
)

// ErrCoffeeNotFound is returned when no coffee binary could be located
var ErrCoffeeNotFound = errors.New("coffee compiler not found")

// Coffee compiles through the coffee command line compiler.
//
// Every compilation runs in its own temporary directory, the editor's unsaved
// buffer text is what gets compiled rather than the file on disk.
type Coffee struct {
	// Path to the coffee binary
	Path string
}

// NewCoffee locates the coffee binary for a workspace.
//
// A configured path wins, then a workspace local node_modules install,
// then common install locations and finally $PATH.
func NewCoffee(workspaceRoot, configured string) (*Coffee, error) {
	p, err := findCoffee(workspaceRoot, configured)
	if err != nil {
		return nil, err
	}
	slog.Debug("using coffee compiler", "path", p, "workspace", workspaceRoot)
	return &Coffee{Path: p}, nil
}

func (c *Coffee) Compile(ctx context.Context, in Input, flags Flags) (Output, error) {
	dir, err := os.MkdirTemp("", "coffeesave-*")
	if err != nil {
		return Output{}, fmt.Errorf("creating compile directory: %w", err)
	}
	defer os.RemoveAll(dir)

	name := filepath.Base(in.Filename)
	if name == "." || name == string(filepath.Separator) || name == "" {
		name = "input.coffee"
	}
	srcPath := filepath.Join(dir, name)
	if err := os.WriteFile(srcPath, []byte(in.Text), 0644); err != nil {
		return Output{}, fmt.Errorf("writing compile input: %w", err)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.Path, c.args(flags, dir, srcPath)...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	slog.Debug("running coffee", "args", cmd.Args)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return Output{}, fmt.Errorf("%w: %s", ErrCompile, strings.ReplaceAll(msg, srcPath, in.Filename))
	}

	jsName := outputName(name)
	js, err := os.ReadFile(filepath.Join(dir, jsName))
	if err != nil {
		return Output{}, fmt.Errorf("reading compiled output: %w", err)
	}

	out := Output{JS: string(js)}
	if flags.SourceMap && !flags.InlineMap {
		data, err := os.ReadFile(filepath.Join(dir, jsName+".map"))
		if err != nil {
			return Output{}, fmt.Errorf("reading source map: %w", err)
		}
		if out.SourceMap, err = ParseSourceMap(data); err != nil {
			return Output{}, err
		}
		out.JS = stripMappingURL(out.JS)
	}

	return out, nil
}

func (c *Coffee) args(flags Flags, outDir, srcPath string) []string {
	args := []string{"--compile", "--output", outDir}
	if flags.Bare {
		args = append(args, "--bare")
	}
	if !flags.Header {
		args = append(args, "--no-header")
	}
	switch {
	case flags.InlineMap:
		args = append(args, "--inline-map")
	case flags.SourceMap:
		args = append(args, "--map")
	}
	return append(args, srcPath)
}

// outputName mirrors how coffee names its output: the source extension is swapped for .js
func outputName(name string) string {
	lower := strings.ToLower(name)
	for _, ext := range coffeesave.SourceExtensions {
		if strings.HasSuffix(lower, ext) {
			return name[:len(name)-len(ext)] + ".js"
		}
	}
	return strings.TrimSuffix(name, filepath.Ext(name)) + ".js"
}

// stripMappingURL drops the sourceMappingURL comment coffee appends for --map,
// it points at the temporary directory.
func stripMappingURL(js string) string {
	trimmed := strings.TrimRight(js, "\n")
	i := strings.LastIndex(trimmed, "\n")
	if strings.HasPrefix(trimmed[i+1:], "//# sourceMappingURL=") {
		return trimmed[:i+1]
	}
	return js
}

func findCoffee(workspaceRoot, configured string) (string, error) {
	if configured != "" {
		if _, err := os.Stat(configured); err != nil {
			return "", fmt.Errorf("%w: configured path %s: %v", ErrCoffeeNotFound, configured, err)
		}
		return configured, nil
	}

	var candidates []string
	if workspaceRoot != "" {
		candidates = append(candidates, filepath.Join(workspaceRoot, "node_modules", ".bin", "coffee"))
	}
	candidates = append(candidates,
		"/opt/homebrew/bin/coffee",
		"/usr/local/bin/coffee",
		"/usr/bin/coffee",
	)

	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, nil
		}
	}

	p, err := exec.LookPath("coffee")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrCoffeeNotFound, err)
	}
	return p, nil
}
