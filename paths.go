package coffeesave

import (
	"errors"
	"fmt"
	"path"
	"path/filepath"
	"regexp"
	"strings"
)

// ErrOutsideWorkspace is returned when an output path resolves outside the workspace root
var ErrOutsideWorkspace = errors.New("output outside workspace")

// SourceExtensions are the file extensions compiled on save, longest first
var SourceExtensions = []string{".coffee.md", ".litcoffee", ".coffee"}

var lineBreakRegex = regexp.MustCompile(`\s*[\r\n]+\s*`)

var driveRegex = regexp.MustCompile(`^[A-Za-z]:/`)

// ResolvedOutput is where the compiled output of a source file is written
type ResolvedOutput struct {
	// Absolute, canonical output directory inside the workspace root
	OutputDir string
	// File name of the compiled javascript
	OutputFileName string
	// File name of the companion source map, in OutputDir
	SourceMapFileName string
}

// OutputPath returns the absolute path of the compiled output file
func (r ResolvedOutput) OutputPath() string {
	return filepath.Join(r.OutputDir, r.OutputFileName)
}

// SourceMapPath returns the absolute path of the source map file
func (r ResolvedOutput) SourceMapPath() string {
	return filepath.Join(r.OutputDir, r.SourceMapFileName)
}

// IsSourceFile reports whether the file at path should be compiled on save
func IsSourceFile(p string) bool {
	return sourceExt(p) != ""
}

// Resolve computes the output location of a source file.
//
// The output template in params is interpreted as follows, in order:
//
//   - $1 and $2 are replaced with the source base name and extension (without the dot)
//   - empty means the directory of the source file
//   - a leading $ stands for the workspace root
//   - a trailing .js names the output file, the rest is the directory
//   - a leading . is relative to the source file directory
//   - anything else is relative to the workspace root
//
// Both backslashes and slashes are accepted as separators. Resolve only works on strings
// and never touches the filesystem.
//
// When the canonical output directory is not inside workspaceRoot, [ErrOutsideWorkspace] is returned.
func Resolve(sourcePath, workspaceRoot string, params Params) (ResolvedOutput, error) {
	src := toSlash(sourcePath)
	canonicalRoot := path.Clean(toSlash(workspaceRoot))
	if !isAbs(src) {
		return ResolvedOutput{}, fmt.Errorf("source path %q is not absolute", sourcePath)
	}
	if !isAbs(canonicalRoot) {
		return ResolvedOutput{}, fmt.Errorf("workspace root %q is not absolute", workspaceRoot)
	}
	root := strings.TrimSuffix(canonicalRoot, "/")

	srcDir := path.Dir(src)
	base := path.Base(src)
	ext := sourceExt(base)
	if ext == "" {
		ext = path.Ext(base)
	}
	name := strings.TrimSuffix(base, ext)

	dir := srcDir + "/"
	if out := normalizeTemplate(params.Output); out != "" {
		out = strings.NewReplacer("$1", name, "$2", strings.TrimPrefix(ext, ".")).Replace(out)
		dir = toSlash(out)
	}

	if strings.HasPrefix(dir, "$") {
		rest := dir[1:]
		if !strings.HasPrefix(rest, "/") {
			rest = "/" + rest
		}
		dir = root + rest
	}

	var fileName string
	if strings.HasSuffix(dir, ".js") {
		i := strings.LastIndex(dir, "/")
		fileName = dir[i+1:]
		dir = dir[:i+1]
	}

	if strings.HasPrefix(dir, ".") {
		dir = srcDir + "/" + dir
	}

	if !isAbs(dir) {
		dir = "/" + dir
	}

	dir = strings.TrimRight(dir, "/") + "/"

	if !hasPathPrefix(dir, root) {
		dir = root + dir
	}

	canonical := path.Clean(dir)
	if !hasPathPrefix(canonical, root) {
		return ResolvedOutput{}, fmt.Errorf("%w: %s is not inside %s", ErrOutsideWorkspace, canonical, canonicalRoot)
	}

	if fileName == "" {
		fileName = name + ".js"
	}

	return ResolvedOutput{
		OutputDir:         filepath.FromSlash(canonical),
		OutputFileName:    fileName,
		SourceMapFileName: fileName + ".map",
	}, nil
}

// WorkspaceRootFor returns the workspace folder containing p.
//
// When folders are nested the longest match wins.
func WorkspaceRootFor(p string, folders []string) (string, bool) {
	target := path.Clean(toSlash(p))

	best, bestRoot := "", ""
	for _, folder := range folders {
		root := strings.TrimSuffix(path.Clean(toSlash(folder)), "/")
		if !hasPathPrefix(target, root) {
			continue
		}
		if best == "" || len(root) > len(bestRoot) {
			best, bestRoot = folder, root
		}
	}

	return best, best != ""
}

func normalizeTemplate(out string) string {
	return strings.TrimSpace(lineBreakRegex.ReplaceAllString(out, ""))
}

func sourceExt(p string) string {
	lower := strings.ToLower(p)
	for _, ext := range SourceExtensions {
		if strings.HasSuffix(lower, ext) && len(lower) > len(ext) {
			return p[len(p)-len(ext):]
		}
	}
	return ""
}

func toSlash(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

func isAbs(p string) bool {
	return strings.HasPrefix(p, "/") || driveRegex.MatchString(p)
}

// hasPathPrefix reports whether p is root or lies below it, comparing whole segments.
// root must not carry a trailing slash, the empty root is the filesystem root.
func hasPathPrefix(p, root string) bool {
	if root == "" {
		return strings.HasPrefix(p, "/")
	}
	return p == root || strings.HasPrefix(p, root+"/")
}
