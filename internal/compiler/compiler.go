package compiler

import (
	"context"
	"errors"
)

var (
	// ErrCompile wraps diagnostics reported by the compiler
	ErrCompile = errors.New("compile failed")
	// ErrMinify wraps diagnostics reported by the minifier
	ErrMinify = errors.New("minify failed")
)

// Flags control a single compilation
type Flags struct {
	Bare      bool
	Header    bool
	InlineMap bool
	SourceMap bool
}

// Input is the source handed to a [Compiler]
type Input struct {
	// Full text of the source file, as the editor has it
	Text string
	// Path of the source file. The extension decides whether the source is literate
	Filename string
}

// Output is the result of a compilation.
//
// SourceMap is nil unless a separate source map was requested.
type Output struct {
	JS        string
	SourceMap *SourceMap
}

// Compiler turns CoffeeScript into javascript
type Compiler interface {
	Compile(ctx context.Context, in Input, flags Flags) (Output, error)
}

// Minified is the result of a minification
type Minified struct {
	Code string
}

// Minifier compresses javascript
type Minifier interface {
	Minify(ctx context.Context, code string) (Minified, error)
}
