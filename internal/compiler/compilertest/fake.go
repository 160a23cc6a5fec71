// Package compilertest provides in-memory compiler and minifier doubles
package compilertest

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/jwtly10/coffeesave/internal/compiler"
)

// Call records a single Compile invocation
type Call struct {
	Input compiler.Input
	Flags compiler.Flags
}

// Compiler is a fake [compiler.Compiler].
//
// The generated javascript echoes the flags and the source text so tests can
// assert on what reached the compiler.
type Compiler struct {
	// Err is returned from every Compile call when set
	Err error

	mu    sync.Mutex
	calls []Call
}

func (c *Compiler) Compile(_ context.Context, in compiler.Input, flags compiler.Flags) (compiler.Output, error) {
	c.mu.Lock()
	c.calls = append(c.calls, Call{Input: in, Flags: flags})
	c.mu.Unlock()

	if c.Err != nil {
		return compiler.Output{}, c.Err
	}

	var b strings.Builder
	if flags.Header {
		b.WriteString("// Generated by CoffeeScript\n")
	}
	if !flags.Bare {
		b.WriteString("(function() {\n")
	}
	for _, line := range strings.Split(strings.TrimRight(in.Text, "\n"), "\n") {
		if strings.HasPrefix(line, "#") || line == "" {
			continue
		}
		fmt.Fprintf(&b, "var %s;\n", strings.TrimSpace(line))
	}
	if !flags.Bare {
		b.WriteString("}).call(this);\n")
	}
	if flags.InlineMap {
		b.WriteString("//# sourceMappingURL=data:application/json;base64,e30=\n")
	}

	out := compiler.Output{JS: b.String()}
	if flags.SourceMap && !flags.InlineMap {
		out.SourceMap = &compiler.SourceMap{
			Version:  3,
			File:     "tmp.js",
			Sources:  []string{filepath.Base(in.Filename)},
			Names:    []string{},
			Mappings: "AAAA",
		}
	}
	return out, nil
}

// Calls returns the recorded Compile invocations
func (c *Compiler) Calls() []Call {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Call(nil), c.calls...)
}

// Minifier is a fake [compiler.Minifier] that strips newlines
type Minifier struct {
	Err error
}

func (m *Minifier) Minify(_ context.Context, code string) (compiler.Minified, error) {
	if m.Err != nil {
		return compiler.Minified{}, m.Err
	}
	return compiler.Minified{Code: strings.ReplaceAll(code, "\n", "")}, nil
}
