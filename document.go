package coffeesave

// DirectiveKey is a key recognised in an inline compile directive
type DirectiveKey string

const (
	KeyOut       DirectiveKey = "out"
	KeyBare      DirectiveKey = "bare"
	KeyCompress  DirectiveKey = "compress"
	KeySourceMap DirectiveKey = "sourcemap"
	KeyInlineMap DirectiveKey = "inlinemap"
	KeyHeader    DirectiveKey = "header"
)

// Directive holds the raw values of an inline directive, as written in the source file.
//
// A key that was not present in the directive is left as the empty string.
type Directive struct {
	Out       string
	Bare      string
	Compress  string
	SourceMap string
	InlineMap string
	Header    string
}

// Params returns the compile parameters described by the directive.
//
// Keys missing from the directive take the directive defaults (bare on, everything else off)
func (d Directive) Params() Params {
	return Params{
		Output:    d.Out,
		Bare:      ToBool(d.Bare, true),
		Compress:  ToBool(d.Compress, false),
		SourceMap: ToBool(d.SourceMap, false),
		InlineMap: ToBool(d.InlineMap, false),
		Header:    ToBool(d.Header, false),
	}
}

func (d *Directive) set(key DirectiveKey, value string) {
	switch key {
	case KeyOut:
		d.Out = value
	case KeyBare:
		d.Bare = value
	case KeyCompress:
		d.Compress = value
	case KeySourceMap:
		d.SourceMap = value
	case KeyInlineMap:
		d.InlineMap = value
	case KeyHeader:
		d.Header = value
	}
}

// Settings is the workspace level configuration, as read from the editor or a .coffeesave.yaml file.
//
// Flag values are loosely typed since editors hand back whatever the user wrote, they are coerced with [ToBool].
type Settings struct {
	// Output path template, see [Resolve]
	Output    string `json:"output" yaml:"output"`
	Compress  any    `json:"compress" yaml:"compress"`
	Bare      any    `json:"bare" yaml:"bare"`
	Header    any    `json:"header" yaml:"header"`
	InlineMap any    `json:"inlineMap" yaml:"inlineMap"`
	SourceMap any    `json:"sourceMap" yaml:"sourceMap"`

	// Back up an existing output file before overwriting it
	Backup any `json:"backup" yaml:"backup"`
	// Path to the coffee binary, looked up automatically when empty
	CompilerPath string `json:"compilerPath" yaml:"compilerPath"`
}

// Params returns the compile parameters described by the settings
func (s Settings) Params() Params {
	return Params{
		Output:    s.Output,
		Bare:      ToBool(s.Bare, true),
		Compress:  ToBool(s.Compress, false),
		SourceMap: ToBool(s.SourceMap, false),
		InlineMap: ToBool(s.InlineMap, false),
		Header:    ToBool(s.Header, false),
	}
}

// Params are the options a single compilation runs with
type Params struct {
	// Output path template. Empty means next to the source file
	Output string
	// Compile without the top-level function safety wrapper
	Bare bool
	// Minify the compiled output
	Compress bool
	// Write a source map next to the output file
	SourceMap bool
	// Embed the source map in the output file
	InlineMap bool
	// Keep the "Generated by CoffeeScript" header
	Header bool
}

// SelectParams picks the compile parameters for a source file.
//
// An inline directive replaces the workspace settings completely. There is no per key merge,
// so any key the directive leaves out takes the directive default rather than the settings value.
//
// The second return value reports whether the directive was used.
func SelectParams(text string, settings Settings) (Params, bool) {
	if d, ok := ParseDirective(text); ok {
		return d.Params(), true
	}
	return settings.Params(), false
}
