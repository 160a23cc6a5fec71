package compiler

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCoffee mimics the parts of the coffee cli the compiler relies on
const fakeCoffee = `#!/bin/sh
out=""
map=0
src=""
while [ $# -gt 0 ]; do
  case "$1" in
    --output) out="$2"; shift ;;
    --map) map=1 ;;
    --compile|--bare|--no-header|--inline-map) ;;
    *) src="$1" ;;
  esac
  shift
done
name=$(basename "$src" .coffee)
if grep -q "syntax error" "$src"; then
  echo "$src:1:1: error: unexpected identifier" >&2
  exit 1
fi
printf 'var a = 1;\n' > "$out/$name.js"
if [ $map = 1 ]; then
  printf '\n//# sourceMappingURL=%s.js.map\n' "$name" >> "$out/$name.js"
  printf '{"version":3,"file":"%s.js","sourceRoot":"","sources":["%s.coffee"],"names":[],"mappings":"AAAA"}' "$name" "$name" > "$out/$name.js.map"
fi
`

func newFakeCoffee(t *testing.T) *Coffee {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake coffee is a shell script")
	}

	path := filepath.Join(t.TempDir(), "coffee")
	require.NoError(t, os.WriteFile(path, []byte(fakeCoffee), 0755))

	c, err := NewCoffee(t.TempDir(), path)
	require.NoError(t, err)
	return c
}

func TestCoffeeCompile(t *testing.T) {
	c := newFakeCoffee(t)

	out, err := c.Compile(context.Background(), Input{
		Text:     "a = 1\n",
		Filename: "/ws/src/main.coffee",
	}, Flags{Bare: true})
	require.NoError(t, err)

	assert.Equal(t, "var a = 1;\n", out.JS)
	assert.Nil(t, out.SourceMap)
}

func TestCoffeeCompileWithSourceMap(t *testing.T) {
	c := newFakeCoffee(t)

	out, err := c.Compile(context.Background(), Input{
		Text:     "a = 1\n",
		Filename: "/ws/src/main.coffee",
	}, Flags{Bare: true, SourceMap: true})
	require.NoError(t, err)

	assert.Equal(t, "var a = 1;\n\n", out.JS, "the temporary mapping url should be stripped")
	require.NotNil(t, out.SourceMap)
	assert.Equal(t, []string{"main.coffee"}, out.SourceMap.Sources)
	assert.Equal(t, "AAAA", out.SourceMap.Mappings)
}

func TestCoffeeCompileError(t *testing.T) {
	c := newFakeCoffee(t)

	_, err := c.Compile(context.Background(), Input{
		Text:     "syntax error here\n",
		Filename: "/ws/src/broken.coffee",
	}, Flags{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCompile))
	assert.Contains(t, err.Error(), "/ws/src/broken.coffee:1:1: error: unexpected identifier")
}

func TestCoffeeArgs(t *testing.T) {
	c := &Coffee{Path: "coffee"}

	tests := []struct {
		name  string
		flags Flags
		want  []string
	}{
		{
			name:  "defaults",
			flags: Flags{},
			want:  []string{"--compile", "--output", "/out", "--no-header", "/out/a.coffee"},
		},
		{
			name:  "bare with header",
			flags: Flags{Bare: true, Header: true},
			want:  []string{"--compile", "--output", "/out", "--bare", "/out/a.coffee"},
		},
		{
			name:  "source map",
			flags: Flags{SourceMap: true},
			want:  []string{"--compile", "--output", "/out", "--no-header", "--map", "/out/a.coffee"},
		},
		{
			name:  "inline map wins",
			flags: Flags{SourceMap: true, InlineMap: true},
			want:  []string{"--compile", "--output", "/out", "--no-header", "--inline-map", "/out/a.coffee"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.args(tt.flags, "/out", "/out/a.coffee"))
		})
	}
}

func TestOutputName(t *testing.T) {
	assert.Equal(t, "main.js", outputName("main.coffee"))
	assert.Equal(t, "guide.js", outputName("guide.litcoffee"))
	assert.Equal(t, "README.js", outputName("README.coffee.md"))
	assert.Equal(t, "other.js", outputName("other.txt"))
}

func TestFindCoffee(t *testing.T) {
	_, err := NewCoffee("", filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrCoffeeNotFound))

	root := t.TempDir()
	local := filepath.Join(root, "node_modules", ".bin", "coffee")
	require.NoError(t, os.MkdirAll(filepath.Dir(local), 0755))
	require.NoError(t, os.WriteFile(local, []byte("#!/bin/sh\n"), 0755))

	c, err := NewCoffee(root, "")
	require.NoError(t, err)
	assert.Equal(t, local, c.Path)
}
