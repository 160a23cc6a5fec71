package coffeesave

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCanParseDirective(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected Directive
		found    bool
	}{
		{
			name:     "test basic out directive",
			text:     "# out: ../dist/\nx = 1\n",
			expected: Directive{Out: "../dist/"},
			found:    true,
		},
		{
			name: "test multiple keys",
			text: "# out: $1.out.js, compress: true, sourcemap: true\nx = 1\n",
			expected: Directive{
				Out:       "$1.out.js",
				Compress:  "true",
				SourceMap: "true",
			},
			found: true,
		},
		{
			name:     "test directive after shebang",
			text:     "#!/usr/bin/env coffee\n# bare: false, header: true\nx = 1\n",
			expected: Directive{Bare: "false", Header: "true"},
			found:    true,
		},
		{
			name:     "test crlf line endings",
			text:     "# inlinemap: true\r\nx = 1\r\n",
			expected: Directive{InlineMap: "true"},
			found:    true,
		},
		{
			name:     "test first match wins",
			text:     "# out: a/, out: b/\n",
			expected: Directive{Out: "a/"},
			found:    true,
		},
		{
			name:     "test ignores plain comment",
			text:     "# this file sets up the router\nx = 1\n",
			expected: Directive{},
			found:    false,
		},
		{
			name:     "test ignores key inside other word",
			text:     "# layout: grid\n",
			expected: Directive{},
			found:    false,
		},
		{
			name:     "test ignores block comment",
			text:     "### out: dist/\n###\n",
			expected: Directive{},
			found:    false,
		},
		{
			name:     "test ignores directive on second line without shebang",
			text:     "x = 1\n# out: dist/\n",
			expected: Directive{},
			found:    false,
		},
		{
			name:     "test shebang only",
			text:     "#!/usr/bin/env coffee",
			expected: Directive{},
			found:    false,
		},
		{
			name:     "test empty file",
			text:     "",
			expected: Directive{},
			found:    false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, found := ParseDirective(tc.text)
			require.Equal(t, tc.found, found)
			require.Equal(t, tc.expected, got)
		})
	}
}

func TestDirectiveOverridesSettings(t *testing.T) {
	settings := Settings{
		Output:    "$/settings/",
		Bare:      false,
		Header:    true,
		SourceMap: true,
		InlineMap: "true",
	}

	params, inline := SelectParams("# out: $1.out.js, compress: true\nx = 1\n", settings)
	require.True(t, inline)
	require.Equal(t, Params{
		Output:   "$1.out.js",
		Bare:     true,
		Compress: true,
	}, params)
}

func TestSettingsUsedWithoutDirective(t *testing.T) {
	settings := Settings{
		Output:    "dist/",
		Compress:  "true",
		SourceMap: true,
	}

	params, inline := SelectParams("x = 1\n", settings)
	require.False(t, inline)
	require.Equal(t, Params{
		Output:    "dist/",
		Bare:      true,
		Compress:  true,
		SourceMap: true,
	}, params)
}
