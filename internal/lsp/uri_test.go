package lsp

import (
	"path/filepath"
	"testing"

	"github.com/sourcegraph/go-lsp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURIToPath(t *testing.T) {
	tests := []struct {
		name    string
		uri     lsp.DocumentURI
		want    string
		wantErr bool
	}{
		{
			name: "unix path",
			uri:  "file:///home/u/ws/a.coffee",
			want: filepath.FromSlash("/home/u/ws/a.coffee"),
		},
		{
			name: "escaped drive letter",
			uri:  "file:///c%3A/ws/src/main.coffee",
			want: filepath.FromSlash("c:/ws/src/main.coffee"),
		},
		{
			name: "upper case drive letter",
			uri:  "file:///D:/ws/a.coffee",
			want: filepath.FromSlash("D:/ws/a.coffee"),
		},
		{
			name: "escaped spaces",
			uri:  "file:///home/u/my%20ws/a.coffee",
			want: filepath.FromSlash("/home/u/my ws/a.coffee"),
		},
		{
			name:    "other scheme",
			uri:     "untitled:Untitled-1",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := URIToPath(tt.uri)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPathToURIRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		path string
		uri  lsp.DocumentURI
	}{
		{name: "unix path", path: "/home/u/ws/a.coffee", uri: "file:///home/u/ws/a.coffee"},
		{name: "drive letter", path: "c:/ws/a.coffee", uri: "file:///c:/ws/a.coffee"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.FromSlash(tt.path)
			uri := PathToURI(path)
			assert.Equal(t, tt.uri, uri)

			back, err := URIToPath(uri)
			require.NoError(t, err)
			assert.Equal(t, path, back)
		})
	}
}
