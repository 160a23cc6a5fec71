package lsp

import (
	"fmt"
	"net/url"
	"path/filepath"
	"regexp"

	"github.com/sourcegraph/go-lsp"
)

// drivePathRegex matches the path of a file URI that names a windows drive, /c:/...
var drivePathRegex = regexp.MustCompile(`^/[A-Za-z]:`)

// URIToPath converts an LSP URI to a filesystem path
func URIToPath(uri lsp.DocumentURI) (string, error) {
	u, err := url.Parse(string(uri))
	if err != nil {
		return "", err
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}

	p := u.Path
	if drivePathRegex.MatchString(p) {
		p = p[1:]
	}
	return filepath.FromSlash(p), nil
}

// PathToURI converts a filesystem path to an LSP URI
func PathToURI(path string) lsp.DocumentURI {
	p := filepath.ToSlash(path)
	if drivePathRegex.MatchString("/" + p) {
		p = "/" + p
	}
	u := url.URL{Scheme: "file", Path: p}
	return lsp.DocumentURI(u.String())
}
