package compiler

import (
	"context"
	"fmt"
	"strings"

	"github.com/evanw/esbuild/pkg/api"
)

// Esbuild minifies javascript with esbuild's transform API
type Esbuild struct{}

func NewEsbuild() *Esbuild {
	return &Esbuild{}
}

func (e *Esbuild) Minify(ctx context.Context, code string) (Minified, error) {
	if err := ctx.Err(); err != nil {
		return Minified{}, err
	}

	result := api.Transform(code, api.TransformOptions{
		Loader:            api.LoaderJS,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
	})

	if len(result.Errors) > 0 {
		msgs := make([]string, 0, len(result.Errors))
		for _, m := range result.Errors {
			if m.Location != nil {
				msgs = append(msgs, fmt.Sprintf("%d:%d: %s", m.Location.Line, m.Location.Column, m.Text))
				continue
			}
			msgs = append(msgs, m.Text)
		}
		return Minified{}, fmt.Errorf("%w: %s", ErrMinify, strings.Join(msgs, "; "))
	}

	return Minified{Code: string(result.Code)}, nil
}
