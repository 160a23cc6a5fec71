package server

import (
	"errors"
	"io"
	"os"
)

// RWC is the byte stream a language server session runs over, a reader from
// the editor paired with a writer back to it.
type RWC struct {
	r io.ReadCloser
	w io.WriteCloser
}

// NewStdRWC speaks over the process stdio, the transport editors launch coffeesave-ls with
func NewStdRWC() *RWC {
	return NewRWC(os.Stdin, os.Stdout)
}

// NewRWC pairs any reader and writer, for example the ends of two io.Pipes
func NewRWC(r io.ReadCloser, w io.WriteCloser) *RWC {
	return &RWC{r: r, w: w}
}

func (rw *RWC) Read(p []byte) (int, error)  { return rw.r.Read(p) }
func (rw *RWC) Write(p []byte) (int, error) { return rw.w.Write(p) }

// Close closes both halves, a failing reader does not leave the writer open
func (rw *RWC) Close() error {
	var errs []error
	for _, c := range []io.Closer{rw.r, rw.w} {
		if c == nil {
			continue
		}
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
