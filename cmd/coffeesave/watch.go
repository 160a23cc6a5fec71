package main

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/jwtly10/coffeesave/internal/cli"
	"github.com/jwtly10/coffeesave/internal/config"
	"github.com/jwtly10/coffeesave/internal/lsp"
)

type WatchCmd struct {
	Root     string        `arg:"" optional:"" default:"." help:"Workspace root to watch" type:"existingdir"`
	Debounce time.Duration `help:"Quiet period before a changed file is compiled" default:"200ms"`
}

func (w *WatchCmd) Run(g *Global, _ *CLI) error {
	root, err := filepath.Abs(w.Root)
	if err != nil {
		return fmt.Errorf("resolve root: %w", err)
	}

	svc, err := lsp.NewSaveService(lsp.SaveServiceOptions{
		Settings: config.FileSource{},
		Notifier: &cli.LogNotifier{},
	})
	if err != nil {
		return err
	}
	svc.DidChangeWorkspaceFolders(g.Context, []string{root}, nil)

	watcher, err := cli.NewWatcher(root, svc, cli.WatcherOptions{Debounce: w.Debounce})
	if err != nil {
		return err
	}

	return watcher.Run(g.Context)
}
