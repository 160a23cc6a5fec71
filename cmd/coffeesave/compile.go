package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/jwtly10/coffeesave/internal/cli"
)

type CompileCmd struct {
	Paths []string `arg:"" name:"path" help:"Source files or directories to compile" type:"existingpath"`
	Root  string   `short:"r" help:"Workspace root that output templates resolve against" type:"existingdir"`
}

func (c *CompileCmd) Run(g *Global, _ *CLI) error {
	p := cli.NewProcessor(cli.ProcessorOptions{})

	var errs []error
	for _, path := range c.Paths {
		results, err := p.ProcessPath(g.Context, path, c.Root)
		for _, r := range results {
			fmt.Printf("Compiled %s to %s (%s)\n", r.Path, r.OutPath, r.Duration.Round(time.Millisecond))
			if r.Backup != "" {
				fmt.Printf("  backed up previous output to %s\n", r.Backup)
			}
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", path, err))
		}
	}

	return errors.Join(errs...)
}
