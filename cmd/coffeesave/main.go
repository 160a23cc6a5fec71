package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/jwtly10/coffeesave"
)

// Global is shared by every subcommand
type Global struct {
	Context context.Context
}

type CLI struct {
	Debug   bool             `short:"d" help:"Enable debug logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Compile CompileCmd `cmd:"" help:"Compile CoffeeScript files or directories once"`
	Watch   WatchCmd   `cmd:"" help:"Compile CoffeeScript files whenever they change"`
}

// AfterApply runs after flag parsing; setup logging once.
func (c *CLI) AfterApply() error {
	level := slog.LevelInfo
	if c.Debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func main() {
	_ = godotenv.Load()

	var cli CLI
	kctx := kong.Parse(&cli,
		kong.Name("coffeesave"),
		kong.Description("Compile CoffeeScript on save, driven by per-file directives or workspace settings."),
		kong.UsageOnError(),
		kong.Vars{"version": coffeesave.VERSION},
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := kctx.Run(&Global{Context: ctx}, &cli); err != nil {
		slog.Error("command failed", "command", kctx.Command(), "error", err)
		stop()
		os.Exit(1)
	}
}
