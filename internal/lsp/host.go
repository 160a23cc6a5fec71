package lsp

import (
	"context"

	"github.com/jwtly10/coffeesave"
)

// SaveEvent is a file saved by the host
type SaveEvent struct {
	// Absolute filesystem path of the saved file
	Path string
	// Full text of the file at save time
	Text string
}

// Host is the set of lifecycle events the editor (or the watcher) delivers.
//
// Events are expected one at a time, each handled to completion before the next.
type Host interface {
	DidSave(ctx context.Context, ev SaveEvent)
	DidChangeConfiguration(ctx context.Context)
	DidChangeWorkspaceFolders(ctx context.Context, added, removed []string)
}

// Notifier shows messages to the user
type Notifier interface {
	// Success is a short lived confirmation, e.g. a status bar message
	Success(ctx context.Context, msg string)
	Info(ctx context.Context, msg string)
	Warning(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// SettingsSource looks up the settings of a workspace root
type SettingsSource interface {
	Settings(ctx context.Context, root string) (coffeesave.Settings, error)
}
