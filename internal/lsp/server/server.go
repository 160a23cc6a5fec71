package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jwtly10/coffeesave"
	"github.com/jwtly10/coffeesave/internal/compiler"
	"github.com/jwtly10/coffeesave/internal/config"
	iLsp "github.com/jwtly10/coffeesave/internal/lsp"
	"github.com/sourcegraph/go-lsp"
	"github.com/sourcegraph/jsonrpc2"
)

const eventQueueSize = 256

type Options struct {
	// Builds the compiler for a workspace, defaults to the coffee binary
	NewCompiler iLsp.CompilerFactory
	// Minifier for compressed output, defaults to esbuild
	Minifier compiler.Minifier
	// How long the client may take to answer a workspace/configuration request
	ConfigTimeout time.Duration
	// Notifications waiting for the worker, more are skipped with a warning
	EventQueueSize int
}

var DefaultServerOptions = Options{
	ConfigTimeout:  5 * time.Second,
	EventQueueSize: eventQueueSize,
}

func (o Options) Validate() error {
	if o.ConfigTimeout < 0 {
		return fmt.Errorf("config timeout must not be negative")
	}
	if o.EventQueueSize < 0 {
		return fmt.Errorf("event queue size must not be negative")
	}
	return nil
}

// Server speaks LSP to the editor and feeds save, configuration and
// workspace folder notifications to the save service.
//
// Notifications are handled one at a time on a dedicated goroutine, so the
// service can call back into the client (workspace/configuration) while the
// connection keeps reading.
type Server struct {
	conn atomic.Pointer[jsonrpc2.Conn]
	opts Options

	service *iLsp.SaveService
	events  chan func(context.Context)

	// settings pushed by the client through initializationOptions or didChangeConfiguration
	mu                    sync.RWMutex
	pushed                *coffeesave.Settings
	supportsConfiguration bool

	shutdownRequested atomic.Bool

	// tracks canceled request IDs
	cancelMap sync.Map
	// tracking for method request counts
	trackRequestCount sync.Map
}

func NewServer(options Options) (*Server, error) {
	if err := options.Validate(); err != nil {
		return nil, fmt.Errorf("invalid server options: %w", err)
	}
	if options.ConfigTimeout == 0 {
		options.ConfigTimeout = DefaultServerOptions.ConfigTimeout
	}
	if options.EventQueueSize == 0 {
		options.EventQueueSize = DefaultServerOptions.EventQueueSize
	}

	s := &Server{
		opts:   options,
		events: make(chan func(context.Context), options.EventQueueSize),
	}

	service, err := iLsp.NewSaveService(iLsp.SaveServiceOptions{
		Settings:    s,
		Notifier:    s,
		NewCompiler: options.NewCompiler,
		Minifier:    options.Minifier,
	})
	if err != nil {
		return nil, err
	}
	s.service = service

	return s, nil
}

// Serve runs the server on rwc until the client disconnects or ctx is done
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	conn := jsonrpc2.NewConn(
		ctx,
		jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{}),
		jsonrpc2.HandlerWithError(s.Handle),
	)
	s.conn.CompareAndSwap(nil, conn)

	go s.run(ctx)

	select {
	case <-conn.DisconnectNotify():
	case <-ctx.Done():
		conn.Close()
	}
	slog.Info("connection closed")
}

// ExitCode is the process exit code once the connection is gone, 0 only after a shutdown request
func (s *Server) ExitCode() int {
	if s.shutdownRequested.Load() {
		return 0
	}
	return 1
}

func (s *Server) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev := <-s.events:
			ev(ctx)
		}
	}
}

// enqueue hands ev to the worker without blocking the connection. When the
// queue is full ev is skipped and the user is told what did not happen.
func (s *Server) enqueue(ctx context.Context, method, what string, ev func(context.Context)) {
	select {
	case s.events <- ev:
	default:
		slog.Warn("event queue full, dropping notification", "method", method, "skipped", what)
		s.Warning(ctx, fmt.Sprintf("coffeesave is busy, skipped %s", what))
	}
}

func (s *Server) Handle(ctx context.Context, conn *jsonrpc2.Conn, req *jsonrpc2.Request) (result interface{}, err error) {
	s.conn.CompareAndSwap(nil, conn)

	slog.Debug("received request", "method", req.Method, "id", req.ID)
	reqCount, _ := s.trackRequestCount.LoadOrStore(req.Method, 0)
	if count, ok := reqCount.(int); ok {
		s.trackRequestCount.Store(req.Method, count+1)
	}

	if _, ok := s.cancelMap.Load(req.ID.String()); ok {
		slog.Debug("request was canceled", "id", req.ID)
		s.cancelMap.Delete(req.ID.String())
		return nil, nil
	}

	switch req.Method {
	case "initialize":
		slog.Info("initializing lsp server")

		var params initializeParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		return s.initialize(params)

	case "initialized":
		slog.Info("server initialized", "folders", s.service.Folders().List())
		return nil, nil

	case "shutdown":
		slog.Info("shutting down")

		s.shutdownRequested.Store(true)
		s.service.Shutdown()
		s.printDebugStats()

		return nil, nil

	case "exit":
		slog.Info("exiting")
		return nil, conn.Close()

	case "textDocument/didSave":
		var params didSaveTextDocumentParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}

		path, err := iLsp.URIToPath(params.TextDocument.URI)
		if err != nil {
			return nil, err
		}

		s.enqueue(ctx, req.Method, "compiling "+filepath.Base(path), func(ctx context.Context) {
			var text string
			if params.Text != nil {
				text = *params.Text
			} else {
				// client ignored includeText
				content, err := os.ReadFile(path)
				if err != nil {
					slog.Error("failed to read saved file", "path", path, "error", err)
					return
				}
				text = string(content)
			}
			s.service.DidSave(ctx, iLsp.SaveEvent{Path: path, Text: text})
		})
		return nil, nil

	case "workspace/didChangeConfiguration":
		var params lsp.DidChangeConfigurationParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}

		if params.Settings != nil {
			settings, err := config.Decode(section(params.Settings))
			if err != nil {
				slog.Warn("ignoring pushed settings", "error", err)
			} else {
				s.setPushed(&settings)
			}
		}

		s.enqueue(ctx, req.Method, "reloading settings", s.service.DidChangeConfiguration)
		return nil, nil

	case "workspace/didChangeWorkspaceFolders":
		var params didChangeWorkspaceFoldersParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}

		added := folderPaths(params.Event.Added)
		removed := folderPaths(params.Event.Removed)
		s.enqueue(ctx, req.Method, "updating workspace folders", func(ctx context.Context) {
			s.service.DidChangeWorkspaceFolders(ctx, added, removed)
		})
		return nil, nil

	case "$/cancelRequest":
		var params lsp.CancelParams
		if err := unmarshalParams(req, &params); err != nil {
			return nil, err
		}
		slog.Debug("canceling request", "id", params.ID)
		s.cancelMap.Store(params.ID.String(), struct{}{})
		return nil, nil

	default:
		if req.Notif {
			return nil, nil
		}
		return nil, &jsonrpc2.Error{
			Code:    jsonrpc2.CodeMethodNotFound,
			Message: fmt.Sprintf("method not supported: %s", req.Method),
		}
	}
}

func (s *Server) initialize(params initializeParams) (*initializeResult, error) {
	s.mu.Lock()
	s.supportsConfiguration = params.Capabilities.Workspace.Configuration
	s.mu.Unlock()

	if params.InitializationOptions != nil {
		settings, err := config.Decode(section(params.InitializationOptions))
		if err != nil {
			slog.Warn("ignoring initialization options", "error", err)
		} else {
			s.setPushed(&settings)
		}
	}

	if len(params.WorkspaceFolders) > 0 {
		s.service.Folders().Add(folderPaths(params.WorkspaceFolders)...)
	} else if params.RootURI != "" || params.RootPath != "" {
		root, err := iLsp.URIToPath(params.Root())
		if err != nil {
			return nil, fmt.Errorf("invalid root uri: %w", err)
		}
		s.service.Folders().Add(root)
	}

	return &initializeResult{
		Capabilities: serverCapabilities{
			ServerCapabilities: lsp.ServerCapabilities{
				TextDocumentSync: &lsp.TextDocumentSyncOptionsOrKind{
					Options: &lsp.TextDocumentSyncOptions{
						Change: lsp.TDSKNone,
						Save:   &lsp.SaveOptions{IncludeText: true},
					},
				},
			},
			Workspace: workspaceServerCapabilities{
				WorkspaceFolders: workspaceFoldersServerCapabilities{
					Supported:           true,
					ChangeNotifications: true,
				},
			},
		},
		ServerInfo: serverInfo{
			Name:    "coffeesave-ls",
			Version: coffeesave.VERSION,
		},
	}, nil
}

// Settings looks up the settings of a workspace root.
//
// The client is asked first when it supports workspace/configuration, then settings
// pushed by the client are used, and finally the .coffeesave.yaml of the workspace.
func (s *Server) Settings(ctx context.Context, root string) (coffeesave.Settings, error) {
	s.mu.RLock()
	ask := s.supportsConfiguration
	pushed := s.pushed
	s.mu.RUnlock()

	if conn := s.conn.Load(); ask && conn != nil {
		ctx, cancel := context.WithTimeout(ctx, s.opts.ConfigTimeout)
		defer cancel()

		var result lsp.ConfigurationResult
		err := conn.Call(ctx, "workspace/configuration", lsp.ConfigurationParams{
			Items: []lsp.ConfigurationItem{{
				ScopeURI: string(iLsp.PathToURI(root)),
				Section:  coffeesave.Section,
			}},
		}, &result)
		if err != nil {
			return coffeesave.Settings{}, fmt.Errorf("workspace/configuration: %w", err)
		}

		if len(result) > 0 && result[0] != nil {
			settings, err := config.Decode(result[0])
			if err != nil {
				return coffeesave.Settings{}, err
			}
			return config.ApplyEnv(settings), nil
		}
	}

	if pushed != nil {
		return config.ApplyEnv(*pushed), nil
	}

	return config.FileSource{}.Settings(ctx, root)
}

func (s *Server) setPushed(settings *coffeesave.Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pushed = settings
}

func (s *Server) Success(ctx context.Context, msg string) {
	s.notify(ctx, "window/logMessage", lsp.LogMessageParams{Type: lsp.Info, Message: msg})
}

func (s *Server) Info(ctx context.Context, msg string) {
	s.notify(ctx, "window/showMessage", lsp.ShowMessageParams{Type: lsp.Info, Message: msg})
}

func (s *Server) Warning(ctx context.Context, msg string) {
	s.notify(ctx, "window/showMessage", lsp.ShowMessageParams{Type: lsp.MTWarning, Message: msg})
}

func (s *Server) Error(ctx context.Context, msg string) {
	s.notify(ctx, "window/showMessage", lsp.ShowMessageParams{Type: lsp.MTError, Message: msg})
}

func (s *Server) notify(ctx context.Context, method string, params interface{}) {
	conn := s.conn.Load()
	if conn == nil {
		slog.Warn("no client connection, dropping message", "method", method, "params", params)
		return
	}
	if err := conn.Notify(ctx, method, params); err != nil {
		slog.Error("failed to notify client", "method", method, "error", err)
	}
}

func (s *Server) printDebugStats() {
	s.trackRequestCount.Range(func(key, value interface{}) bool {
		msg := fmt.Sprintf("Method: %-40s Count: %d", key.(string), value.(int))
		slog.Debug(msg)
		return true
	})
}

func unmarshalParams(req *jsonrpc2.Request, v interface{}) error {
	if req.Params == nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: "missing params"}
	}
	if err := json.Unmarshal(*req.Params, v); err != nil {
		return &jsonrpc2.Error{Code: jsonrpc2.CodeInvalidParams, Message: err.Error()}
	}
	return nil
}

// section picks the coffeesave section out of a settings object when the client sent the whole tree
func section(settings interface{}) interface{} {
	if m, ok := settings.(map[string]interface{}); ok {
		if sub, ok := m[coffeesave.Section]; ok {
			return sub
		}
	}
	return settings
}

func folderPaths(folders []WorkspaceFolder) []string {
	paths := make([]string, 0, len(folders))
	for _, f := range folders {
		p, err := iLsp.URIToPath(f.URI)
		if err != nil {
			slog.Warn("ignoring workspace folder", "uri", f.URI, "error", err)
			continue
		}
		paths = append(paths, p)
	}
	return paths
}
