package server

import "github.com/sourcegraph/go-lsp"

// The types below are parts of the LSP 3.17 specification that
// https://github.com/sourcegraph/go-lsp does not cover.

// WorkspaceFolder https://microsoft.github.io/language-server-protocol/specifications/lsp/3.17/specification/#workspaceFolder
type WorkspaceFolder struct {
	URI  lsp.DocumentURI `json:"uri"`
	Name string          `json:"name"`
}

type initializeParams struct {
	lsp.InitializeParams

	// The workspace folders configured in the client when the server starts.
	// Null when the client does not support workspace folders.
	WorkspaceFolders []WorkspaceFolder `json:"workspaceFolders,omitempty"`
}

type workspaceFoldersServerCapabilities struct {
	Supported           bool `json:"supported"`
	ChangeNotifications bool `json:"changeNotifications"`
}

type workspaceServerCapabilities struct {
	WorkspaceFolders workspaceFoldersServerCapabilities `json:"workspaceFolders"`
}

type serverCapabilities struct {
	lsp.ServerCapabilities

	Workspace workspaceServerCapabilities `json:"workspace"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   serverInfo         `json:"serverInfo"`
}

// didSaveTextDocumentParams carries the saved text when the server asks for includeText
type didSaveTextDocumentParams struct {
	TextDocument lsp.TextDocumentIdentifier `json:"textDocument"`
	Text         *string                    `json:"text,omitempty"`
}

type workspaceFoldersChangeEvent struct {
	Added   []WorkspaceFolder `json:"added"`
	Removed []WorkspaceFolder `json:"removed"`
}

type didChangeWorkspaceFoldersParams struct {
	Event workspaceFoldersChangeEvent `json:"event"`
}
