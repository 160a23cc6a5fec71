package lsp

import (
	"path/filepath"
	"slices"
	"sync"

	"github.com/jwtly10/coffeesave"
)

// Folders tracks the workspace folders open in the host
type Folders struct {
	mu      sync.RWMutex
	folders []string
}

func NewFolders(folders ...string) *Folders {
	f := &Folders{}
	f.Add(folders...)
	return f
}

func (f *Folders) Add(folders ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, folder := range folders {
		folder = filepath.Clean(folder)
		if !slices.Contains(f.folders, folder) {
			f.folders = append(f.folders, folder)
		}
	}
}

func (f *Folders) Remove(folders ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, folder := range folders {
		folder = filepath.Clean(folder)
		f.folders = slices.DeleteFunc(f.folders, func(existing string) bool {
			return existing == folder
		})
	}
}

// RootFor returns the innermost workspace folder containing path
func (f *Folders) RootFor(path string) (string, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return coffeesave.WorkspaceRootFor(path, f.folders)
}

func (f *Folders) List() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()

	return slices.Clone(f.folders)
}
