package lsp

import "fmt"

// State is what the save service is busy with
type State int32

const (
	StateIdle State = iota
	StateReloadingConfig
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "Idle"
	case StateReloadingConfig:
		return "ReloadingConfig"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}
