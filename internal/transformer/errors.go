package transformer

import "fmt"

// Stage names the pipeline step an [Error] came from
type Stage string

const (
	StageResolve   Stage = "resolve"
	StageCompile   Stage = "compile"
	StageSourceMap Stage = "sourcemap"
	StageMinify    Stage = "minify"
	StageBackup    Stage = "backup"
	StageMkdir     Stage = "mkdir"
	StageWrite     Stage = "write"
)

type Error struct {
	Stage Stage
	// The file or directory the stage was working on
	Path string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Stage, e.Path, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}
