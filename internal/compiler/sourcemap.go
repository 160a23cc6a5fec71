package compiler

import (
	"encoding/json"
	"fmt"
)

// SourceMap is a revision 3 source map as emitted by the compiler
type SourceMap struct {
	Version        int      `json:"version"`
	File           string   `json:"file"`
	SourceRoot     string   `json:"sourceRoot"`
	Sources        []string `json:"sources"`
	SourcesContent []string `json:"sourcesContent,omitempty"`
	Names          []string `json:"names"`
	Mappings       string   `json:"mappings"`
}

// ParseSourceMap decodes a JSON source map
func ParseSourceMap(data []byte) (*SourceMap, error) {
	var sm SourceMap
	if err := json.Unmarshal(data, &sm); err != nil {
		return nil, fmt.Errorf("decoding source map: %w", err)
	}
	if sm.Version != 3 {
		return nil, fmt.Errorf("unsupported source map version %d", sm.Version)
	}
	return &sm, nil
}

// Generate serializes the map for the given output file and sources.
//
// The compiler only knows the temporary paths it worked on, so file and sources
// are always replaced.
func (sm *SourceMap) Generate(generatedFile string, sourceFiles []string) ([]byte, error) {
	out := *sm
	out.File = generatedFile
	out.Sources = append([]string(nil), sourceFiles...)
	if out.Names == nil {
		out.Names = []string{}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding source map: %w", err)
	}
	return data, nil
}
