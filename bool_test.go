package coffeesave

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToBool(t *testing.T) {
	tests := []struct {
		name  string
		value any
		def   bool
		want  bool
	}{
		{name: "string true", value: "true", def: false, want: true},
		{name: "string false", value: "false", def: true, want: false},
		{name: "nil uses default true", value: nil, def: true, want: true},
		{name: "nil uses default false", value: nil, def: false, want: false},
		{name: "empty string uses default", value: "", def: true, want: true},
		{name: "zero", value: 0, def: true, want: false},
		{name: "non zero int", value: 3, def: false, want: true},
		{name: "json number zero", value: float64(0), def: true, want: false},
		{name: "json number", value: float64(1), def: false, want: true},
		{name: "bool literal", value: true, def: false, want: true},
		{name: "bool literal false", value: false, def: true, want: false},
		{name: "unparseable string", value: "sometimes", def: true, want: false},
		{name: "numeric string", value: "1", def: true, want: false},
		{name: "capitalised true", value: "True", def: true, want: false},
		{name: "upper case true", value: "TRUE", def: false, want: false},
		{name: "short true", value: "t", def: true, want: false},
		{name: "yes", value: "yes", def: true, want: false},
		{name: "other value is truthy", value: map[string]any{}, def: false, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToBool(tt.value, tt.def))
		})
	}
}
