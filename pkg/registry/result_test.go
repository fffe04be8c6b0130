package registry_test

import (
	"errors"
	"testing"

	"github.com/aretw0/parlance/pkg/registry"
	"github.com/stretchr/testify/assert"
)

func TestIsEmpty(t *testing.T) {
	var nilMap map[string]any
	var nilPtr *int
	for _, v := range []any{nil, "", []string{}, map[string]any{}, nilMap, nilPtr} {
		assert.True(t, registry.IsEmpty(v), "%#v", v)
	}
	for _, v := range []any{"x", 0, false, []int{1}, struct{}{}} {
		assert.False(t, registry.IsEmpty(v), "%#v", v)
	}
}

func TestFormatResult(t *testing.T) {
	tests := []struct {
		in   any
		want string
	}{
		{"plain", "plain"},
		{[]byte("bytes"), "bytes"},
		{errors.New("boom"), "boom"},
		{42, "42"},
		{3.5, "3.5"},
		{map[string]any{"a": 1}, `{"a":1}`},
		{[]string{"x", "y"}, `["x","y"]`},
		{struct {
			Name string `json:"name"`
		}{"n"}, `{"name":"n"}`},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, registry.FormatResult(tt.in))
	}
}
