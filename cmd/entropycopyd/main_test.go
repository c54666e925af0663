package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want []string
	}{
		{"none", nil, []string{}},
		{"dash", []string{"-pipe", "alpha"}, []string{"--pipe", "alpha"}},
		{"slash upper", []string{"/PIPE", "beta"}, []string{"--pipe", "beta"}},
		{"last wins", []string{"-pipe", "one", "/Pipe", "two"}, []string{"--pipe", "two"}},
		{"trailing switch ignored", []string{"-pipe"}, []string{}},
		{"trailing after value", []string{"-pipe", "keep", "/pipe"}, []string{"--pipe", "keep"}},
		{"other flags kept", []string{"--config", "c.toml", "-pipe", "x", "--diagnostic"}, []string{"--config", "c.toml", "--diagnostic", "--pipe", "x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, normalizeArgs(tt.args))
		})
	}
}

func TestRootCommandAcceptsNormalizedPipe(t *testing.T) {
	cmd := newRootCommand()
	a := assert.New(t)
	a.NoError(cmd.ParseFlags(normalizeArgs([]string{"/pipe", "custom"})))
	value, err := cmd.Flags().GetString("pipe")
	a.NoError(err)
	a.Equal("custom", value)
}
