package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name string
		cfg  LogConfig
	}{
		{"defaults", DefaultLogConfig()},
		{"console format", LogConfig{Level: "debug", Format: "console"}},
		{"unknown level falls back", LogConfig{Level: "chatty", Format: "json"}},
		{"empty output paths", LogConfig{Level: "info", Format: "json", OutputPaths: nil}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := NewLogger(tt.cfg)
			assert.NotNil(t, logger)
			logger.Info("logger constructed")
		})
	}
}
