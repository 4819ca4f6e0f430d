package infra

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor/models"

	"github.com/seenimoa/researchdesk/internal/config"
)

func TestWriterConfig(t *testing.T) {
	tests := []struct {
		format string
		want   models.OutputFormat
	}{
		{"", ""},
		{"text", ""},
		{"json", models.OutputFormatJSON},
		{"logfmt", models.OutputFormatLogfmt},
	}
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			wc := writerConfig(config.LoggingConfig{Format: tt.format})
			assert.Equal(t, models.LogWriterTypeConsole, wc.Type)
			assert.Equal(t, tt.want, wc.OutputType)
		})
	}
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"text", "json"} {
		assert.NotNil(t, NewLogger(config.LoggingConfig{Level: "debug", Format: format}))
	}
}
