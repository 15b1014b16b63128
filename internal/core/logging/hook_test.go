package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextHook_Run(t *testing.T) {
	tests := []struct {
		name    string
		ctx     context.Context
		present []string
		absent  []string
	}{
		{
			name:    "session and turn",
			ctx:     WithTurnID(WithSessionID(context.Background(), "sess-123"), "turn-9"),
			present: []string{"session_id", "turn_id"},
		},
		{
			name:    "session only",
			ctx:     WithSessionID(context.Background(), "sess-123"),
			present: []string{"session_id"},
			absent:  []string{"turn_id"},
		},
		{
			name:   "no values",
			ctx:    context.Background(),
			absent: []string{"session_id", "turn_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			logger := zerolog.New(&buf).Hook(ContextHook{})
			logger.Info().Ctx(tt.ctx).Msg("test")

			var entry map[string]any
			require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))

			for _, key := range tt.present {
				assert.Contains(t, entry, key)
			}
			for _, key := range tt.absent {
				assert.NotContains(t, entry, key)
			}
		})
	}
}
