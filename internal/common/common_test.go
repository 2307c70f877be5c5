package common

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserError(t *testing.T) {
	err := NewUserError("could not read ledger", ErrNoRecords)
	wrapped := fmt.Errorf("import: %w", err)

	assert.Equal(t, "could not read ledger: no ledger records", err.Error())
	assert.ErrorIs(t, wrapped, ErrNoRecords)
	assert.Equal(t, "could not read ledger", UserMessage(wrapped))
	assert.Equal(t, "plain", UserMessage(errors.New("plain")))
	assert.Equal(t, "only message", NewUserError("only message", nil).Error())
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name    string
		want    slog.Level
		wantErr bool
	}{
		{name: "debug", want: slog.LevelDebug},
		{name: "INFO", want: slog.LevelInfo},
		{name: "", want: slog.LevelInfo},
		{name: "warning", want: slog.LevelWarn},
		{name: "error", want: slog.LevelError},
		{name: "verbose", want: slog.LevelInfo, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := ParseLevel(tt.name)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidConfig)
			} else {
				require.NoError(t, err)
			}
			assert.Equal(t, tt.want, level)
		})
	}
}

func TestSetupLogger(t *testing.T) {
	previous := slog.Default()
	defer slog.SetDefault(previous)

	var buf bytes.Buffer
	SetupLogger(&buf, slog.LevelInfo, "json")

	LogDebug("hidden", Fields{"a": 1})
	LogInfo("loaded", Fields{"rows": 3})
	LogError(errors.New("boom"), "failed", nil)

	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.Len(t, lines, 2)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[0], &entry))
	assert.Equal(t, "loaded", entry["msg"])
	assert.InDelta(t, 3.0, entry["rows"], 0)

	require.NoError(t, json.Unmarshal(lines[1], &entry))
	assert.Equal(t, "boom", entry["error"])
}
