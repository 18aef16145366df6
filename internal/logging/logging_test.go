package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, slog.LevelInfo, cfg.Level)
	assert.False(t, cfg.JSON)
}

func TestDebugConfig(t *testing.T) {
	cfg := DebugConfig()
	assert.Equal(t, slog.LevelDebug, cfg.Level)
	assert.True(t, cfg.JSON)
	assert.True(t, cfg.AddSource)
}

func TestInitSetsDebugFlag(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, Output: &buf})
	assert.True(t, Debug)

	Init(QuietConfig(&buf))
	assert.False(t, Debug)
	Info("hidden")
	assert.Empty(t, buf.String())
	Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestJSONOutputMasksCredentials(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: slog.LevelInfo, JSON: true, Output: &buf})

	Info("login", "token", "eyJhbGciOiJIUzI1NiJ9.payload.sig", KeyUserID, "u1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "login", line["msg"])
	assert.Equal(t, "********", line["token"])
	assert.Equal(t, "u1", line[KeyUserID])
}

func TestContextLoggingCarriesRequestID(t *testing.T) {
	t.Cleanup(func() { Init(DefaultConfig()) })

	var buf bytes.Buffer
	Init(Config{Level: slog.LevelDebug, JSON: true, Output: &buf})

	ctx := WithRequestID(context.Background(), "req-42")
	WarnContext(ctx, "fetch failed", KeyEventID, "ev1")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "req-42", line[KeyRequestID])
	assert.Equal(t, "ev1", line[KeyEventID])
}

func TestRequestIDHelpers(t *testing.T) {
	assert.Equal(t, "", RequestIDFromContext(context.Background()))
	assert.Equal(t, "", RequestIDFromContext(nil)) //nolint:staticcheck

	ctx := EnsureRequestID(context.Background())
	id := RequestIDFromContext(ctx)
	assert.Len(t, id, 36)

	assert.Equal(t, ctx, EnsureRequestID(ctx))
	assert.NotEqual(t, GenerateRequestID(), GenerateRequestID())
}

func TestIsSensitiveField(t *testing.T) {
	tests := []struct {
		field string
		want  bool
	}{
		{"token", true},
		{"Authorization", true},
		{"new_password", true},
		{"bearer_value", true},
		{"event_id", false},
		{"endpoint", false},
	}

	for _, tt := range tests {
		t.Run(tt.field, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSensitiveField(tt.field))
		})
	}
}

func TestMaskHelpers(t *testing.T) {
	assert.Equal(t, "", MaskValue(""))
	assert.Equal(t, "***", MaskValue("abc"))
	assert.Equal(t, "********", MaskValue("a-very-long-secret"))

	assert.Equal(t, "eyJhbG***", MaskToken("eyJhbGciOiJIUzI1NiJ9"))
	assert.Equal(t, "****", MaskToken("abcd"))

	assert.Equal(t, "http://localhost:5000/api/maintenance/with/a/long/path", MaskURL("http://localhost:5000/api/maintenance/with/a/long/path"))
	assert.Equal(t, "https://hooks.slack.com/servic***", MaskURL("https://hooks.slack.com/services/T000/B000/XXXX"))
}
