package logx_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/Abraxas-365/authcore/pkg/logx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewLogger(&logx.Config{
		Level:  logx.LevelInfo,
		Format: logx.FormatJSON,
		Output: &buf,
	})

	logger.WithFields(logx.Fields{"audit_event": "login_attempt"}).
		WithError(errors.New("bad credentials")).
		Warn("Audit: login attempt")

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "WARN", line["level"])
	assert.Equal(t, "login_attempt", line["audit_event"])
	assert.Equal(t, "bad credentials", line["error"])
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	logger := logx.NewLogger(&logx.Config{
		Level:      logx.LevelWarn,
		Format:     logx.FormatConsole,
		TimeFormat: "15:04:05",
		Output:     &buf,
	})

	logger.WithField("k", "v").Info("hidden")
	assert.Zero(t, buf.Len())

	logger.WithField("k", "v").Error("shown")
	assert.Contains(t, buf.String(), "shown")
	assert.Contains(t, buf.String(), "k=v")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, logx.LevelDebug, logx.ParseLevel("debug"))
	assert.Equal(t, logx.LevelWarn, logx.ParseLevel("WARNING"))
	assert.Equal(t, logx.LevelInfo, logx.ParseLevel("nonsense"))
}
