package log

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandlerKeepsRecentRecords(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.NewTextHandler(&buf, nil), 3)
	logger := slog.New(h)

	for i := 0; i < 5; i++ {
		logger.Info("tick", "i", i)
	}

	logs := h.Logs()
	require.Len(t, logs, 3)
	var first int64
	logs[0].Attrs(func(a slog.Attr) bool {
		first = a.Value.Int64()
		return false
	})
	assert.Equal(t, int64(2), first)
}

func TestHandlerKeepsFilteredRecords(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelWarn}), 0)
	logger := slog.New(h)

	logger.Debug("quiet")
	logger.Error("loud")

	assert.Len(t, h.Logs(), 2)
	assert.NotContains(t, buf.String(), "quiet")
	assert.Contains(t, buf.String(), "loud")
}

func TestHandlerWithAttrsSharesHistory(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.NewTextHandler(&buf, nil), 0)
	logger := slog.New(h).With("ssid", "Hotspot").WithGroup("ap")

	logger.Error("unable to create access point")
	logger.Info("fine")

	errs := h.Errors()
	require.Len(t, errs, 1)
	assert.Equal(t, "unable to create access point", errs[0].Message)
	assert.Contains(t, buf.String(), "ssid=Hotspot")

	h.Reset()
	assert.Empty(t, h.Logs())
}

func TestInit(t *testing.T) {
	prev := slog.Default()
	defer slog.SetDefault(prev)

	var buf bytes.Buffer
	h := Init(slog.NewTextHandler(&buf, nil))
	slog.Error("boom")
	slog.Warn("careful")

	assert.Len(t, h.Logs(), 2)
	assert.Len(t, h.Errors(), 1)
	assert.Contains(t, buf.String(), "msg=boom")
}
