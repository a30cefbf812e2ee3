package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func lastEvent(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var ev map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &ev))
	return ev
}

func TestNew_CampoAppYComponente(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "info", App: "bodega-api", Out: &buf})

	log.Info().Msg("iniciando")
	ev := lastEvent(t, &buf)
	assert.Equal(t, "bodega-api", ev["app"])
	assert.Equal(t, "info", ev["level"])
	assert.NotContains(t, ev, "component")

	log.Component("ledger").Warn().Msg("reconciliación")
	ev = lastEvent(t, &buf)
	assert.Equal(t, "bodega-api", ev["app"])
	assert.Equal(t, "ledger", ev["component"])
}

func TestNew_FiltraPorNivel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "WARN", Out: &buf})

	log.Info().Msg("descartado")
	assert.Empty(t, buf.String())

	log.Error().Msg("queda")
	ev := lastEvent(t, &buf)
	assert.Equal(t, "queda", ev["message"])
	assert.NotContains(t, ev, "app")
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" Warn "))
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("ruidoso"))
}
