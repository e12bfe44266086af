package logger

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestZapLogger_FieldsAndNames(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	log := FromZap(zap.New(core)).Named("stock")

	log.Info("Entrada registrada.", map[string]interface{}{"area_id": "REF01", "quantity": 10})
	log.Error("Falha ao gravar.", errors.New("disco cheio"))

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, "stock", entries[0].LoggerName)
	assert.Equal(t, "REF01", entries[0].ContextMap()["area_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "disco cheio", entries[1].ContextMap()["error"])
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, parseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, parseLevel("warning"))
	assert.Equal(t, zapcore.InfoLevel, parseLevel(""))
}

func TestFromZap_Nil(t *testing.T) {
	assert.NotPanics(t, func() { FromZap(nil).Info("ok", nil) })
}
