package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"laticinios/internal/domain"
	"laticinios/internal/pkg/logger"
)

type stubReporter struct {
	alerts    []domain.ExpiryAlert
	err       error
	threshold int
}

func (s *stubReporter) ExpiryAlerts(_ context.Context, thresholdDays int) ([]domain.ExpiryAlert, error) {
	s.threshold = thresholdDays
	return s.alerts, s.err
}

func TestRunExpiryScan_LogsEachAlert(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	reporter := &stubReporter{alerts: []domain.ExpiryAlert{
		{AreaID: "REF01", Batch: domain.StockBatch{ID: 1, Lot: "A"}, Status: domain.StatusExpired, DaysUntilExpiry: -2},
		{AreaID: "REF01", Batch: domain.StockBatch{ID: 2, Lot: "B"}, Status: domain.StatusNearExpiry, DaysUntilExpiry: 4},
	}}
	s := NewScheduler("0 6 * * *", time.UTC, reporter, 5, logger.FromZap(zap.New(core)))

	alerts, err := s.RunExpiryScan(context.Background())

	require.NoError(t, err)
	assert.Len(t, alerts, 2)
	assert.Equal(t, 5, reporter.threshold)
	assert.Equal(t, 2, logs.FilterMessage("Lote com alerta de vencimento.").Len())

	summary := logs.FilterMessage("Varredura de vencimentos concluída.").All()
	require.Len(t, summary, 1)
	assert.EqualValues(t, 1, summary[0].ContextMap()["expired"])
}

func TestRunExpiryScan_PropagatesError(t *testing.T) {
	s := NewScheduler("0 6 * * *", time.UTC, &stubReporter{err: errors.New("db fora")}, 7, logger.NewNop())

	_, err := s.RunExpiryScan(context.Background())

	assert.Error(t, err)
}

func TestStart_InvalidSpec(t *testing.T) {
	s := NewScheduler("todo dia", time.UTC, &stubReporter{}, 7, logger.NewNop())

	assert.Error(t, s.Start())
}

func TestStartStop(t *testing.T) {
	s := NewScheduler("@daily", time.UTC, &stubReporter{}, 7, logger.NewNop())

	require.NoError(t, s.Start())
	s.Stop()
}
