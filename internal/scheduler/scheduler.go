// Package scheduler executa a varredura diária de vencimentos.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"laticinios/internal/domain"
	"laticinios/internal/pkg/logger"
)

const scanTimeout = 2 * time.Minute

// ExpiryReporter é o recorte do serviço de relatórios usado pela varredura.
type ExpiryReporter interface {
	ExpiryAlerts(ctx context.Context, thresholdDays int) ([]domain.ExpiryAlert, error)
}

// Scheduler agenda tarefas periódicas.
type Scheduler struct {
	cron      *cron.Cron
	spec      string
	reports   ExpiryReporter
	threshold int
	logger    logger.Logger
}

// NewScheduler cria o agendador; spec é uma expressão cron de 5 campos interpretada em loc.
func NewScheduler(spec string, loc *time.Location, reports ExpiryReporter, thresholdDays int, log logger.Logger) *Scheduler {
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		cron:      cron.New(cron.WithLocation(loc)),
		spec:      spec,
		reports:   reports,
		threshold: thresholdDays,
		logger:    log,
	}
}

// Start registra a varredura e inicia o cron.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.spec, s.scan); err != nil {
		return fmt.Errorf("expressão cron inválida %q: %w", s.spec, err)
	}
	s.logger.Info("Agendador iniciado.", map[string]interface{}{"expiry_scan_cron": s.spec, "threshold_days": s.threshold})
	s.cron.Start()
	return nil
}

// Stop para o cron e espera a execução em andamento terminar.
func (s *Scheduler) Stop() {
	s.logger.Info("Parando agendador.", nil)
	<-s.cron.Stop().Done()
}

func (s *Scheduler) scan() {
	ctx, cancel := context.WithTimeout(context.Background(), scanTimeout)
	defer cancel()

	if _, err := s.RunExpiryScan(ctx); err != nil {
		s.logger.Error("Falha na varredura de vencimentos.", err)
	}
}

// RunExpiryScan calcula os alertas e registra um aviso por lote mais um resumo.
func (s *Scheduler) RunExpiryScan(ctx context.Context) ([]domain.ExpiryAlert, error) {
	alerts, err := s.reports.ExpiryAlerts(ctx, s.threshold)
	if err != nil {
		return nil, err
	}

	expired := 0
	for _, a := range alerts {
		if a.Status == domain.StatusExpired {
			expired++
		}
		s.logger.Warn("Lote com alerta de vencimento.", map[string]interface{}{
			"area_id":           a.AreaID,
			"batch_id":          a.Batch.ID,
			"product_id":        a.Batch.ProductID,
			"lot":               a.Batch.Lot,
			"expiry_date":       a.Batch.ExpiryDate.String(),
			"status":            a.Status,
			"days_until_expiry": a.DaysUntilExpiry,
		})
	}

	s.logger.Info("Varredura de vencimentos concluída.", map[string]interface{}{
		"alerts": len(alerts), "expired": expired, "near_expiry": len(alerts) - expired,
	})
	return alerts, nil
}
