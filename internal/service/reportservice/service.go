// Package reportservice monta os relatórios do gerente: totais por produto,
// alertas de vencimento e histórico de vendas.
package reportservice

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
)

const maxConcurrentAreas = 4

type AreaLister interface {
	ListAreas(ctx context.Context) ([]domain.StorageArea, error)
}

type BatchLister interface {
	ListBatches(ctx context.Context, areaID string) ([]domain.StockBatch, error)
}

type SaleLister interface {
	ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.SaleRecord, error)
}

// Options ajusta o relógio e a janela padrão dos alertas.
type Options struct {
	Location         *time.Location
	DefaultThreshold int
	Now              func() time.Time
}

type Service struct {
	areas   AreaLister
	batches BatchLister
	sales   SaleLister
	opts    Options
	logger  logger.Logger
}

// NewService cria o serviço de relatórios. Campos zerados de opts recebem valores padrão.
func NewService(areas AreaLister, batches BatchLister, sales SaleLister, opts Options, logger logger.Logger) *Service {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.DefaultThreshold <= 0 {
		opts.DefaultThreshold = domain.DefaultExpiryThresholdDays
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Service{areas: areas, batches: batches, sales: sales, opts: opts, logger: logger}
}

// DefaultThreshold é a janela usada quando a requisição não informa dias.
func (s *Service) DefaultThreshold() int { return s.opts.DefaultThreshold }

// Today é a data corrente no fuso configurado.
func (s *Service) Today() domain.Date {
	return domain.NewDate(s.opts.Now().In(s.opts.Location))
}

type areaBatches struct {
	area    domain.StorageArea
	batches []domain.StockBatch
}

// collect lê os lotes de todas as áreas em paralelo, mantendo a ordem das áreas.
func (s *Service) collect(ctx context.Context) ([]areaBatches, error) {
	areas, err := s.areas.ListAreas(ctx)
	if err != nil {
		return nil, apperror.Translate(err, "Falha interna ao listar áreas.")
	}

	out := make([]areaBatches, len(areas))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentAreas)
	for i, area := range areas {
		g.Go(func() error {
			batches, err := s.batches.ListBatches(gctx, area.ID)
			if err != nil {
				var nf *apperror.NotFoundError
				if errors.As(err, &nf) {
					// Área removida entre a listagem e a leitura.
					out[i] = areaBatches{area: area}
					return nil
				}
				return err
			}
			out[i] = areaBatches{area: area, batches: batches}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("Falha ao coletar lotes para relatório.", err)
		return nil, apperror.Translate(err, "Falha interna ao coletar lotes.")
	}
	return out, nil
}

// StockTotals soma o estoque de cada produto em todas as áreas.
func (s *Service) StockTotals(ctx context.Context) ([]domain.ProductTotal, error) {
	collected, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	var all []domain.StockBatch
	for _, ab := range collected {
		all = append(all, ab.batches...)
	}
	return domain.AggregateByProduct(all), nil
}

// ExpiryAlerts lista lotes vencidos e os que vencem em até thresholdDays dias.
func (s *Service) ExpiryAlerts(ctx context.Context, thresholdDays int) ([]domain.ExpiryAlert, error) {
	if thresholdDays < 0 {
		return nil, apperror.NewValidationError("O número de dias do alerta não pode ser negativo.")
	}

	collected, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	today := s.Today()
	alerts := make([]domain.ExpiryAlert, 0)
	for _, ab := range collected {
		for _, b := range ab.batches {
			status, days, ok := domain.ClassifyExpiry(b, today, thresholdDays)
			if !ok {
				continue
			}
			alerts = append(alerts, domain.ExpiryAlert{
				AreaID:          ab.area.ID,
				AreaName:        ab.area.Name,
				Batch:           b,
				Status:          status,
				DaysUntilExpiry: days,
			})
		}
	}
	domain.SortExpiryAlerts(alerts)

	s.logger.Debug("Alertas de vencimento calculados.", map[string]interface{}{
		"today": today.String(), "threshold_days": thresholdDays, "alerts": len(alerts),
	})
	return alerts, nil
}

// ListSales devolve o histórico de vendas, mais recentes primeiro.
func (s *Service) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.SaleRecord, error) {
	if filter.Limit < 0 {
		return nil, apperror.NewValidationError("O limite não pode ser negativo.")
	}
	sales, err := s.sales.ListSales(ctx, filter)
	if err != nil {
		return nil, apperror.Translate(err, "Falha interna ao listar vendas.")
	}
	return sales, nil
}
