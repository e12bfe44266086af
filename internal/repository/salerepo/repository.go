package salerepo

import (
	"context"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
)

// SaleRepository é o histórico de vendas, somente inserção.
type SaleRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
	now       func() time.Time
}

func NewSaleRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *SaleRepository {
	return &SaleRepository{DB: db, DBTimeout: dbTimeout, logger: logger, now: time.Now}
}

// AppendSale grava o registro e devolve-o com ID e data atribuídos.
func (r *SaleRepository) AppendSale(ctx context.Context, sale domain.SaleRecord) (domain.SaleRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if sale.SoldAt.IsZero() {
		sale.SoldAt = r.now().UTC()
	}

	query := r.DB.Rebind(`
        INSERT INTO sales (product_id, name, lot, expiry_snapshot, quantity, destination, area_id, user_id, sold_at)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        RETURNING sale_id`)

	err := r.DB.GetContext(ctxTimeout, &sale.ID, query,
		sale.ProductID, sale.Name, sale.Lot, sale.ExpirySnapshot, sale.Quantity,
		sale.Destination, sale.AreaID, sale.UserID, sale.SoldAt)
	if err != nil {
		r.logger.Error("Falha ao registrar venda.", err)
		return domain.SaleRecord{}, errors.NewDBError("Falha ao registrar venda", err)
	}

	r.logger.Info("Venda registrada.", map[string]interface{}{
		"sale_id": sale.ID, "product_id": sale.ProductID, "quantity": sale.Quantity, "user_id": sale.UserID,
	})
	return sale, nil
}

// ListSales devolve as vendas mais recentes primeiro.
func (r *SaleRepository) ListSales(ctx context.Context, filter domain.SaleFilter) ([]domain.SaleRecord, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var (
		conds []string
		args  []interface{}
	)
	if filter.AreaID != "" {
		conds = append(conds, "area_id = ?")
		args = append(args, filter.AreaID)
	}
	if filter.ProductID != "" {
		conds = append(conds, "product_id = ?")
		args = append(args, filter.ProductID)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT sale_id, product_id, name, lot, expiry_snapshot, quantity, destination, area_id, user_id, sold_at FROM sales`)
	if len(conds) > 0 {
		sb.WriteString(" WHERE ")
		sb.WriteString(strings.Join(conds, " AND "))
	}
	sb.WriteString(" ORDER BY sale_id DESC")
	if filter.Limit > 0 {
		sb.WriteString(" LIMIT ?")
		args = append(args, filter.Limit)
	}

	sales := []domain.SaleRecord{}
	if err := r.DB.SelectContext(ctxTimeout, &sales, r.DB.Rebind(sb.String()), args...); err != nil {
		r.logger.Error("Falha ao listar vendas.", err)
		return nil, errors.NewDBError("Falha ao listar vendas", err)
	}
	return sales, nil
}
