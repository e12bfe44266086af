package catalogrepo

import (
	"context"
	"database/sql"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
	"laticinios/internal/pkg/cache"
	"laticinios/internal/pkg/database"
	"laticinios/internal/pkg/logger"
)

// Define a chave de cache para produtos do catálogo.
const productCacheKey = "product:%s"

// CatalogRepository persiste o catálogo e usa a estratégia Cache-Aside nas leituras por ID.
type CatalogRepository struct {
	DB        *sqlx.DB
	Cache     cache.Client
	DBTimeout time.Duration
	CacheTTL  time.Duration
	logger    logger.Logger
}

// NewCatalogRepository injeta as dependências de Infraestrutura (DB e Cache).
func NewCatalogRepository(db *sqlx.DB, cacheClient cache.Client, dbTimeout, cacheTTL time.Duration, logger logger.Logger) *CatalogRepository {
	return &CatalogRepository{
		DB:        db,
		Cache:     cacheClient,
		DBTimeout: dbTimeout,
		CacheTTL:  cacheTTL,
		logger:    logger,
	}
}

func (r *CatalogRepository) CreateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := r.DB.Rebind(`INSERT INTO catalog (product_id, name) VALUES (?, ?)`)
	if _, err := r.DB.ExecContext(ctxTimeout, query, p.ID, p.Name); err != nil {
		if database.IsUniqueViolation(err) {
			return domain.CatalogProduct{}, errors.NewConflictError(fmt.Sprintf("Produto com ID '%s' já existe no catálogo.", p.ID))
		}
		r.logger.Error("Falha ao inserir produto no catálogo.", err)
		return domain.CatalogProduct{}, errors.NewDBError("Falha ao criar produto", err)
	}

	r.logger.Info("Produto adicionado ao catálogo.", map[string]interface{}{"product_id": p.ID})
	return p, nil
}

// GetProductByID busca um produto pelo ID, utilizando a estratégia Cache-Aside.
func (r *CatalogRepository) GetProductByID(ctx context.Context, id string) (domain.CatalogProduct, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	key := fmt.Sprintf(productCacheKey, id)
	var product domain.CatalogProduct

	cached, err := r.Cache.Get(ctxTimeout, key)
	if err == nil {
		if json.Unmarshal([]byte(cached), &product) == nil {
			r.logger.Debug("Produto obtido do cache.", map[string]interface{}{"product_id": id})
			return product, nil
		}
		r.logger.Warn("Entrada de cache inválida, consultando o DB.", map[string]interface{}{"key": key})
	} else if !stderrors.Is(err, cache.ErrCacheMiss) {
		// Falha real de cache não impede a leitura no banco.
		r.logger.Warn("Falha ao ler do cache.", map[string]interface{}{"key": key, "error": err.Error()})
	}

	query := r.DB.Rebind(`SELECT product_id, name FROM catalog WHERE product_id = ?`)
	err = r.DB.GetContext(ctxTimeout, &product, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.CatalogProduct{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado no catálogo.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar produto no DB.", err)
		return domain.CatalogProduct{}, errors.NewDBError("Falha ao buscar produto", err)
	}

	if payload, marshalErr := json.Marshal(product); marshalErr == nil {
		if setErr := r.Cache.Set(ctxTimeout, key, payload, r.CacheTTL); setErr != nil {
			r.logger.Warn("Falha ao gravar produto no cache.", map[string]interface{}{"key": key, "error": setErr.Error()})
		}
	}

	return product, nil
}

// ListProducts lista o catálogo ordenado pelo nome.
func (r *CatalogRepository) ListProducts(ctx context.Context) ([]domain.CatalogProduct, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	products := []domain.CatalogProduct{}
	if err := r.DB.SelectContext(ctxTimeout, &products, `SELECT product_id, name FROM catalog ORDER BY name, product_id`); err != nil {
		r.logger.Error("Falha ao listar catálogo.", err)
		return nil, errors.NewDBError("Falha ao listar catálogo", err)
	}
	return products, nil
}

// UpdateProduct renomeia o produto e propaga o nome para os lotes armazenados.
func (r *CatalogRepository) UpdateProduct(ctx context.Context, p domain.CatalogProduct) (domain.CatalogProduct, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, nil)
	if err != nil {
		return domain.CatalogProduct{}, errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctxTimeout, tx.Rebind(`UPDATE catalog SET name = ? WHERE product_id = ?`), p.Name, p.ID)
	if err != nil {
		return domain.CatalogProduct{}, errors.NewDBError("Falha ao atualizar produto", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return domain.CatalogProduct{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		return domain.CatalogProduct{}, errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado para atualização.", p.ID))
	}

	if _, err := tx.ExecContext(ctxTimeout, tx.Rebind(`UPDATE batches SET name = ? WHERE product_id = ?`), p.Name, p.ID); err != nil {
		return domain.CatalogProduct{}, errors.NewDBError("Falha ao propagar nome aos lotes", err)
	}

	if err := tx.Commit(); err != nil {
		return domain.CatalogProduct{}, errors.NewDBError("Falha ao commitar transação", err)
	}

	r.invalidate(ctx, p.ID)
	r.logger.Info("Produto do catálogo atualizado.", map[string]interface{}{"product_id": p.ID})
	return p, nil
}

// DeleteProduct recusa a exclusão enquanto houver lote ou venda referenciando o produto.
func (r *CatalogRepository) DeleteProduct(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, nil)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var exists string
	err = tx.GetContext(ctxTimeout, &exists,
		tx.Rebind(`SELECT product_id FROM catalog WHERE product_id = ?`+database.LockClause(r.DB)), id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(fmt.Sprintf("Produto com ID %s não encontrado para exclusão.", id))
	}
	if err != nil {
		return errors.NewDBError("Falha ao buscar produto para exclusão", err)
	}

	var batches, sales int
	if err := tx.GetContext(ctxTimeout, &batches, tx.Rebind(`SELECT COUNT(*) FROM batches WHERE product_id = ?`), id); err != nil {
		return errors.NewDBError("Falha ao contar lotes do produto", err)
	}
	if batches > 0 {
		return errors.NewDeletionBlockedError(fmt.Sprintf("O produto %s possui %d lote(s) em estoque.", id, batches))
	}
	if err := tx.GetContext(ctxTimeout, &sales, tx.Rebind(`SELECT COUNT(*) FROM sales WHERE product_id = ?`), id); err != nil {
		return errors.NewDBError("Falha ao contar vendas do produto", err)
	}
	if sales > 0 {
		return errors.NewDeletionBlockedError(fmt.Sprintf("O produto %s está referenciado em %d venda(s).", id, sales))
	}

	if _, err := tx.ExecContext(ctxTimeout, tx.Rebind(`DELETE FROM catalog WHERE product_id = ?`), id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.NewDeletionBlockedError(fmt.Sprintf("O produto %s ainda está em uso.", id))
		}
		return errors.NewDBError("Falha ao excluir produto", err)
	}
	if err := tx.Commit(); err != nil {
		return errors.NewDBError("Falha ao commitar transação", err)
	}

	r.invalidate(ctx, id)
	r.logger.Info("Produto removido do catálogo.", map[string]interface{}{"product_id": id})
	return nil
}

func (r *CatalogRepository) invalidate(ctx context.Context, id string) {
	key := fmt.Sprintf(productCacheKey, id)
	if err := r.Cache.Delete(ctx, key); err != nil {
		r.logger.Warn("Falha ao invalidar cache do produto.", map[string]interface{}{"key": key, "error": err.Error()})
	}
}
