package arearepo

import (
	"context"
	"database/sql"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"laticinios/internal/domain"
	"laticinios/internal/errors"
	"laticinios/internal/pkg/database"
	"laticinios/internal/pkg/logger"
)

// AreaRepository persiste as áreas de armazenamento.
type AreaRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewAreaRepository cria e retorna uma nova instância do Repositório de Áreas.
func NewAreaRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *AreaRepository {
	return &AreaRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// CreateArea insere uma nova área; ID duplicado vira ConflictError.
func (r *AreaRepository) CreateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error) {
	r.logger.Debug("Inserindo área no repositório.", map[string]interface{}{"area_id": area.ID})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := r.DB.Rebind(`INSERT INTO areas (area_id, name, storage_type) VALUES (?, ?, ?)`)
	if _, err := r.DB.ExecContext(ctxTimeout, query, area.ID, area.Name, area.StorageType); err != nil {
		if database.IsUniqueViolation(err) {
			return domain.StorageArea{}, errors.NewConflictError(fmt.Sprintf("Área com ID '%s' já existe.", area.ID))
		}
		r.logger.Error("Falha ao inserir área no DB.", err)
		return domain.StorageArea{}, errors.NewDBError("Falha ao criar área", err)
	}

	r.logger.Info("Área criada com sucesso.", map[string]interface{}{"area_id": area.ID})
	return area, nil
}

// GetAreaByID busca uma área pelo código.
func (r *AreaRepository) GetAreaByID(ctx context.Context, id string) (domain.StorageArea, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var area domain.StorageArea
	query := r.DB.Rebind(`SELECT area_id, name, storage_type FROM areas WHERE area_id = ?`)
	err := r.DB.GetContext(ctxTimeout, &area, query, id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return domain.StorageArea{}, errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada.", id))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar área no DB.", err)
		return domain.StorageArea{}, errors.NewDBError("Falha ao buscar área", err)
	}
	return area, nil
}

// ListAreas lista as áreas ordenadas pelo nome.
func (r *AreaRepository) ListAreas(ctx context.Context) ([]domain.StorageArea, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	areas := []domain.StorageArea{}
	query := `SELECT area_id, name, storage_type FROM areas ORDER BY name, area_id`
	if err := r.DB.SelectContext(ctxTimeout, &areas, query); err != nil {
		r.logger.Error("Falha ao listar áreas no DB.", err)
		return nil, errors.NewDBError("Falha ao listar áreas", err)
	}
	return areas, nil
}

// UpdateArea altera nome e tipo de armazenamento.
func (r *AreaRepository) UpdateArea(ctx context.Context, area domain.StorageArea) (domain.StorageArea, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	query := r.DB.Rebind(`UPDATE areas SET name = ?, storage_type = ? WHERE area_id = ?`)
	result, err := r.DB.ExecContext(ctxTimeout, query, area.Name, area.StorageType, area.ID)
	if err != nil {
		r.logger.Error("Falha ao atualizar área no DB.", err)
		return domain.StorageArea{}, errors.NewDBError("Falha ao atualizar área", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return domain.StorageArea{}, errors.NewDBError("Falha ao verificar linhas afetadas", err)
	}
	if rows == 0 {
		return domain.StorageArea{}, errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada para atualização.", area.ID))
	}

	r.logger.Info("Área atualizada com sucesso.", map[string]interface{}{"area_id": area.ID})
	return area, nil
}

// DeleteArea remove a área somente se ela não tiver lotes.
func (r *AreaRepository) DeleteArea(ctx context.Context, id string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	tx, err := r.DB.BeginTxx(ctxTimeout, nil)
	if err != nil {
		return errors.NewDBError("Falha ao iniciar transação", err)
	}
	defer tx.Rollback()

	var exists string
	err = tx.GetContext(ctxTimeout, &exists,
		tx.Rebind(`SELECT area_id FROM areas WHERE area_id = ?`+database.LockClause(r.DB)), id)
	if stderrors.Is(err, sql.ErrNoRows) {
		return errors.NewNotFoundError(fmt.Sprintf("Área com ID %s não encontrada para exclusão.", id))
	}
	if err != nil {
		return errors.NewDBError("Falha ao buscar área para exclusão", err)
	}

	var count int
	if err := tx.GetContext(ctxTimeout, &count, tx.Rebind(`SELECT COUNT(*) FROM batches WHERE area_id = ?`), id); err != nil {
		return errors.NewDBError("Falha ao contar lotes da área", err)
	}
	if count > 0 {
		r.logger.Warn("Exclusão de área recusada: há lotes armazenados.", map[string]interface{}{"area_id": id, "batches": count})
		return errors.NewDeletionBlockedError(fmt.Sprintf("A área %s possui %d lote(s) armazenado(s).", id, count))
	}

	if _, err := tx.ExecContext(ctxTimeout, tx.Rebind(`DELETE FROM areas WHERE area_id = ?`), id); err != nil {
		if database.IsForeignKeyViolation(err) {
			return errors.NewDeletionBlockedError(fmt.Sprintf("A área %s possui lotes armazenados.", id))
		}
		return errors.NewDBError("Falha ao excluir área", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.NewDBError("Falha ao commitar transação", err)
	}

	r.logger.Info("Área excluída com sucesso.", map[string]interface{}{"area_id": id})
	return nil
}
