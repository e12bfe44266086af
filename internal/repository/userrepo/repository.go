package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/database"
	"laticinios/internal/pkg/logger"
)

// UserRepository persiste os usuários do armazém.
type UserRepository struct {
	DB        *sqlx.DB
	DBTimeout time.Duration
	logger    logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando o DB.
func NewUserRepository(db *sqlx.DB, dbTimeout time.Duration, logger logger.Logger) *UserRepository {
	return &UserRepository{
		DB:        db,
		DBTimeout: dbTimeout,
		logger:    logger,
	}
}

// SaveUser insere um novo usuário; username repetido vira ConflictError.
func (r *UserRepository) SaveUser(ctx context.Context, user domain.User) (domain.User, error) {
	r.logger.Debug("Iniciando Save de usuário no repositório.", map[string]interface{}{"username": user.Username})

	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := r.DB.Rebind(`INSERT INTO users (username, name, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`)
	_, err := r.DB.ExecContext(ctxTimeout, query, user.Username, user.Name, user.PasswordHash, user.Role, user.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return domain.User{}, apperror.NewConflictError(fmt.Sprintf("Usuário '%s' já existe.", user.Username))
		}
		r.logger.Error("Falha ao inserir usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao inserir usuário", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"username": user.Username, "role": user.Role})
	return user, nil
}

// FindUserByUsername busca o usuário pelo login.
func (r *UserRepository) FindUserByUsername(ctx context.Context, username string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var user domain.User
	query := r.DB.Rebind(`SELECT username, name, password_hash, role, created_at FROM users WHERE username = ?`)
	err := r.DB.GetContext(ctxTimeout, &user, query, username)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário %s não encontrado.", username))
	}
	if err != nil {
		r.logger.Error("Falha ao buscar usuário no DB.", err)
		return domain.User{}, apperror.NewDBError("Falha ao buscar usuário", err)
	}
	return user, nil
}
