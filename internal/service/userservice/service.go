package userservice

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/normalize"
)

const minPasswordLen = 6

// UserRepository é o contrato de persistência de usuários.
type UserRepository interface {
	SaveUser(ctx context.Context, user domain.User) (domain.User, error)
	FindUserByUsername(ctx context.Context, username string) (domain.User, error)
}

// TokenService é o contrato da camada de token (internal/pkg/token)
type TokenService interface {
	GenerateToken(username, role, sessionID string) (string, time.Time, error)
	Expiry() time.Duration
}

// SessionStore guarda as sessões ativas; o token só carrega o ID da sessão.
type SessionStore interface {
	Create(ctx context.Context, info domain.SessionInfo, ttl time.Duration) error
	Revoke(ctx context.Context, sessionID string) error
}

// UserService define o serviço de lógica de negócio para a entidade User.
type UserService struct {
	repo     UserRepository
	tokens   TokenService
	sessions SessionStore
	logger   logger.Logger
	newID    func() string
}

// NewService cria uma nova instância do UserService.
func NewService(repo UserRepository, tokens TokenService, sessions SessionStore, logger logger.Logger) *UserService {
	return &UserService{
		repo:     repo,
		tokens:   tokens,
		sessions: sessions,
		logger:   logger,
		newID:    uuid.NewString,
	}
}

// Register cadastra um novo usuário (ação do gerente).
// Ele faz o hashing da senha e valida o papel.
func (s *UserService) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação Básica
	registration.Username = normalize.Lower(registration.Username)
	registration.Name = normalize.Text(registration.Name)
	registration.Role = domain.Role(normalize.Lower(string(registration.Role)))

	if registration.Username == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Usuário e senha são obrigatórios.")
	}
	if utf8.RuneCountInString(registration.Password) < minPasswordLen {
		return domain.User{}, apperror.NewValidationError(fmt.Sprintf("A senha deve ter pelo menos %d caracteres.", minPasswordLen))
	}
	if !registration.Role.Valid() {
		return domain.User{}, apperror.NewValidationError(fmt.Sprintf("Papel '%s' inválido. Use gerente ou operador.", registration.Role))
	}
	if registration.Name == "" {
		registration.Name = registration.Username
	}

	// 2. Hashing da Senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	// 3. Persistência (usuário duplicado vira ConflictError no repositório)
	user, err := s.repo.SaveUser(ctx, domain.User{
		Username:     registration.Username,
		Name:         registration.Name,
		PasswordHash: string(hashedPassword),
		Role:         registration.Role,
	})
	if err != nil {
		return domain.User{}, apperror.Translate(err, "Falha interna ao cadastrar usuário.")
	}

	s.logger.Info("Usuário cadastrado.", map[string]interface{}{"username": user.Username, "role": user.Role})
	return user, nil
}

// Login autentica um usuário, abre uma sessão e gera o JWT que a referencia.
func (s *UserService) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	// 1. Validação Básica
	username := normalize.Lower(req.Username)
	if username == "" || req.Password == "" {
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Usuário e senha são obrigatórios.")
	}

	// 2. Buscar Usuário
	user, err := s.repo.FindUserByUsername(ctx, username)
	if err != nil {
		// NotFound vira Unauthorized para não indicar quais usuários existem.
		var notFoundErr *apperror.NotFoundError
		if errors.As(err, &notFoundErr) {
			s.logger.Warn("Tentativa de login com usuário inexistente.", map[string]interface{}{"username": username})
			return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return domain.LoginResponse{}, apperror.Translate(err, "Falha interna ao autenticar.")
	}

	// 3. Comparar Senhas
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		s.logger.Warn("Tentativa de login com senha incorreta.", map[string]interface{}{"username": username})
		return domain.LoginResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	// 4. Abrir sessão
	info := domain.SessionInfo{SessionID: s.newID(), Username: user.Username, Role: user.Role}
	if err := s.sessions.Create(ctx, info, s.tokens.Expiry()); err != nil {
		return domain.LoginResponse{}, apperror.NewInternalError("Falha ao registrar sessão.", err)
	}

	// 5. Gerar JWT
	tokenString, expiresAt, err := s.tokens.GenerateToken(user.Username, string(user.Role), info.SessionID)
	if err != nil {
		_ = s.sessions.Revoke(ctx, info.SessionID)
		return domain.LoginResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	s.logger.Info("Login realizado.", map[string]interface{}{"username": user.Username, "role": user.Role})
	return domain.LoginResponse{Token: tokenString, ExpiresAt: expiresAt, User: user}, nil
}

// Logout encerra a sessão; o token deixa de ser aceito mesmo antes de expirar.
func (s *UserService) Logout(ctx context.Context, info domain.SessionInfo) error {
	if info.SessionID == "" {
		return apperror.NewUnauthorizedError("Sessão inexistente.")
	}
	if err := s.sessions.Revoke(ctx, info.SessionID); err != nil {
		return apperror.NewInternalError("Falha ao encerrar sessão.", err)
	}

	s.logger.Info("Logout realizado.", map[string]interface{}{"username": info.Username})
	return nil
}

// Me devolve o usuário da sessão atual.
func (s *UserService) Me(ctx context.Context, info domain.SessionInfo) (domain.User, error) {
	user, err := s.repo.FindUserByUsername(ctx, info.Username)
	if err != nil {
		return domain.User{}, apperror.Translate(err, "Falha interna ao buscar usuário.")
	}
	return user, nil
}
