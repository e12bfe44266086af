package user

import (
	"context"
	"net/http"

	"laticinios/internal/api/respond"
	"laticinios/internal/domain"
	apperror "laticinios/internal/errors"
	"laticinios/internal/pkg/logger"
	"laticinios/internal/pkg/middleware"
)

// UserService define o contrato para cadastro, login e sessão.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error)
	Logout(ctx context.Context, info domain.SessionInfo) error
	Me(ctx context.Context, info domain.SessionInfo) (domain.User, error)
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service      UserService
	Logger       logger.Logger
	SecureCookie bool
}

// NewHandler cria uma nova instância do Handler. secureCookie marca o cookie de sessão como Secure (HTTPS).
func NewHandler(svc UserService, log logger.Logger, secureCookie bool) *Handler {
	return &Handler{Service: svc, Logger: log, SecureCookie: secureCookie}
}

func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	respond.Write(w, r, h.Logger, data, err, successStatus)
}

// RegisterUserHandler lida com a requisição POST /v1/users.
// @Summary Cadastra um usuário
// @Tags users
// @Accept json
// @Produce json
// @Param user body domain.UserRegistration true "Dados do usuário"
// @Success 201 {object} domain.User
// @Failure 400 {object} domain.ErrorResponse
// @Failure 409 {object} domain.ErrorResponse "Usuário já existe"
// @Security ApiKeyAuth
// @Router /users [post]
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var registration domain.UserRegistration
	if err := respond.Decode(r, &registration); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	user, err := h.Service.Register(r.Context(), registration)
	h.handleServiceResponse(w, r, user, err, http.StatusCreated)
}

// LoginUserHandler lida com a requisição POST /v1/login.
// @Summary Autentica e abre uma sessão
// @Description Devolve o JWT e também o grava no cookie de sessão.
// @Tags users
// @Accept json
// @Produce json
// @Param credentials body domain.LoginRequest true "Credenciais"
// @Success 200 {object} domain.LoginResponse
// @Failure 401 {object} domain.ErrorResponse "Credenciais inválidas"
// @Router /login [post]
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := respond.Decode(r, &req); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusBadRequest)
		return
	}

	resp, err := h.Service.Login(r.Context(), req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.handleServiceResponse(w, r, resp, nil, http.StatusOK)
}

// LogoutHandler lida com a requisição POST /v1/logout.
// @Summary Encerra a sessão atual
// @Tags users
// @Success 204
// @Failure 401 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /logout [post]
func (h *Handler) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Sessão não encontrada."), http.StatusUnauthorized)
		return
	}

	if err := h.Service.Logout(r.Context(), info); err != nil {
		h.handleServiceResponse(w, r, nil, err, http.StatusOK)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	h.handleServiceResponse(w, r, nil, nil, http.StatusNoContent)
}

// MeHandler lida com a requisição GET /v1/me.
// @Summary Usuário da sessão atual
// @Tags users
// @Produce json
// @Success 200 {object} domain.User
// @Failure 401 {object} domain.ErrorResponse
// @Security ApiKeyAuth
// @Router /me [get]
func (h *Handler) MeHandler(w http.ResponseWriter, r *http.Request) {
	info, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, apperror.NewUnauthorizedError("Sessão não encontrada."), http.StatusUnauthorized)
		return
	}

	user, err := h.Service.Me(r.Context(), info)
	h.handleServiceResponse(w, r, user, err, http.StatusOK)
}
