package user

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
)

// UserService define o contrato que o Handler espera da camada de Serviço.
type UserService interface {
	Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error)
	Login(ctx context.Context, username string, password string) (domain.TokenResponse, error)
	ListUsers(ctx context.Context) ([]domain.UserWithMovies, error)
}

// LoginRequest representa o payload de entrada para o login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Handler agrupa todos os métodos de Handler do usuário.
type Handler struct {
	Service UserService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc UserService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas no
// envelope padronizado {success, data|message, error}.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err == nil {
		w.WriteHeader(successStatus)
		if encErr := json.NewEncoder(w).Encode(domain.Response{Success: true, Data: data}); encErr != nil {
			h.Logger.Error("Falha ao codificar JSON de resposta", encErr)
		}
		return
	}

	status, category, message := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.Response{
		Success: false,
		Message: message,
		Error:   category,
	})
}

// RegisterUserHandler lida com a requisição POST /api/users.
// Cria um novo usuário, hasheia a senha e salva no banco de dados.
func (h *Handler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var reg domain.UserRegistration
	if err := json.NewDecoder(r.Body).Decode(&reg); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
		return
	}

	newUser, err := h.Service.Register(ctx, reg)
	if err != nil {
		// ConflictError (username duplicado) -> 409, ValidationError -> 400
		h.handleServiceResponse(w, r, nil, err, 0)
		return
	}

	h.handleServiceResponse(w, r, newUser, nil, http.StatusCreated)
}

// ListUsersHandler lida com a requisição GET /api/users, retornando todos os
// usuários com as referências de filmes populadas.
func (h *Handler) ListUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.ListUsers(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, err, 0)
		return
	}

	h.handleServiceResponse(w, r, users, nil, http.StatusOK)
}

// UsersHandler despacha /api/users por método: GET lista, POST registra.
func (h *Handler) UsersHandler(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.ListUsersHandler(w, r)
	case http.MethodPost:
		h.RegisterUserHandler(w, r)
	default:
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
	}
}

// LoginUserHandler lida com a requisição POST /api/login.
// Recebe username/senha, verifica a validade e emite um JSON Web Token.
func (h *Handler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	ctx := r.Context()

	var loginReq LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&loginReq); err != nil {
		h.handleServiceResponse(w, r, nil, apperror.NewValidationError("Payload JSON inválido."), 0)
		return
	}

	tokenResp, err := h.Service.Login(ctx, loginReq.Username, loginReq.Password)
	if err != nil {
		// UnauthorizedError (credenciais inválidas) -> 401
		h.handleServiceResponse(w, r, nil, err, 0)
		return
	}

	h.handleServiceResponse(w, r, tokenResp, nil, http.StatusOK)
}
