package movie

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/middleware"
)

// MovieService define o contrato que o Handler espera da camada de Serviço.
type MovieService interface {
	ListMovies(ctx context.Context) ([]domain.Movie, error)
	GetReviews(ctx context.Context, movieID int) ([]domain.ReviewWithUser, error)
	GetLikeSummary(ctx context.Context) ([]domain.LikeSummary, error)
	UpsertReview(ctx context.Context, userID string, req domain.ReviewRequest) (domain.Movie, error)
	SetLike(ctx context.Context, userID string, req domain.LikeRequest) (domain.Movie, error)
	DeleteReview(ctx context.Context, userID string, movieID int) error
}

// Handler agrupa todos os métodos de Handler de filmes.
type Handler struct {
	Service MovieService
	Logger  logger.Logger
}

// NewHandler cria uma nova instância do Handler, injetando o Service e o Logger.
func NewHandler(svc MovieService, log logger.Logger) *Handler {
	return &Handler{
		Service: svc,
		Logger:  log,
	}
}

// handleServiceResponse processa erros de serviço e envia respostas no
// envelope padronizado {success, data|message, error}.
func (h *Handler) handleServiceResponse(w http.ResponseWriter, r *http.Request, data interface{}, message string, err error, successStatus int) {
	w.Header().Set("Content-Type", "application/json")

	if err == nil {
		// Sucesso
		w.WriteHeader(successStatus)
		if encErr := json.NewEncoder(w).Encode(domain.Response{Success: true, Data: data, Message: message}); encErr != nil {
			h.Logger.Error("Falha ao codificar JSON de resposta", encErr)
		}
		return
	}

	// Tratamento de erros: tradução do erro tipado para status/categoria
	status, category, errMessage := apperror.MapToHTTPStatus(err)

	if status >= 500 {
		h.Logger.Error(fmt.Sprintf("Erro de Servidor: %s", category), err)
	} else {
		h.Logger.Debug(fmt.Sprintf("Requisição rejeitada com status %d. Categoria: %s", status, category), map[string]interface{}{"path": r.URL.Path})
	}

	w.WriteHeader(status)
	json.NewEncoder(w).Encode(domain.Response{
		Success: false,
		Message: errMessage,
		Error:   category,
	})
}

// claimsFromContext extrai as claims anexadas pelo middleware de autenticação.
func (h *Handler) claimsFromContext(w http.ResponseWriter, r *http.Request) (middleware.UserClaims, bool) {
	claims, ok := middleware.GetUserClaimsFromContext(r.Context())
	if !ok {
		h.handleServiceResponse(w, r, nil, "", apperror.NewUnauthorizedError("Autorização necessária. Token não processado."), 0)
	}
	return claims, ok
}

// movieIDFromPath extrai o movieId numérico do final do path.
func movieIDFromPath(r *http.Request, prefix string) (int, error) {
	raw := strings.TrimPrefix(r.URL.Path, prefix)
	movieID, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.NewValidationError(fmt.Sprintf("movieId '%s' não é um número válido.", raw))
	}
	return movieID, nil
}

// ListMoviesHandler lida com a requisição GET /api/movies.
// Coleção vazia responde 404 (erro), não lista vazia.
func (h *Handler) ListMoviesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	movies, err := h.Service.ListMovies(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	h.handleServiceResponse(w, r, movies, "", nil, http.StatusOK)
}

// GetReviewsHandler lida com a requisição GET /api/movies/reviews/{movieId},
// retornando as avaliações com o autor resolvido.
func (h *Handler) GetReviewsHandler(w http.ResponseWriter, r *http.Request) {
	movieID, err := movieIDFromPath(r, "/api/movies/reviews/")
	if err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	reviews, err := h.Service.GetReviews(r.Context(), movieID)
	if err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	h.handleServiceResponse(w, r, reviews, "", nil, http.StatusOK)
}

// UpsertReviewHandler lida com a requisição POST /api/movies/reviews
// (autenticada): cria ou sobrescreve a avaliação do usuário no filme.
func (h *Handler) UpsertReviewHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.claimsFromContext(w, r)
	if !ok {
		return
	}

	var req domain.ReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, "", apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	movie, err := h.Service.UpsertReview(r.Context(), claims.UserID, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	h.handleServiceResponse(w, r, movie, "", nil, http.StatusCreated)
}

// GetLikesHandler lida com a requisição GET /api/movies/get-likes,
// retornando a agregação de curtidas por filme.
func (h *Handler) GetLikesHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	summaries, err := h.Service.GetLikeSummary(r.Context())
	if err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	h.handleServiceResponse(w, r, summaries, "", nil, http.StatusOK)
}

// SetLikeHandler lida com a requisição POST /api/movies/like (autenticada):
// cria ou sobrescreve a curtida do usuário no filme.
func (h *Handler) SetLikeHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}

	claims, ok := h.claimsFromContext(w, r)
	if !ok {
		return
	}

	var req domain.LikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.handleServiceResponse(w, r, nil, "", apperror.NewValidationError("Payload inválido. Verifique o formato JSON."), 0)
		return
	}

	movie, err := h.Service.SetLike(r.Context(), claims.UserID, req)
	if err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	h.handleServiceResponse(w, r, movie, "", nil, http.StatusCreated)
}

// DeleteReviewHandler lida com a requisição DELETE /api/movies/reviews/{movieId}
// (autenticada): remove a avaliação do usuário no filme.
func (h *Handler) DeleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := h.claimsFromContext(w, r)
	if !ok {
		return
	}

	movieID, err := movieIDFromPath(r, "/api/movies/reviews/")
	if err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	if err := h.Service.DeleteReview(r.Context(), claims.UserID, movieID); err != nil {
		h.handleServiceResponse(w, r, nil, "", err, 0)
		return
	}

	h.handleServiceResponse(w, r, nil, "Avaliação removida.", nil, http.StatusOK)
}
