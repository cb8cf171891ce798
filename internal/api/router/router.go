package router

import (
	"encoding/json"
	"net/http"

	"gomovies/internal/api/movie"
	"gomovies/internal/api/user"
	"gomovies/internal/pkg/middleware"
)

// NewRouter configura e retorna o roteador HTTP principal.
// Recebe os Handlers já inicializados por injeção de dependências e o serviço
// de token para montar o middleware de autenticação das rotas protegidas.
func NewRouter(movieHandler *movie.Handler, userHandler *user.Handler, tokenSvc middleware.TokenService) http.Handler {

	// Usamos o ServeMux padrão do net/http para roteamento
	mux := http.NewServeMux()

	authMW := middleware.NewAuthMiddleware(tokenSvc)

	// --- 1. Rotas de Filmes ---

	// GET /api/movies (listagem)
	mux.HandleFunc("/api/movies", movieHandler.ListMoviesHandler)

	// POST /api/movies/reviews (upsert de avaliação, autenticada)
	mux.HandleFunc("/api/movies/reviews", authMW(movieHandler.UpsertReviewHandler))

	// /api/movies/reviews/{movieId}: GET é pública, DELETE exige token
	mux.HandleFunc("/api/movies/reviews/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			movieHandler.GetReviewsHandler(w, r)
		case http.MethodDelete:
			authMW(movieHandler.DeleteReviewHandler)(w, r)
		default:
			http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		}
	})

	// GET /api/movies/get-likes (agregação de curtidas)
	mux.HandleFunc("/api/movies/get-likes", movieHandler.GetLikesHandler)

	// POST /api/movies/like (toggle de curtida, autenticada)
	mux.HandleFunc("/api/movies/like", authMW(movieHandler.SetLikeHandler))

	// --- 2. Rotas de Usuários ---

	// GET /api/users (listagem populada) e POST /api/users (registro)
	mux.HandleFunc("/api/users", userHandler.UsersHandler)

	// POST /api/login (emissão de token)
	mux.HandleFunc("/api/login", userHandler.LoginUserHandler)

	// --- 3. Health Check ---
	mux.HandleFunc("/ping", PingHandler)

	// --- 4. Fallback: rota desconhecida responde 404 em JSON ---
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "not found"})
	})

	return mux
}

// PingHandler é uma função utilitária para o health check.
func PingHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Método não permitido", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("pong"))
}
