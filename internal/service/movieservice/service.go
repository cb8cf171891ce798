package movieservice

import (
	"context"
	"errors"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
)

// Service implementa a interface domain.MovieService: listagem, projeção de
// avaliações, agregação de curtidas e as escritas autenticadas
// (upsert de avaliação, toggle de curtida, remoção de avaliação).
type Service struct {
	movieRepo domain.MovieRepository
	userRepo  domain.UserRepository
	logger    logger.Logger
}

// NewService cria e retorna uma nova instância do Serviço de Filmes.
// O UserRepository é necessário para autenticar o autor e resolver as
// referências de usuário nas projeções.
func NewService(movieRepo domain.MovieRepository, userRepo domain.UserRepository, log logger.Logger) *Service {
	return &Service{
		movieRepo: movieRepo,
		userRepo:  userRepo,
		logger:    log,
	}
}

// ListMovies retorna todos os filmes. Coleção vazia é tratada como erro de
// recurso não encontrado, nunca como lista vazia de sucesso.
func (s *Service) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	movies, err := s.movieRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	if len(movies) == 0 {
		return nil, apperror.NewNotFoundError("Nenhum filme encontrado.")
	}
	return movies, nil
}

// GetReviews busca o filme pelo movieId e projeta cada avaliação com o
// username e o nome do autor resolvidos.
func (s *Service) GetReviews(ctx context.Context, movieID int) ([]domain.ReviewWithUser, error) {
	movie, err := s.movieRepo.FindByMovieID(ctx, movieID)
	if err != nil {
		return nil, err
	}

	users, err := s.usersByID(ctx, reviewUserIDs(movie.Reviews))
	if err != nil {
		return nil, err
	}

	reviews := make([]domain.ReviewWithUser, 0, len(movie.Reviews))
	for _, review := range movie.Reviews {
		projected := domain.ReviewWithUser{ReviewText: review.ReviewText}
		if u, ok := users[review.User]; ok {
			projected.Username = u.Username
			projected.Name = u.Name
		}
		reviews = append(reviews, projected)
	}
	return reviews, nil
}

// GetLikeSummary agrega os filmes com ao menos uma curtida ativa: todas as
// entradas de curtida com o usuário resolvido mais o total de isLiked == true.
func (s *Service) GetLikeSummary(ctx context.Context) ([]domain.LikeSummary, error) {
	movies, err := s.movieRepo.FindLiked(ctx)
	if err != nil {
		return nil, err
	}

	ids := []string{}
	for _, movie := range movies {
		for _, like := range movie.Liked {
			ids = append(ids, like.User)
		}
	}
	users, err := s.usersByID(ctx, ids)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.LikeSummary, 0, len(movies))
	for _, movie := range movies {
		summary := domain.LikeSummary{
			MovieID: movie.MovieID,
			Liked:   make([]domain.LikeWithUser, 0, len(movie.Liked)),
		}
		for _, like := range movie.Liked {
			entry := domain.LikeWithUser{IsLiked: like.IsLiked}
			if u, ok := users[like.User]; ok {
				entry.User = domain.UserRef{ID: u.ID, Username: u.Username, Name: u.Name}
			} else {
				entry.User = domain.UserRef{ID: like.User}
			}
			summary.Liked = append(summary.Liked, entry)
			if like.IsLiked {
				summary.TotalLikes++
			}
		}
		summaries = append(summaries, summary)
	}
	return summaries, nil
}

// UpsertReview grava a avaliação do usuário autenticado para um movieId:
// atualiza o texto se já existe, acrescenta se é a primeira do usuário, ou
// cria o filme (e o backlink no usuário) se o movieId ainda não existe.
func (s *Service) UpsertReview(ctx context.Context, userID string, req domain.ReviewRequest) (domain.Movie, error) {
	// 1. Validação de entrada
	if req.MovieID == nil {
		return domain.Movie{}, apperror.NewValidationError("O campo movieId é obrigatório.")
	}
	if len(req.Review) < 3 {
		return domain.Movie{}, apperror.NewValidationError("A avaliação deve ter no mínimo 3 caracteres.")
	}

	// 2. Autenticação: o id do token precisa corresponder a um usuário real
	user, err := s.authenticatedUser(ctx, userID)
	if err != nil {
		return domain.Movie{}, err
	}

	movieID := *req.MovieID

	// 3. Escada set -> push -> insert, cada degrau atômico no banco
	updated, err := s.movieRepo.SetReviewText(ctx, movieID, user.ID, req.Review)
	if err != nil {
		return domain.Movie{}, err
	}
	if updated {
		return s.movieRepo.FindByMovieID(ctx, movieID)
	}

	review := domain.Review{ReviewText: req.Review, User: user.ID}
	pushed, err := s.movieRepo.PushReview(ctx, movieID, review)
	if err != nil {
		return domain.Movie{}, err
	}
	if pushed {
		return s.movieRepo.FindByMovieID(ctx, movieID)
	}

	// Filme inexistente: cria com a única avaliação e registra o backlink
	movie, err := s.movieRepo.InsertWithReview(ctx, movieID, review)
	if err != nil {
		return domain.Movie{}, err
	}
	if err := s.userRepo.AppendMovie(ctx, user.ID, movie.ID); err != nil {
		return domain.Movie{}, err
	}

	return movie, nil
}

// SetLike grava a curtida do usuário autenticado para um movieId, com a mesma
// escada set -> push -> insert de UpsertReview. Chamadas repetidas com o mesmo
// valor são idempotentes.
func (s *Service) SetLike(ctx context.Context, userID string, req domain.LikeRequest) (domain.Movie, error) {
	if req.MovieID == nil {
		return domain.Movie{}, apperror.NewValidationError("O campo movieId é obrigatório.")
	}
	if req.Liked == nil {
		return domain.Movie{}, apperror.NewValidationError("O campo liked é obrigatório e deve ser booleano.")
	}

	user, err := s.authenticatedUser(ctx, userID)
	if err != nil {
		return domain.Movie{}, err
	}

	movieID := *req.MovieID
	isLiked := *req.Liked

	updated, err := s.movieRepo.SetLike(ctx, movieID, user.ID, isLiked)
	if err != nil {
		return domain.Movie{}, err
	}
	if updated {
		return s.movieRepo.FindByMovieID(ctx, movieID)
	}

	like := domain.Like{IsLiked: isLiked, User: user.ID}
	pushed, err := s.movieRepo.PushLike(ctx, movieID, like)
	if err != nil {
		return domain.Movie{}, err
	}
	if pushed {
		return s.movieRepo.FindByMovieID(ctx, movieID)
	}

	return s.movieRepo.InsertWithLike(ctx, movieID, like)
}

// DeleteReview remove a avaliação do usuário autenticado no filme indicado.
// Falha com NotFound quando o filme não existe ou o usuário não o avaliou.
func (s *Service) DeleteReview(ctx context.Context, userID string, movieID int) error {
	user, err := s.authenticatedUser(ctx, userID)
	if err != nil {
		return err
	}

	// Garante o 404 de "filme inexistente" antes de tentar remover
	if _, err := s.movieRepo.FindByMovieID(ctx, movieID); err != nil {
		return err
	}

	removed, err := s.movieRepo.PullReview(ctx, movieID, user.ID)
	if err != nil {
		return err
	}
	if !removed {
		return apperror.NewNotFoundError("Você não possui avaliação neste filme.")
	}

	return nil
}

// authenticatedUser carrega o usuário do token; id desconhecido vira 401,
// não 404, para que o chamador não diferencie tokens forjados.
func (s *Service) authenticatedUser(ctx context.Context, userID string) (domain.User, error) {
	if userID == "" {
		return domain.User{}, apperror.NewUnauthorizedError("Token sem identificação de usuário.")
	}

	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.User{}, apperror.NewUnauthorizedError("Usuário do token não existe.")
		}
		return domain.User{}, err
	}
	return user, nil
}

// usersByID resolve uma lista de ids em um índice id -> User.
func (s *Service) usersByID(ctx context.Context, ids []string) (map[string]domain.User, error) {
	users, err := s.userRepo.FindByIDs(ctx, dedupe(ids))
	if err != nil {
		return nil, err
	}
	index := make(map[string]domain.User, len(users))
	for _, u := range users {
		index[u.ID] = u
	}
	return index, nil
}

func reviewUserIDs(reviews []domain.Review) []string {
	ids := make([]string, 0, len(reviews))
	for _, review := range reviews {
		ids = append(ids, review.User)
	}
	return ids
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
