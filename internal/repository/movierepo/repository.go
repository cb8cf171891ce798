package movierepo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/cache"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
)

// Chaves de cache das leituras agregadas. Qualquer escrita na collection
// invalida as duas.
const (
	moviesCacheKey = "movies:all"
	likedCacheKey  = "movies:liked"
)

// MovieRepository implementa a interface domain.MovieRepository sobre a
// collection "movies" do MongoDB, com estratégia Cache-Aside (Redis) nas
// leituras de listagem.
type MovieRepository struct {
	collection *mongo.Collection
	Cache      cache.Client
	DBTimeout  time.Duration
	CacheTTL   time.Duration
	logger     logger.Logger
}

// NewMovieRepository cria uma nova instância do MovieRepository, injetando a
// conexão com o Mongo e o cliente de cache.
func NewMovieRepository(db *database.MongoDB, cacheClient cache.Client, dbTimeout time.Duration, cacheTTL time.Duration, log logger.Logger) *MovieRepository {
	return &MovieRepository{
		collection: db.Collection("movies"),
		Cache:      cacheClient,
		DBTimeout:  dbTimeout,
		CacheTTL:   cacheTTL,
		logger:     log,
	}
}

// --- Leituras ---

// FindAll retorna todos os filmes, tentando primeiro o cache.
func (r *MovieRepository) FindAll(ctx context.Context) ([]domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if movies, ok := r.fromCache(ctxTimeout, moviesCacheKey); ok {
		return movies, nil
	}

	cursor, err := r.collection.Find(ctxTimeout, bson.M{})
	if err != nil {
		r.logger.Error("Falha ao listar filmes no Mongo.", err)
		return nil, apperror.NewDBError("failed to list movies", err)
	}

	movies := []domain.Movie{}
	if err = cursor.All(ctxTimeout, &movies); err != nil {
		return nil, apperror.NewDBError("failed to decode movies", err)
	}

	r.toCache(ctxTimeout, moviesCacheKey, movies)
	return movies, nil
}

// FindByMovieID busca um filme pelo identificador externo do catálogo.
func (r *MovieRepository) FindByMovieID(ctx context.Context, movieID int) (domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var movie domain.Movie
	err := r.collection.FindOne(ctxTimeout, bson.M{"movie_id": movieID}).Decode(&movie)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.Movie{}, apperror.NewNotFoundError(fmt.Sprintf("Filme com movieId %d não encontrado.", movieID))
		}
		r.logger.Error("Falha ao buscar filme por movieId no Mongo.", err)
		return domain.Movie{}, apperror.NewDBError("failed to find movie", err)
	}

	return movie, nil
}

// FindByIDs busca filmes pelos ids internos (usado para popular User.Movies).
func (r *MovieRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if len(ids) == 0 {
		return []domain.Movie{}, nil
	}

	cursor, err := r.collection.Find(ctxTimeout, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.logger.Error("Falha ao buscar filmes por ids no Mongo.", err)
		return nil, apperror.NewDBError("failed to find movies by ids", err)
	}

	movies := []domain.Movie{}
	if err = cursor.All(ctxTimeout, &movies); err != nil {
		return nil, apperror.NewDBError("failed to decode movies", err)
	}
	return movies, nil
}

// FindLiked retorna os filmes que possuem ao menos uma curtida ativa,
// tentando primeiro o cache.
func (r *MovieRepository) FindLiked(ctx context.Context) ([]domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if movies, ok := r.fromCache(ctxTimeout, likedCacheKey); ok {
		return movies, nil
	}

	cursor, err := r.collection.Find(ctxTimeout, bson.M{"liked.is_liked": true})
	if err != nil {
		r.logger.Error("Falha ao buscar filmes curtidos no Mongo.", err)
		return nil, apperror.NewDBError("failed to find liked movies", err)
	}

	movies := []domain.Movie{}
	if err = cursor.All(ctxTimeout, &movies); err != nil {
		return nil, apperror.NewDBError("failed to decode movies", err)
	}

	r.toCache(ctxTimeout, likedCacheKey, movies)
	return movies, nil
}

// --- Escritas ---
// Cada escrita é uma expressão condicional única executada atomicamente pelo
// Mongo, para que o invariante "no máximo um review/like por (filme, usuário)"
// não dependa de ler-modificar-gravar na aplicação.

// InsertWithReview cria o filme na primeira avaliação recebida para o movieId.
func (r *MovieRepository) InsertWithReview(ctx context.Context, movieID int, review domain.Review) (domain.Movie, error) {
	movie := domain.Movie{
		ID:      uuid.NewString(),
		MovieID: movieID,
		Reviews: []domain.Review{review},
		Liked:   []domain.Like{},
	}
	return r.insert(ctx, movie)
}

// InsertWithLike cria o filme na primeira curtida recebida para o movieId.
func (r *MovieRepository) InsertWithLike(ctx context.Context, movieID int, like domain.Like) (domain.Movie, error) {
	movie := domain.Movie{
		ID:      uuid.NewString(),
		MovieID: movieID,
		Reviews: []domain.Review{},
		Liked:   []domain.Like{like},
	}
	return r.insert(ctx, movie)
}

func (r *MovieRepository) insert(ctx context.Context, movie domain.Movie) (domain.Movie, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctxTimeout, movie); err != nil {
		r.logger.Error("Falha ao inserir filme no Mongo.", err)
		return domain.Movie{}, apperror.NewDBError("failed to insert movie", err)
	}

	r.invalidate(ctxTimeout)
	r.logger.Info("Filme criado.", map[string]interface{}{"id": movie.ID, "movie_id": movie.MovieID})
	return movie, nil
}

// SetReviewText sobrescreve o texto da avaliação existente do usuário usando
// o operador posicional. Retorna false quando o usuário ainda não avaliou o
// filme (ou o filme não existe).
func (r *MovieRepository) SetReviewText(ctx context.Context, movieID int, userID string, text string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctxTimeout,
		bson.M{"movie_id": movieID, "reviews.user": userID},
		bson.M{"$set": bson.M{"reviews.$.review_text": text}},
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar avaliação no Mongo.", err)
		return false, apperror.NewDBError("failed to update review", err)
	}

	if res.MatchedCount > 0 {
		r.invalidate(ctxTimeout)
		return true, nil
	}
	return false, nil
}

// PushReview acrescenta a primeira avaliação do usuário a um filme existente.
// O guard $ne impede avaliação duplicada sob requisições concorrentes.
// Retorna false quando o filme não existe ou o usuário já possui avaliação.
func (r *MovieRepository) PushReview(ctx context.Context, movieID int, review domain.Review) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctxTimeout,
		bson.M{"movie_id": movieID, "reviews.user": bson.M{"$ne": review.User}},
		bson.M{"$push": bson.M{"reviews": review}},
	)
	if err != nil {
		r.logger.Error("Falha ao acrescentar avaliação no Mongo.", err)
		return false, apperror.NewDBError("failed to push review", err)
	}

	if res.MatchedCount > 0 {
		r.invalidate(ctxTimeout)
		return true, nil
	}
	return false, nil
}

// SetLike sobrescreve o estado da curtida existente do usuário.
func (r *MovieRepository) SetLike(ctx context.Context, movieID int, userID string, isLiked bool) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctxTimeout,
		bson.M{"movie_id": movieID, "liked.user": userID},
		bson.M{"$set": bson.M{"liked.$.is_liked": isLiked}},
	)
	if err != nil {
		r.logger.Error("Falha ao atualizar curtida no Mongo.", err)
		return false, apperror.NewDBError("failed to update like", err)
	}

	if res.MatchedCount > 0 {
		r.invalidate(ctxTimeout)
		return true, nil
	}
	return false, nil
}

// PushLike acrescenta a primeira curtida do usuário a um filme existente,
// com o mesmo guard $ne de PushReview.
func (r *MovieRepository) PushLike(ctx context.Context, movieID int, like domain.Like) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctxTimeout,
		bson.M{"movie_id": movieID, "liked.user": bson.M{"$ne": like.User}},
		bson.M{"$push": bson.M{"liked": like}},
	)
	if err != nil {
		r.logger.Error("Falha ao acrescentar curtida no Mongo.", err)
		return false, apperror.NewDBError("failed to push like", err)
	}

	if res.MatchedCount > 0 {
		r.invalidate(ctxTimeout)
		return true, nil
	}
	return false, nil
}

// PullReview remove a avaliação do usuário pelo id do autor.
// Retorna false quando o usuário não tinha avaliação no filme.
func (r *MovieRepository) PullReview(ctx context.Context, movieID int, userID string) (bool, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctxTimeout,
		bson.M{"movie_id": movieID},
		bson.M{"$pull": bson.M{"reviews": bson.M{"user": userID}}},
	)
	if err != nil {
		r.logger.Error("Falha ao remover avaliação no Mongo.", err)
		return false, apperror.NewDBError("failed to pull review", err)
	}

	if res.ModifiedCount > 0 {
		r.invalidate(ctxTimeout)
		return true, nil
	}
	return false, nil
}

// --- Cache-Aside ---

// fromCache tenta desserializar uma listagem do Redis. Falhas de cache nunca
// derrubam a leitura; apenas caem para o banco.
func (r *MovieRepository) fromCache(ctx context.Context, key string) ([]domain.Movie, bool) {
	cachedData, err := r.Cache.Get(ctx, key)
	if err == nil {
		var movies []domain.Movie
		if json.Unmarshal([]byte(cachedData), &movies) == nil {
			return movies, true
		}
	} else if err != cache.ErrCacheMiss {
		r.logger.Warn("Falha ao ler do cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}
	return nil, false
}

// toCache serializa e grava uma listagem no Redis com o TTL configurado.
func (r *MovieRepository) toCache(ctx context.Context, key string, movies []domain.Movie) {
	moviesJSON, err := json.Marshal(movies)
	if err != nil {
		return
	}
	if err := r.Cache.Set(ctx, key, moviesJSON, r.CacheTTL); err != nil {
		r.logger.Warn("Falha ao gravar no cache Redis.", map[string]interface{}{"key": key, "error": err.Error()})
	}
}

// invalidate descarta as listagens cacheadas após qualquer escrita.
func (r *MovieRepository) invalidate(ctx context.Context) {
	if err := r.Cache.Delete(ctx, moviesCacheKey, likedCacheKey); err != nil {
		r.logger.Warn("Falha ao invalidar cache Redis.", map[string]interface{}{"error": err.Error()})
	}
}
