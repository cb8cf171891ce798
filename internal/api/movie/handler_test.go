package movie_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"gomovies/internal/api/movie"
	"gomovies/internal/api/router"
	"gomovies/internal/api/user"
	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/token"
)

// MockMovieService é o mock da interface movie.MovieService.
type MockMovieService struct {
	mock.Mock
}

func (m *MockMovieService) ListMovies(ctx context.Context) ([]domain.Movie, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movie), args.Error(1)
}

func (m *MockMovieService) GetReviews(ctx context.Context, movieID int) ([]domain.ReviewWithUser, error) {
	args := m.Called(ctx, movieID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ReviewWithUser), args.Error(1)
}

func (m *MockMovieService) GetLikeSummary(ctx context.Context) ([]domain.LikeSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.LikeSummary), args.Error(1)
}

func (m *MockMovieService) UpsertReview(ctx context.Context, userID string, req domain.ReviewRequest) (domain.Movie, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(domain.Movie), args.Error(1)
}

func (m *MockMovieService) SetLike(ctx context.Context, userID string, req domain.LikeRequest) (domain.Movie, error) {
	args := m.Called(ctx, userID, req)
	return args.Get(0).(domain.Movie), args.Error(1)
}

func (m *MockMovieService) DeleteReview(ctx context.Context, userID string, movieID int) error {
	args := m.Called(ctx, userID, movieID)
	return args.Error(0)
}

// stubUserService satisfaz user.UserService; as rotas de usuário não são
// exercitadas nestes testes.
type stubUserService struct{}

func (stubUserService) Register(ctx context.Context, reg domain.UserRegistration) (domain.User, error) {
	return domain.User{}, nil
}

func (stubUserService) Login(ctx context.Context, username string, password string) (domain.TokenResponse, error) {
	return domain.TokenResponse{}, nil
}

func (stubUserService) ListUsers(ctx context.Context) ([]domain.UserWithMovies, error) {
	return nil, nil
}

func newTestRouter(movieSvc movie.MovieService, tokenSvc *token.Service) http.Handler {
	log := logger.NewLogger("fatal")
	movieHandler := movie.NewHandler(movieSvc, log)
	userHandler := user.NewHandler(stubUserService{}, log)
	return router.NewRouter(movieHandler, userHandler, tokenSvc)
}

func intPtr(v int) *int    { return &v }
func boolPtr(v bool) *bool { return &v }

func TestUpsertReviewEndpoint_Success(t *testing.T) {
	movieSvc := new(MockMovieService)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	r := newTestRouter(movieSvc, tokenSvc)

	bearer, err := tokenSvc.GenerateToken("u1", "ana")
	assert.NoError(t, err)

	expected := domain.Movie{
		ID:      "m1",
		MovieID: 5,
		Reviews: []domain.Review{{ReviewText: "nice film", User: "u1"}},
		Liked:   []domain.Like{},
	}
	movieSvc.On("UpsertReview", mock.Anything, "u1", domain.ReviewRequest{MovieID: intPtr(5), Review: "nice film"}).
		Return(expected, nil)

	body, _ := json.Marshal(map[string]interface{}{"movieId": 5, "review": "nice film"})
	req := httptest.NewRequest(http.MethodPost, "/api/movies/reviews", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp domain.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	assert.Equal(t, float64(5), data["movieId"])
	movieSvc.AssertExpectations(t)
}

func TestUpsertReviewEndpoint_Fail_NoToken(t *testing.T) {
	movieSvc := new(MockMovieService)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	r := newTestRouter(movieSvc, tokenSvc)

	body, _ := json.Marshal(map[string]interface{}{"movieId": 5, "review": "nice film"})
	req := httptest.NewRequest(http.MethodPost, "/api/movies/reviews", bytes.NewReader(body))
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp domain.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "UNAUTHORIZED", resp.Error)
	movieSvc.AssertNotCalled(t, "UpsertReview", mock.Anything, mock.Anything, mock.Anything)
}

func TestSetLikeEndpoint_Success(t *testing.T) {
	movieSvc := new(MockMovieService)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	r := newTestRouter(movieSvc, tokenSvc)

	bearer, _ := tokenSvc.GenerateToken("u1", "ana")

	expected := domain.Movie{ID: "m1", MovieID: 7, Liked: []domain.Like{{IsLiked: true, User: "u1"}}}
	movieSvc.On("SetLike", mock.Anything, "u1", domain.LikeRequest{MovieID: intPtr(7), Liked: boolPtr(true)}).
		Return(expected, nil)

	body, _ := json.Marshal(map[string]interface{}{"movieId": 7, "liked": true})
	req := httptest.NewRequest(http.MethodPost, "/api/movies/like", bytes.NewReader(body))
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	movieSvc.AssertExpectations(t)
}

func TestDeleteReviewEndpoint_Success(t *testing.T) {
	movieSvc := new(MockMovieService)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	r := newTestRouter(movieSvc, tokenSvc)

	bearer, _ := tokenSvc.GenerateToken("u1", "ana")
	movieSvc.On("DeleteReview", mock.Anything, "u1", 5).Return(nil)

	req := httptest.NewRequest(http.MethodDelete, "/api/movies/reviews/5", nil)
	req.Header.Set("Authorization", "Bearer "+bearer)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Message)
	movieSvc.AssertExpectations(t)
}

func TestGetReviewsEndpoint_Public(t *testing.T) {
	movieSvc := new(MockMovieService)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	r := newTestRouter(movieSvc, tokenSvc)

	reviews := []domain.ReviewWithUser{{ReviewText: "ok!", Username: "ana", Name: "Ana Souza"}}
	movieSvc.On("GetReviews", mock.Anything, 5).Return(reviews, nil)

	// Sem Authorization: a leitura de avaliações é pública
	req := httptest.NewRequest(http.MethodGet, "/api/movies/reviews/5", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp domain.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestListMoviesEndpoint_Fail_Empty(t *testing.T) {
	movieSvc := new(MockMovieService)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	r := newTestRouter(movieSvc, tokenSvc)

	movieSvc.On("ListMovies", mock.Anything).Return(nil, apperror.NewNotFoundError("Nenhum filme encontrado."))

	req := httptest.NewRequest(http.MethodGet, "/api/movies", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp domain.Response
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "NOT_FOUND", resp.Error)
}

func TestUnknownRoute_Returns404(t *testing.T) {
	movieSvc := new(MockMovieService)
	tokenSvc := token.NewService("segredo-de-teste", time.Hour)
	r := newTestRouter(movieSvc, tokenSvc)

	req := httptest.NewRequest(http.MethodGet, "/api/nao-existe", nil)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var body map[string]string
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "not found", body["error"])
}
