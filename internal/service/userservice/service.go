package userservice

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/logger"
)

// TokenService é o contrato da camada de token (internal/pkg/token).
type TokenService interface {
	GenerateToken(userID string, username string) (string, error)
}

// Service implementa a interface domain.UserService: registro, login e
// listagem de usuários com as referências de filmes resolvidas.
type Service struct {
	userRepo  domain.UserRepository
	movieRepo domain.MovieRepository
	tokenSvc  TokenService
	logger    logger.Logger
}

// NewService cria uma nova instância do Serviço de Usuário.
// O MovieRepository é usado apenas no "populate" da listagem.
func NewService(userRepo domain.UserRepository, movieRepo domain.MovieRepository, tokenSvc TokenService, log logger.Logger) *Service {
	return &Service{
		userRepo:  userRepo,
		movieRepo: movieRepo,
		tokenSvc:  tokenSvc,
		logger:    log,
	}
}

// Register registra um novo usuário: valida, faz o hashing da senha e persiste.
// A senha em texto puro nunca chega ao repositório.
func (s *Service) Register(ctx context.Context, registration domain.UserRegistration) (domain.User, error) {
	// 1. Validação básica
	if registration.Username == "" || registration.Password == "" {
		return domain.User{}, apperror.NewValidationError("Username e senha são obrigatórios.")
	}

	// 2. Unicidade do username (chave natural do login)
	_, err := s.userRepo.FindByUsername(ctx, registration.Username)
	if err == nil {
		return domain.User{}, apperror.NewConflictError("O username '" + registration.Username + "' já está em uso.")
	}
	var notFound *apperror.NotFoundError
	if !errors.As(err, &notFound) {
		// Falha real de infraestrutura, não "usuário inexistente"
		return domain.User{}, err
	}

	// 3. Hashing da senha
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(registration.Password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, apperror.NewInternalError("Falha ao gerar hash da senha.", err)
	}

	newUser := domain.User{
		Username:     registration.Username,
		Name:         registration.Name,
		PasswordHash: string(hashedPassword),
	}

	// 4. Persistência
	user, err := s.userRepo.Save(ctx, newUser)
	if err != nil {
		return domain.User{}, err
	}

	s.logger.Info("Novo usuário registrado.", map[string]interface{}{"user_id": user.ID, "username": user.Username})
	return user, nil
}

// Login autentica um usuário, verifica a senha e emite um JWT com o id dele.
func (s *Service) Login(ctx context.Context, username string, password string) (domain.TokenResponse, error) {
	if username == "" || password == "" {
		return domain.TokenResponse{}, apperror.NewUnauthorizedError("Username e senha são obrigatórios.")
	}

	// Usuário inexistente responde igual a senha errada, para não dar dicas.
	user, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		var notFound *apperror.NotFoundError
		if errors.As(err, &notFound) {
			return domain.TokenResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
		}
		return domain.TokenResponse{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return domain.TokenResponse{}, apperror.NewUnauthorizedError("Credenciais inválidas.")
	}

	tokenString, err := s.tokenSvc.GenerateToken(user.ID, user.Username)
	if err != nil {
		return domain.TokenResponse{}, apperror.NewInternalError("Falha ao gerar token de autenticação.", err)
	}

	return domain.TokenResponse{
		Token:    tokenString,
		Username: user.Username,
		Name:     user.Name,
	}, nil
}

// ListUsers retorna todos os usuários com o campo movies populado com os
// documentos de filme referenciados (join explícito via busca em lote).
func (s *Service) ListUsers(ctx context.Context) ([]domain.UserWithMovies, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	// União dos ids referenciados por todos os usuários, uma única busca
	ids := []string{}
	for _, user := range users {
		ids = append(ids, user.Movies...)
	}
	movies, err := s.movieRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	moviesByID := make(map[string]domain.Movie, len(movies))
	for _, movie := range movies {
		moviesByID[movie.ID] = movie
	}

	populated := make([]domain.UserWithMovies, 0, len(users))
	for _, user := range users {
		entry := domain.UserWithMovies{
			ID:           user.ID,
			Username:     user.Username,
			Name:         user.Name,
			PasswordHash: user.PasswordHash,
			Movies:       make([]domain.Movie, 0, len(user.Movies)),
		}
		for _, movieID := range user.Movies {
			if movie, ok := moviesByID[movieID]; ok {
				entry.Movies = append(entry.Movies, movie)
			}
		}
		populated = append(populated, entry)
	}
	return populated, nil
}
