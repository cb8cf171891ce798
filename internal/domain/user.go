package domain

import "context"

// User representa a entidade do usuário no sistema.
// O campo Movies guarda as referências (ids) dos filmes que o usuário já avaliou.
type User struct {
	ID           string   `json:"id" bson:"_id"`
	Username     string   `json:"username" bson:"username"`
	Name         string   `json:"name,omitempty" bson:"name,omitempty"`
	PasswordHash string   `json:"passwordHash" bson:"password_hash"`
	Movies       []string `json:"movies" bson:"movies"`
}

// UserWithMovies é a projeção de User com as referências de filmes resolvidas
// (equivalente ao "populate" feito na leitura de GET /api/users).
type UserWithMovies struct {
	ID           string  `json:"id"`
	Username     string  `json:"username"`
	Name         string  `json:"name,omitempty"`
	PasswordHash string  `json:"passwordHash"`
	Movies       []Movie `json:"movies"`
}

// UserRegistration representa o payload de entrada para o registro.
type UserRegistration struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
}

// TokenResponse é o corpo de sucesso do login.
type TokenResponse struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// UserRepository define o contrato de persistência para a entidade User.
type UserRepository interface {
	Save(ctx context.Context, user User) (User, error)
	FindByID(ctx context.Context, id string) (User, error)
	FindByUsername(ctx context.Context, username string) (User, error)
	FindByIDs(ctx context.Context, ids []string) ([]User, error)
	FindAll(ctx context.Context) ([]User, error)
	AppendMovie(ctx context.Context, userID string, movieID string) error
}

// UserService define o contrato de lógica de negócio para a entidade User.
type UserService interface {
	Register(ctx context.Context, registration UserRegistration) (User, error)
	Login(ctx context.Context, username string, password string) (TokenResponse, error)
	ListUsers(ctx context.Context) ([]UserWithMovies, error)
}
