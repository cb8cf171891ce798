package domain

import "context"

// Movie representa o documento de filme (a Entidade principal do domínio).
// MovieID é o identificador externo do catálogo, distinto do _id interno;
// as buscas de negócio são sempre feitas por MovieID.
type Movie struct {
	ID      string   `json:"id" bson:"_id"`
	MovieID int      `json:"movieId" bson:"movie_id"`
	Reviews []Review `json:"reviews" bson:"reviews"`
	Liked   []Like   `json:"liked" bson:"liked"`
}

// Review é o subdocumento de avaliação embutido em Movie.
// Invariante: no máximo um Review por par (filme, usuário).
type Review struct {
	ReviewText string `json:"reviewText" bson:"review_text"`
	User       string `json:"user" bson:"user"`
}

// Like é o subdocumento de curtida embutido em Movie.
// Invariante: no máximo um Like por par (filme, usuário).
type Like struct {
	IsLiked bool   `json:"isLiked" bson:"is_liked"`
	User    string `json:"user" bson:"user"`
}

// ReviewWithUser é a projeção de Review com os dados do autor resolvidos,
// retornada por GET /api/movies/reviews/{movieId}.
type ReviewWithUser struct {
	ReviewText string `json:"reviewText"`
	Username   string `json:"username"`
	Name       string `json:"name"`
}

// UserRef é a referência resumida de usuário usada nas projeções de curtidas.
type UserRef struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Name     string `json:"name,omitempty"`
}

// LikeWithUser é a projeção de Like com o usuário resolvido.
type LikeWithUser struct {
	IsLiked bool    `json:"isLiked"`
	User    UserRef `json:"user"`
}

// LikeSummary agrega as curtidas de um filme (GET /api/movies/get-likes).
type LikeSummary struct {
	MovieID    int            `json:"movieId"`
	Liked      []LikeWithUser `json:"liked"`
	TotalLikes int            `json:"totalLikes"`
}

// ReviewRequest é o payload de POST /api/movies/reviews.
// MovieID é ponteiro para distinguir "ausente" de zero.
type ReviewRequest struct {
	MovieID *int   `json:"movieId"`
	Review  string `json:"review"`
}

// LikeRequest é o payload de POST /api/movies/like.
// Liked é ponteiro: o cliente precisa enviar o booleano explicitamente.
type LikeRequest struct {
	MovieID *int  `json:"movieId"`
	Liked   *bool `json:"liked"`
}

// MovieRepository define o contrato de persistência para a entidade Movie.
// As operações de escrita sobre os arrays embutidos são expressões condicionais
// executadas atomicamente pelo banco; cada uma informa se encontrou o alvo,
// permitindo que o Serviço percorra a escada set -> push -> insert.
type MovieRepository interface {
	FindAll(ctx context.Context) ([]Movie, error)
	FindByMovieID(ctx context.Context, movieID int) (Movie, error)
	FindByIDs(ctx context.Context, ids []string) ([]Movie, error)
	FindLiked(ctx context.Context) ([]Movie, error)

	InsertWithReview(ctx context.Context, movieID int, review Review) (Movie, error)
	InsertWithLike(ctx context.Context, movieID int, like Like) (Movie, error)
	SetReviewText(ctx context.Context, movieID int, userID string, text string) (bool, error)
	PushReview(ctx context.Context, movieID int, review Review) (bool, error)
	SetLike(ctx context.Context, movieID int, userID string, isLiked bool) (bool, error)
	PushLike(ctx context.Context, movieID int, like Like) (bool, error)
	PullReview(ctx context.Context, movieID int, userID string) (bool, error)
}

// MovieService define o contrato de lógica de negócio para filmes,
// avaliações e curtidas.
type MovieService interface {
	ListMovies(ctx context.Context) ([]Movie, error)
	GetReviews(ctx context.Context, movieID int) ([]ReviewWithUser, error)
	GetLikeSummary(ctx context.Context) ([]LikeSummary, error)
	UpsertReview(ctx context.Context, userID string, req ReviewRequest) (Movie, error)
	SetLike(ctx context.Context, userID string, req LikeRequest) (Movie, error)
	DeleteReview(ctx context.Context, userID string, movieID int) error
}
