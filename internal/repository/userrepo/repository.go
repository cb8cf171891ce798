package userrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"gomovies/internal/domain"
	apperror "gomovies/internal/errors"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
)

// UserRepository implementa a interface domain.UserRepository sobre a
// collection "users" do MongoDB.
type UserRepository struct {
	collection *mongo.Collection
	DBTimeout  time.Duration
	logger     logger.Logger
}

// NewUserRepository cria uma nova instância do UserRepository, injetando a conexão.
func NewUserRepository(db *database.MongoDB, dbTimeout time.Duration, log logger.Logger) *UserRepository {
	return &UserRepository{
		collection: db.Collection("users"),
		DBTimeout:  dbTimeout,
		logger:     log,
	}
}

// Save insere um novo usuário na collection, atribuindo o id e o array vazio
// de referências de filmes.
func (r *UserRepository) Save(ctx context.Context, user domain.User) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	user.ID = uuid.NewString()
	if user.Movies == nil {
		user.Movies = []string{}
	}

	if _, err := r.collection.InsertOne(ctxTimeout, user); err != nil {
		r.logger.Error("Falha ao inserir usuário no Mongo.", err)
		return domain.User{}, apperror.NewDBError("failed to insert user", err)
	}

	r.logger.Info("Usuário salvo com sucesso no repositório.", map[string]interface{}{"user_id": user.ID, "username": user.Username})
	return user, nil
}

// FindByID busca um usuário pelo id interno.
func (r *UserRepository) FindByID(ctx context.Context, id string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var user domain.User
	err := r.collection.FindOne(ctxTimeout, bson.M{"_id": id}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado.", id))
		}
		r.logger.Error("Falha ao buscar usuário por id no Mongo.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by id", err)
	}

	return user, nil
}

// FindByUsername busca um usuário pelo username (chave natural do login).
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	var user domain.User
	err := r.collection.FindOne(ctxTimeout, bson.M{"username": username}).Decode(&user)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return domain.User{}, apperror.NewNotFoundError(fmt.Sprintf("Usuário '%s' não encontrado.", username))
		}
		r.logger.Error("Falha ao buscar usuário por username no Mongo.", err)
		return domain.User{}, apperror.NewDBError("failed to find user by username", err)
	}

	return user, nil
}

// FindByIDs busca em lote os usuários referenciados pelos subdocumentos de
// avaliação/curtida (o "populate" do lado Go).
func (r *UserRepository) FindByIDs(ctx context.Context, ids []string) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	if len(ids) == 0 {
		return []domain.User{}, nil
	}

	cursor, err := r.collection.Find(ctxTimeout, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		r.logger.Error("Falha ao buscar usuários por ids no Mongo.", err)
		return nil, apperror.NewDBError("failed to find users by ids", err)
	}

	var users []domain.User
	if err = cursor.All(ctxTimeout, &users); err != nil {
		return nil, apperror.NewDBError("failed to decode users", err)
	}
	return users, nil
}

// FindAll retorna todos os usuários da collection.
func (r *UserRepository) FindAll(ctx context.Context) ([]domain.User, error) {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctxTimeout, bson.M{})
	if err != nil {
		r.logger.Error("Falha ao listar usuários no Mongo.", err)
		return nil, apperror.NewDBError("failed to list users", err)
	}

	users := []domain.User{}
	if err = cursor.All(ctxTimeout, &users); err != nil {
		return nil, apperror.NewDBError("failed to decode users", err)
	}
	return users, nil
}

// AppendMovie acrescenta a referência de um filme ao backlink User.Movies.
// Usa $addToSet: a lista é append-only e nunca ganha duplicatas.
func (r *UserRepository) AppendMovie(ctx context.Context, userID string, movieID string) error {
	ctxTimeout, cancel := context.WithTimeout(ctx, r.DBTimeout)
	defer cancel()

	res, err := r.collection.UpdateOne(
		ctxTimeout,
		bson.M{"_id": userID},
		bson.M{"$addToSet": bson.M{"movies": movieID}},
	)
	if err != nil {
		r.logger.Error("Falha ao anexar referência de filme ao usuário.", err)
		return apperror.NewDBError("failed to append movie reference", err)
	}
	if res.MatchedCount == 0 {
		return apperror.NewNotFoundError(fmt.Sprintf("Usuário com id '%s' não encontrado.", userID))
	}

	return nil
}
