package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoDB encapsula o cliente e o database do MongoDB.
// É criado uma única vez no main.go e injetado nos repositórios.
type MongoDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewMongoDB conecta ao MongoDB, valida a conexão com um ping e retorna o
// wrapper pronto para uso.
func NewMongoDB(connectionString string, dbName string) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Limites de pool e timeouts de socket/seleção de servidor.
	clientOptions := options.Client().
		ApplyURI(connectionString).
		SetMaxPoolSize(50).
		SetServerSelectionTimeout(5 * time.Second).
		SetSocketTimeout(45 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar ao MongoDB: %w", err)
	}

	// Ping imediato: garante que a URI e o servidor estão corretos antes
	// do servidor HTTP começar a aceitar requisições.
	if err = client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("falha ao realizar o ping inicial no MongoDB: %w", err)
	}

	return &MongoDB{
		client: client,
		db:     client.Database(dbName),
	}, nil
}

// Collection retorna a collection com o nome informado.
func (m *MongoDB) Collection(name string) *mongo.Collection {
	return m.db.Collection(name)
}

// Close encerra a conexão com o MongoDB (chamado no shutdown).
func (m *MongoDB) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}
