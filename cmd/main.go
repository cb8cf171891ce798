package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	// Pacotes de infraestrutura e utilitários
	"gomovies/config"
	"gomovies/internal/pkg/cache"
	"gomovies/internal/pkg/database"
	"gomovies/internal/pkg/logger"
	"gomovies/internal/pkg/token"

	// Camadas da aplicação para Injeção de Dependências
	"gomovies/internal/api/movie"
	"gomovies/internal/api/router"
	"gomovies/internal/api/user"
	"gomovies/internal/repository/movierepo"
	"gomovies/internal/repository/userrepo"
	"gomovies/internal/service/movieservice"
	"gomovies/internal/service/userservice"
)

func main() {
	// 1. Configuração e Inicialização

	// Carrega variáveis de ambiente do arquivo .env, se existir.
	// Em ambientes como Docker as variáveis já vêm do sistema.
	if err := godotenv.Load(); err != nil {
		stdlog.Println("Aviso: arquivo .env não encontrado. Carregando configs apenas do ambiente do sistema.")
	}

	cfg := config.LoadConfig()
	log := logger.NewLogger(cfg.LogLevel)
	log.Info("Configurações carregadas.", nil)

	// 2. Conexão com Recursos de Infraestrutura

	// A. Banco de Dados (MongoDB)
	db, err := database.NewMongoDB(cfg.MongoURI, cfg.MongoDBName)
	if err != nil {
		log.Fatal("Falha ao conectar ao MongoDB.", err)
	}
	log.Info("Conexão MongoDB estabelecida.", nil)

	// B. Cache (Redis)
	cacheClient := cache.NewRedisClient(cfg.RedisAddr)
	log.Info("Cliente Redis inicializado.", nil)

	// C. Serviço de Tokens (JWT)
	tokenSvc := token.NewService(cfg.JWTSecretKey, cfg.TokenExpiry)

	// 3. Injeção de Dependências (Repository -> Service -> Handler)

	userRepo := userrepo.NewUserRepository(db, cfg.DBTimeout, log)
	movieRepo := movierepo.NewMovieRepository(db, cacheClient, cfg.DBTimeout, cfg.CacheTTL, log)

	userSvc := userservice.NewService(userRepo, movieRepo, tokenSvc, log)
	movieSvc := movieservice.NewService(movieRepo, userRepo, log)

	userHandler := user.NewHandler(userSvc, log)
	movieHandler := movie.NewHandler(movieSvc, log)

	// 4. Configuração e Início do Roteador/Servidor

	r := router.NewRouter(movieHandler, userHandler, tokenSvc)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// 5. Execução e Graceful Shutdown
	go func() {
		log.Info("Servidor GoMovies ouvindo na porta", map[string]interface{}{"port": cfg.Port})
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Servidor falhou.", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Sinal de encerramento recebido. Desligando servidor...", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Desligamento do servidor forçado.", err)
	}

	// Encerra a conexão com o Mongo por último.
	if err := db.Close(ctx); err != nil {
		log.Error("Falha ao desconectar do MongoDB.", err)
	}

	log.Info("Servidor encerrado com sucesso.", nil)
}
