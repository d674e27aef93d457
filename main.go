package main

import (
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/tokenkit/analyzer"
	"github.com/tokenkit/catalog"
	"github.com/tokenkit/config"
	"github.com/tokenkit/handlers"
	"github.com/tokenkit/middlewares"
	"github.com/tokenkit/tokenizer/registry"
	"github.com/tokenkit/utils"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Nenhum arquivo .env encontrado, usando variáveis de ambiente do sistema.")
	}

	logger, _ := zap.NewProduction()
	defer logger.Sync()

	modelsFile := os.Getenv("MODELS_FILE")
	if modelsFile == "" {
		modelsFile = config.DefaultModelsFile
	}

	store, err := catalog.NewStore(modelsFile, logger)
	if err != nil {
		logger.Fatal("Erro ao carregar o catálogo de modelos", zap.Error(err))
	}

	engineRegistry, err := registry.NewEngineRegistry(logger)
	if err != nil {
		logger.Fatal("Erro ao inicializar o registro de motores", zap.Error(err))
	}

	tokenAnalyzer := analyzer.New(store, engineRegistry, logger)
	fileProcessor := utils.NewFileProcessor(logger)

	mux := http.NewServeMux()

	mux.Handle("/static/", http.StripPrefix("/static/", http.FileServer(http.Dir("static"))))

	mux.HandleFunc("/api/models", handlers.ModelsHandler(tokenAnalyzer, store, logger))
	mux.HandleFunc("/api/models/upload", handlers.UploadModelsHandler(store, logger))
	mux.HandleFunc("/api/engines", handlers.EnginesHandler(engineRegistry, logger))
	mux.HandleFunc("/api/tokenize", handlers.TokenizeHandler(tokenAnalyzer, logger))
	mux.HandleFunc("/api/tokenize/file", handlers.TokenizeFileHandler(tokenAnalyzer, fileProcessor, logger))
	mux.HandleFunc("/api/validate", handlers.ValidateHandler(tokenAnalyzer, logger))

	mux.HandleFunc("/ws", handlers.WebSocketHandler(tokenAnalyzer, logger))

	finalHandler := middlewares.ForceHTTPSMiddleware(middlewares.CORSMiddleware(mux), logger)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:         ":" + port,
		Handler:      finalHandler,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	logger.Info("Servidor iniciado na porta",
		zap.String("port", port),
		zap.String("models_file", modelsFile),
		zap.Strings("engines", engineRegistry.ListNames()),
	)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatal("Erro ao iniciar servidor", zap.Error(err))
	}
}
