package config

import "time"

const (
	// Catálogo de modelos
	DefaultModelsFile = "models.json" // Pode ser sobrescrito por MODELS_FILE no .env

	// Motores de tokenização
	DefaultEngine   = "simple" // Motor usado quando nenhum (ou um desconhecido) é pedido
	EngineSimple    = "simple"
	EngineWords     = "words"
	EngineTiktoken  = "tiktoken"
	EngineRemote    = "remote"
	DefaultEncoding = "cl100k_base" // Encoding usado quando o modelo não traz um hint

	// Motor remoto (estilo llama-server, POST /tokenize)
	RemoteTokenizerTimeout = 30 * time.Second

	// Configurações de Retry (usadas apenas pelo motor remoto)
	DefaultMaxRetries     = 3
	DefaultInitialBackoff = 2 * time.Second

	// Circuit breaker do motor remoto
	DefaultBreakerThreshold = 5
	DefaultBreakerTimeout   = 30 * time.Second

	// Configurações Gerais de Log
	DefaultLogFile = "app.log"
)
