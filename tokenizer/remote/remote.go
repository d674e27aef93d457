package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/tokenkit/config"
	"github.com/tokenkit/models"
	"github.com/tokenkit/tokenizer/engine"
	"github.com/tokenkit/utils"
	"go.uber.org/zap"
)

// Engine delega a tokenização para um serviço externo no estilo
// llama-server: POST /tokenize com {"content": texto} respondendo
// {"tokens": [...]}. Protegido por retry exponencial e circuit breaker.
type Engine struct {
	baseURL     string
	apiKey      string
	logger      *zap.Logger
	httpClient  *http.Client
	breaker     *utils.CircuitBreaker
	maxAttempts int
	backoff     time.Duration
}

func NewClient(baseURL, apiKey string, logger *zap.Logger, maxAttempts int, backoff time.Duration) *Engine {
	return &Engine{
		baseURL:     baseURL,
		apiKey:      apiKey,
		logger:      logger,
		httpClient:  utils.NewHTTPClient(logger, config.RemoteTokenizerTimeout),
		breaker:     utils.NewCircuitBreaker(config.DefaultBreakerThreshold, config.DefaultBreakerTimeout),
		maxAttempts: maxAttempts,
		backoff:     backoff,
	}
}

func (e *Engine) GetName() string {
	return config.EngineRemote
}

func (e *Engine) Tokenize(ctx context.Context, text string, _ models.ModelInfo) (engine.Result, error) {
	if text == "" {
		return engine.Result{}, nil
	}

	if !e.breaker.Allow() {
		return engine.Result{}, fmt.Errorf("tokenizador remoto indisponível (circuit breaker aberto)")
	}

	payload, err := json.Marshal(map[string]string{"content": text})
	if err != nil {
		return engine.Result{}, fmt.Errorf("erro ao serializar payload: %w", err)
	}

	count, err := utils.Retry(ctx, e.logger, e.maxAttempts, e.backoff, func(ctx context.Context) (int, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/tokenize", utils.NewJSONReader(payload))
		if err != nil {
			return 0, fmt.Errorf("erro ao criar requisição: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if e.apiKey != "" {
			req.Header.Set("Authorization", "Bearer "+e.apiKey)
		}

		resp, err := e.httpClient.Do(req)
		if err != nil {
			return 0, err
		}
		return parseTokenizeResponse(resp)
	})
	if err != nil {
		e.breaker.RecordFailure()
		return engine.Result{}, err
	}

	e.breaker.RecordSuccess()
	return engine.Result{TokenCount: count}, nil
}

func parseTokenizeResponse(resp *http.Response) (int, error) {
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, fmt.Errorf("erro ao ler resposta: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return 0, &utils.APIError{StatusCode: resp.StatusCode, Message: string(body)}
	}

	var result struct {
		Tokens []int `json:"tokens"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return 0, fmt.Errorf("erro ao decodificar resposta: %w", err)
	}

	return len(result.Tokens), nil
}
