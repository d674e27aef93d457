package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tokenkit/config"
	"github.com/tokenkit/tokenizer/engine"
	"github.com/tokenkit/tokenizer/remote"
	"github.com/tokenkit/tokenizer/simple"
	"github.com/tokenkit/tokenizer/tiktoken"
	"github.com/tokenkit/tokenizer/words"
	"go.uber.org/zap"
)

// EngineRegistry mapeia nomes para motores de tokenização. Populado uma vez
// na inicialização e imutável depois disso; por isso as leituras dispensam
// lock.
type EngineRegistry struct {
	engines     map[string]engine.Engine
	defaultName string
	logger      *zap.Logger
}

// NewEngineRegistry monta o registro completo: os motores embutidos sempre
// entram; tiktoken e o motor remoto são opcionais e, quando não conseguem
// inicializar, apenas geram um Warn e ficam de fora (o mesmo tratamento que
// um provedor sem credenciais).
func NewEngineRegistry(logger *zap.Logger) (*EngineRegistry, error) {
	r := &EngineRegistry{
		engines:     make(map[string]engine.Engine),
		defaultName: config.DefaultEngine,
		logger:      logger,
	}

	if err := r.Register(config.EngineSimple, simple.New()); err != nil {
		return nil, err
	}
	if err := r.Register(config.EngineWords, words.New()); err != nil {
		return nil, err
	}

	if err := r.configureTiktoken(); err != nil {
		return nil, err
	}
	if err := r.configureRemote(); err != nil {
		return nil, err
	}

	if _, ok := r.engines[r.defaultName]; !ok {
		return nil, fmt.Errorf("motor padrão '%s' não está registrado", r.defaultName)
	}

	logger.Info("Registro de motores inicializado",
		zap.Strings("motores", r.ListNames()),
		zap.String("padrao", r.defaultName))
	return r, nil
}

// Register adiciona um motor. Nome duplicado é erro de configuração e deve
// ser fatal na inicialização: o processo não pode subir com registros
// ambíguos.
func (r *EngineRegistry) Register(name string, eng engine.Engine) error {
	key := strings.ToLower(name)
	if _, exists := r.engines[key]; exists {
		return fmt.Errorf("motor de tokenização '%s' já registrado", name)
	}
	r.engines[key] = eng
	return nil
}

// Resolve retorna o motor pelo nome. Nome vazio ou desconhecido degrada para
// o motor padrão em vez de falhar: um nome errado é erro de entrada do
// chamador, não falha do sistema, e o campo engineUsed do resultado permite
// detectar o fallback.
func (r *EngineRegistry) Resolve(name string) engine.Engine {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return r.engines[r.defaultName]
	}

	eng, ok := r.engines[key]
	if !ok {
		r.logger.Debug("Motor desconhecido, usando o padrão",
			zap.String("solicitado", name),
			zap.String("padrao", r.defaultName))
		return r.engines[r.defaultName]
	}
	return eng
}

// ListNames retorna os nomes registrados, ordenados para saída estável.
func (r *EngineRegistry) ListNames() []string {
	names := make([]string, 0, len(r.engines))
	for name := range r.engines {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *EngineRegistry) configureTiktoken() error {
	eng, err := tiktoken.New()
	if err != nil {
		r.logger.Warn("Motor tiktoken não configurado.", zap.Error(err))
		return nil
	}
	if err := r.Register(config.EngineTiktoken, eng); err != nil {
		return err
	}
	r.logger.Info("Motor tiktoken configurado.")
	return nil
}

func (r *EngineRegistry) configureRemote() error {
	baseURL := os.Getenv("REMOTE_TOKENIZER_URL")
	if baseURL == "" {
		r.logger.Warn("Motor remoto não configurado. REMOTE_TOKENIZER_URL não definida.")
		return nil
	}

	apiKey := os.Getenv("REMOTE_TOKENIZER_API_KEY")
	eng := remote.NewClient(baseURL, apiKey, r.logger, config.DefaultMaxRetries, config.DefaultInitialBackoff)
	if err := r.Register(config.EngineRemote, eng); err != nil {
		return err
	}
	r.logger.Info("Motor remoto configurado.", zap.String("url", baseURL))
	return nil
}
