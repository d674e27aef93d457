package words

import (
	"context"
	"strings"

	"github.com/tokenkit/config"
	"github.com/tokenkit/models"
	"github.com/tokenkit/tokenizer/engine"
)

// Engine tokeniza por palavras (separação em espaços em branco) e devolve
// também a lista de tokens, útil para inspeção no UI.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) GetName() string {
	return config.EngineWords
}

func (e *Engine) Tokenize(_ context.Context, text string, _ models.ModelInfo) (engine.Result, error) {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return engine.Result{}, nil
	}
	return engine.Result{
		TokenCount: len(fields),
		Tokens:     fields,
	}, nil
}
