package simple

import (
	"context"

	"github.com/tokenkit/config"
	"github.com/tokenkit/models"
	"github.com/tokenkit/tokenizer/engine"
)

// Engine é o motor de referência, sem dependências externas: aproxima
// ~4 caracteres por token, razoável para texto em inglês.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

func (e *Engine) GetName() string {
	return config.EngineSimple
}

func (e *Engine) Tokenize(_ context.Context, text string, _ models.ModelInfo) (engine.Result, error) {
	if text == "" {
		return engine.Result{}, nil
	}
	return engine.Result{TokenCount: (len(text) + 3) / 4}, nil
}
