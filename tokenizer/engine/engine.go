package engine

import (
	"context"

	"github.com/tokenkit/models"
)

// Result é a saída de um motor de tokenização. Tokens é opcional: motores
// que só contam deixam o campo nulo.
type Result struct {
	TokenCount int
	Tokens     []string
}

// Engine define a interface para todos os motores de tokenização.
// Implementações devem ser puras e seguras para chamadas concorrentes;
// texto vazio sempre produz TokenCount zero.
type Engine interface {
	Tokenize(ctx context.Context, text string, model models.ModelInfo) (Result, error)
	GetName() string
}
