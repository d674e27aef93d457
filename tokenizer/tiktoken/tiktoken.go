package tiktoken

import (
	"context"
	"fmt"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"github.com/tokenkit/config"
	"github.com/tokenkit/models"
	"github.com/tokenkit/tokenizer/engine"
)

// Engine conta tokens com BPE exato via tiktoken-go. O encoding vem do hint
// do modelo quando presente; caso contrário usa cl100k_base, que é o do
// GPT-4 e uma aproximação razoável para a maioria dos modelos modernos.
type Engine struct {
	mu        sync.Mutex
	encodings map[string]*tiktoken.Tiktoken
}

// New cria o motor e valida que o encoding padrão carrega. A criação falha
// se o vocabulário BPE não estiver disponível; o registro trata isso como
// motor opcional.
func New() (*Engine, error) {
	enc, err := tiktoken.GetEncoding(config.DefaultEncoding)
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar encoding %s: %w", config.DefaultEncoding, err)
	}
	return &Engine{
		encodings: map[string]*tiktoken.Tiktoken{config.DefaultEncoding: enc},
	}, nil
}

func (e *Engine) GetName() string {
	return config.EngineTiktoken
}

func (e *Engine) Tokenize(_ context.Context, text string, model models.ModelInfo) (engine.Result, error) {
	if text == "" {
		return engine.Result{}, nil
	}

	enc, err := e.encodingFor(model.Encoding)
	if err != nil {
		return engine.Result{}, err
	}

	ids := enc.Encode(text, nil, nil)
	return engine.Result{TokenCount: len(ids)}, nil
}

// encodingFor resolve (e cacheia) o encoding pedido pelo modelo. Um hint
// desconhecido degrada para o encoding padrão em vez de falhar a requisição.
func (e *Engine) encodingFor(hint string) (*tiktoken.Tiktoken, error) {
	if hint == "" {
		hint = config.DefaultEncoding
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if enc, ok := e.encodings[hint]; ok {
		return enc, nil
	}

	enc, err := tiktoken.GetEncoding(hint)
	if err != nil {
		enc = e.encodings[config.DefaultEncoding]
	}
	e.encodings[hint] = enc
	return enc, nil
}
