package simple

import (
	"context"
	"testing"

	"github.com/tokenkit/models"
)

func TestTokenize(t *testing.T) {
	eng := New()

	tests := []struct {
		nome     string
		texto    string
		esperado int
	}{
		{"texto vazio", "", 0},
		{"um caractere", "a", 1},
		{"quatro caracteres", "abcd", 1},
		{"cinco caracteres", "abcde", 2},
		{"dez caracteres", "aaaaaaaaaa", 3},
	}

	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			res, err := eng.Tokenize(context.Background(), tt.texto, models.ModelInfo{})
			if err != nil {
				t.Fatalf("erro inesperado: %v", err)
			}
			if res.TokenCount != tt.esperado {
				t.Errorf("TokenCount = %d, esperado %d", res.TokenCount, tt.esperado)
			}
		})
	}
}

func TestGetName(t *testing.T) {
	if got := New().GetName(); got != "simple" {
		t.Errorf("GetName() = %q, esperado \"simple\"", got)
	}
}
