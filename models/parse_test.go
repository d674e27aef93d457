package models

import (
	"strings"
	"testing"
)

func TestParseCatalogArray(t *testing.T) {
	payload := `[
		{"id": "gpt-4o", "provider": "OpenAI", "maxTokens": 128000, "inputPricePer1K": 0.0025},
		{"ID": "claude-sonnet", "PROVIDER": "Anthropic", "maxtokens": 200000}
	]`

	entries, err := ParseCatalog([]byte(payload))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("esperava 2 modelos, got %d", len(entries))
	}

	// Nomes de campo são case-insensitive na leitura
	if entries[1].ID != "claude-sonnet" || entries[1].MaxTokens != 200000 {
		t.Errorf("campos com grafia diferente deveriam ser aceitos: %+v", entries[1])
	}
	if entries[0].InputPricePer1K == nil || *entries[0].InputPricePer1K != 0.0025 {
		t.Errorf("preço opcional deveria ser preservado: %+v", entries[0])
	}
}

func TestParseCatalogEnvelope(t *testing.T) {
	payload := `{"models": [{"id": "m1", "provider": "Acme", "maxTokens": 100}]}`

	entries, err := ParseCatalog([]byte(payload))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != "m1" {
		t.Errorf("payload em envelope deveria ser aceito: %+v", entries)
	}
}

func TestParseCatalogInvalido(t *testing.T) {
	tests := []struct {
		nome    string
		payload string
		trecho  string
	}{
		{"vazio", "", "vazio"},
		{"json quebrado", "[{", "inválido"},
		{"sem campo models", `{"foo": 1}`, "models"},
		{"id ausente", `[{"provider": "Acme", "maxTokens": 10}]`, "'id'"},
		{"maxTokens zero", `[{"id": "m1", "provider": "Acme", "maxTokens": 0}]`, "'maxTokens'"},
		{"preço negativo", `[{"id": "m1", "provider": "Acme", "maxTokens": 10, "inputPricePer1K": -1}]`, "'inputPricePer1K'"},
	}

	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.payload))
			if err == nil {
				t.Fatal("esperava erro, got nil")
			}
			if !strings.Contains(err.Error(), tt.trecho) {
				t.Errorf("erro deveria mencionar %q: %v", tt.trecho, err)
			}
		})
	}
}

func TestParseCatalogErroIndicaIndice(t *testing.T) {
	payload := `[
		{"id": "ok", "provider": "Acme", "maxTokens": 10},
		{"id": "", "provider": "Acme", "maxTokens": 10}
	]`

	_, err := ParseCatalog([]byte(payload))
	if err == nil {
		t.Fatal("esperava erro, got nil")
	}
	if !strings.Contains(err.Error(), "entrada 1") {
		t.Errorf("erro deveria apontar o índice da entrada inválida: %v", err)
	}
}
