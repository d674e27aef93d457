package remote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tokenkit/models"
	"go.uber.org/zap"
)

func TestTokenizeDelegaParaServicoRemoto(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/tokenize" || r.Method != http.MethodPost {
			t.Errorf("requisição inesperada: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")

		var body struct {
			Content string `json:"content"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("payload inválido: %v", err)
		}
		if body.Content != "olá mundo" {
			t.Errorf("content = %q", body.Content)
		}

		json.NewEncoder(w).Encode(map[string][]int{"tokens": {10, 20, 30}})
	}))
	defer server.Close()

	eng := NewClient(server.URL, "chave-secreta", zap.NewNop(), 1, time.Millisecond)

	res, err := eng.Tokenize(context.Background(), "olá mundo", models.ModelInfo{})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if res.TokenCount != 3 {
		t.Errorf("TokenCount = %d, esperado 3", res.TokenCount)
	}
	if gotAuth != "Bearer chave-secreta" {
		t.Errorf("Authorization = %q", gotAuth)
	}
}

func TestTokenizeTextoVazioNaoChamaServico(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("texto vazio não deveria gerar chamada remota")
	}))
	defer server.Close()

	eng := NewClient(server.URL, "", zap.NewNop(), 1, time.Millisecond)

	res, err := eng.Tokenize(context.Background(), "", models.ModelInfo{})
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if res.TokenCount != 0 {
		t.Errorf("TokenCount = %d, esperado 0", res.TokenCount)
	}
}

func TestTokenizeErroDoServico(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "sem vocabulário carregado", http.StatusBadRequest)
	}))
	defer server.Close()

	eng := NewClient(server.URL, "", zap.NewNop(), 1, time.Millisecond)

	_, err := eng.Tokenize(context.Background(), "texto", models.ModelInfo{})
	if err == nil {
		t.Fatal("esperava erro do serviço remoto")
	}
	if !strings.Contains(err.Error(), "400") {
		t.Errorf("erro deveria carregar o status HTTP: %v", err)
	}
}

func TestCircuitBreakerAbreAposFalhas(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "fora do ar", http.StatusBadGateway)
	}))
	defer server.Close()

	eng := NewClient(server.URL, "", zap.NewNop(), 1, time.Millisecond)

	// Acumula falhas até o breaker abrir
	for i := 0; i < 10; i++ {
		eng.Tokenize(context.Background(), "texto", models.ModelInfo{})
	}

	_, err := eng.Tokenize(context.Background(), "texto", models.ModelInfo{})
	if err == nil || !strings.Contains(err.Error(), "circuit breaker") {
		t.Errorf("breaker deveria estar aberto após falhas consecutivas: %v", err)
	}
}
