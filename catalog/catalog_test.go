package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/tokenkit/models"
	"go.uber.org/zap"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "models.json")
	store, err := NewStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("erro inesperado ao criar store: %v", err)
	}
	return store
}

func model(id, provider string, maxTokens int) models.ModelInfo {
	return models.ModelInfo{ID: id, Provider: provider, MaxTokens: maxTokens}
}

func TestNewStoreArquivoAusente(t *testing.T) {
	store := newTestStore(t)
	if got := store.Count(); got != 0 {
		t.Errorf("catálogo deveria iniciar vazio, tem %d modelos", got)
	}
}

func TestGetByIDCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.ReplaceAll([]models.ModelInfo{model("gpt-4o", "OpenAI", 128000)}); err != nil {
		t.Fatalf("ReplaceAll falhou: %v", err)
	}

	upper, okUpper := store.GetByID("GPT-4O")
	lower, okLower := store.GetByID("gpt-4o")
	if !okUpper || !okLower {
		t.Fatalf("GetByID deveria encontrar o modelo nas duas grafias")
	}
	if !reflect.DeepEqual(upper, lower) {
		t.Errorf("as duas buscas deveriam retornar a mesma entrada: %+v != %+v", upper, lower)
	}

	if _, ok := store.GetByID("inexistente"); ok {
		t.Error("GetByID não deveria encontrar modelo inexistente")
	}
}

func TestReplaceAllDeduplicaUltimaOcorrencia(t *testing.T) {
	store := newTestStore(t)

	count, err := store.ReplaceAll([]models.ModelInfo{
		model("m1", "Acme", 100),
		model("m2", "Acme", 50),
		model("m1", "Acme", 300),
	})
	if err != nil {
		t.Fatalf("ReplaceAll falhou: %v", err)
	}
	if count != 2 {
		t.Errorf("snapshot instalado deveria ter 2 modelos, retornou %d", count)
	}

	m1, ok := store.GetByID("m1")
	if !ok {
		t.Fatal("m1 deveria existir")
	}
	if m1.MaxTokens != 300 {
		t.Errorf("última ocorrência deveria vencer: maxTokens = %d, esperado 300", m1.MaxTokens)
	}
}

func TestMergeUpsertPreservaPosicaoEGrafia(t *testing.T) {
	// Cenário: catálogo com m1; merge de [M1 atualizado, m2 novo]
	store := newTestStore(t)
	if _, err := store.ReplaceAll([]models.ModelInfo{model("m1", "Acme", 100)}); err != nil {
		t.Fatalf("ReplaceAll falhou: %v", err)
	}

	count, err := store.Merge([]models.ModelInfo{
		model("M1", "Acme", 200),
		model("m2", "Acme", 50),
	})
	if err != nil {
		t.Fatalf("Merge falhou: %v", err)
	}
	if count != 2 {
		t.Errorf("Merge deveria retornar o número de entradas processadas (2), retornou %d", count)
	}

	all := store.GetAll()
	if len(all) != 2 {
		t.Fatalf("catálogo deveria ter exatamente 2 modelos, tem %d", len(all))
	}
	if all[0].ID != "m1" {
		t.Errorf("a grafia original do id deveria ser preservada na posição original, got %q", all[0].ID)
	}
	if all[0].MaxTokens != 200 {
		t.Errorf("m1 deveria ter sido atualizado para maxTokens 200, got %d", all[0].MaxTokens)
	}
	if all[1].ID != "m2" || all[1].MaxTokens != 50 {
		t.Errorf("m2 deveria ter sido anexado ao final: %+v", all[1])
	}
}

func TestMergeIdempotente(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.ReplaceAll([]models.ModelInfo{model("m1", "Acme", 100)}); err != nil {
		t.Fatalf("ReplaceAll falhou: %v", err)
	}

	incoming := []models.ModelInfo{
		model("M1", "Acme", 200),
		model("m2", "Acme", 50),
	}

	if _, err := store.Merge(incoming); err != nil {
		t.Fatalf("primeiro Merge falhou: %v", err)
	}
	first := store.GetAll()

	if _, err := store.Merge(incoming); err != nil {
		t.Fatalf("segundo Merge falhou: %v", err)
	}
	second := store.GetAll()

	if !reflect.DeepEqual(first, second) {
		t.Errorf("Merge deveria ser idempotente:\nprimeiro: %+v\nsegundo:  %+v", first, second)
	}
}

func TestPersistenciaRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.json")
	store, err := NewStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("erro ao criar store: %v", err)
	}

	price := 0.03
	entrada := models.ModelInfo{
		ID:              "m1",
		Provider:        "Acme",
		MaxTokens:       100,
		InputPricePer1K: &price,
		Encoding:        "cl100k_base",
	}
	if _, err := store.ReplaceAll([]models.ModelInfo{entrada}); err != nil {
		t.Fatalf("ReplaceAll falhou: %v", err)
	}

	// Um novo store no mesmo arquivo deve enxergar o mesmo snapshot
	reloaded, err := NewStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("erro ao recarregar store: %v", err)
	}
	if !reflect.DeepEqual(store.GetAll(), reloaded.GetAll()) {
		t.Errorf("round-trip do catálogo perdeu dados:\nantes:  %+v\ndepois: %+v", store.GetAll(), reloaded.GetAll())
	}
}

func TestPersistenceErrorFazRollback(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "catalogo")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(dir, "models.json")

	store, err := NewStore(path, zap.NewNop())
	if err != nil {
		t.Fatalf("erro ao criar store: %v", err)
	}
	if _, err := store.ReplaceAll([]models.ModelInfo{model("m1", "Acme", 100)}); err != nil {
		t.Fatalf("ReplaceAll falhou: %v", err)
	}
	before := store.GetAll()

	// Remove o diretório para forçar falha de persistência
	if err := os.RemoveAll(dir); err != nil {
		t.Fatal(err)
	}

	_, err = store.Merge([]models.ModelInfo{model("m2", "Acme", 50)})
	var perr *PersistenceError
	if !errors.As(err, &perr) {
		t.Fatalf("esperado PersistenceError, got %v", err)
	}

	// O snapshot em memória não pode ficar à frente do estado durável
	if !reflect.DeepEqual(store.GetAll(), before) {
		t.Errorf("snapshot deveria ter sido mantido após falha de persistência:\nantes: %+v\ndepois: %+v", before, store.GetAll())
	}
}

func TestGetAllRetornaCopia(t *testing.T) {
	store := newTestStore(t)
	if _, err := store.ReplaceAll([]models.ModelInfo{model("m1", "Acme", 100)}); err != nil {
		t.Fatalf("ReplaceAll falhou: %v", err)
	}

	snapshot := store.GetAll()
	snapshot[0].MaxTokens = 999

	fresh, _ := store.GetByID("m1")
	if fresh.MaxTokens != 100 {
		t.Error("mutação na cópia retornada não deveria afetar o snapshot interno")
	}
}
