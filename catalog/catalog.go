package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tokenkit/models"
	"go.uber.org/zap"
)

// ErrModelNotFound indica que o modelo pedido não existe no catálogo.
var ErrModelNotFound = errors.New("modelo não encontrado no catálogo")

// PersistenceError indica falha ao gravar o catálogo em disco. A operação de
// escrita é desfeita: o snapshot em memória permanece o anterior.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("erro ao persistir catálogo em %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// Store mantém o snapshot de modelos conhecidos, com leitura concorrente e
// escritas serializadas. A ordem de inserção é preservada; atualizações via
// Merge sobrescrevem no lugar.
type Store struct {
	mu      sync.RWMutex // protege snapshot (somente a troca em memória)
	writeMu sync.Mutex   // serializa escritores, inclusive durante o I/O de persistência
	entries []models.ModelInfo
	path    string
	logger  *zap.Logger
}

// NewStore carrega o snapshot inicial do arquivo configurado. Arquivo
// ausente é tratado como catálogo vazio, não como erro.
func NewStore(path string, logger *zap.Logger) (*Store, error) {
	s := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Info("Arquivo de catálogo não encontrado, iniciando catálogo vazio",
				zap.String("path", path))
			return s, nil
		}
		return nil, fmt.Errorf("erro ao ler catálogo %s: %w", path, err)
	}

	entries, err := models.ParseCatalog(data)
	if err != nil {
		return nil, fmt.Errorf("catálogo %s corrompido: %w", path, err)
	}

	s.entries = entries
	logger.Info("Catálogo de modelos carregado",
		zap.String("path", path),
		zap.Int("modelos", len(entries)))
	return s, nil
}

// GetAll retorna uma cópia do snapshot atual, na ordem de inserção.
func (s *Store) GetAll() []models.ModelInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.ModelInfo, len(s.entries))
	copy(out, s.entries)
	return out
}

// GetByID busca um modelo pelo id, sem diferenciar maiúsculas de minúsculas.
func (s *Store) GetByID(id string) (models.ModelInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToLower(id)
	for _, m := range s.entries {
		if strings.ToLower(m.ID) == key {
			return m, true
		}
	}
	return models.ModelInfo{}, false
}

// Count retorna o tamanho do snapshot atual.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// ReplaceAll descarta o snapshot atual e instala o novo. Ids duplicados na
// entrada são deduplicados (case-insensitive) mantendo a última ocorrência,
// a mesma política last-wins do Merge. Retorna o tamanho do snapshot
// instalado.
func (s *Store) ReplaceAll(incoming []models.ModelInfo) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := mergeInto(nil, incoming)
	if err := s.persist(next); err != nil {
		return 0, err
	}

	s.swap(next)
	s.logger.Info("Catálogo substituído", zap.Int("modelos", len(next)))
	return len(next), nil
}

// Merge aplica cada entrada em ordem: se já existe um modelo com o mesmo id
// (case-insensitive), sobrescreve no lugar preservando a posição original;
// caso contrário, anexa ao final. Retorna o número de entradas processadas.
// A operação é idempotente: aplicar a mesma sequência duas vezes produz o
// mesmo snapshot.
func (s *Store) Merge(incoming []models.ModelInfo) (int, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	next := mergeInto(s.GetAll(), incoming)
	if err := s.persist(next); err != nil {
		return 0, err
	}

	s.swap(next)
	s.logger.Info("Catálogo mesclado",
		zap.Int("recebidos", len(incoming)),
		zap.Int("total", len(next)))
	return len(incoming), nil
}

// mergeInto é a rotina de upsert compartilhada por ReplaceAll e Merge:
// index-or-append sobre uma sequência ordenada, chaveada pelo id em
// minúsculas.
func mergeInto(base, incoming []models.ModelInfo) []models.ModelInfo {
	out := make([]models.ModelInfo, len(base))
	copy(out, base)

	index := make(map[string]int, len(out))
	for i, m := range out {
		index[strings.ToLower(m.ID)] = i
	}

	for _, m := range incoming {
		key := strings.ToLower(m.ID)
		if i, ok := index[key]; ok {
			// Sobrescreve no lugar, preservando a grafia original do id
			id := out[i].ID
			out[i] = m
			out[i].ID = id
		} else {
			index[key] = len(out)
			out = append(out, m)
		}
	}
	return out
}

// persist grava o snapshot em um arquivo temporário no mesmo diretório e
// troca via rename, de modo que uma falha nunca deixa a memória à frente do
// estado durável nem corrompe o arquivo existente.
func (s *Store) persist(snapshot []models.ModelInfo) error {
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".models-*.json")
	if err != nil {
		return &PersistenceError{Path: s.path, Err: err}
	}

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return &PersistenceError{Path: s.path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Path: s.path, Err: err}
	}

	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return &PersistenceError{Path: s.path, Err: err}
	}
	return nil
}

// swap instala o novo snapshot. O lock exclusivo é segurado só durante a
// troca em memória; o I/O de persistência já aconteceu.
func (s *Store) swap(snapshot []models.ModelInfo) {
	s.mu.Lock()
	s.entries = snapshot
	s.mu.Unlock()
}
