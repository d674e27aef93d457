package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// catalogEnvelope aceita payloads no formato {"models": [...]}.
// Os nomes dos campos são case-insensitive na leitura (comportamento
// padrão do encoding/json).
type catalogEnvelope struct {
	Models []ModelInfo `json:"models"`
}

// ParseCatalog decodifica um payload de catálogo (array puro de modelos ou
// envelope {"models": [...]}) e valida cada registro. Retorna erro com o
// índice e o campo problemático para que o chamador corrija o payload; o
// catálogo em memória nunca é tocado por esta função.
func ParseCatalog(data []byte) ([]ModelInfo, error) {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return nil, fmt.Errorf("payload de catálogo vazio")
	}

	var entries []ModelInfo
	if strings.HasPrefix(trimmed, "[") {
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, fmt.Errorf("payload de catálogo inválido: %w", err)
		}
	} else {
		var env catalogEnvelope
		if err := json.Unmarshal(data, &env); err != nil {
			return nil, fmt.Errorf("payload de catálogo inválido: %w", err)
		}
		if env.Models == nil {
			return nil, fmt.Errorf("payload de catálogo inválido: campo 'models' ausente")
		}
		entries = env.Models
	}

	for i, m := range entries {
		if err := validateModel(m); err != nil {
			return nil, fmt.Errorf("entrada %d do catálogo: %w", i, err)
		}
	}

	return entries, nil
}

func validateModel(m ModelInfo) error {
	if strings.TrimSpace(m.ID) == "" {
		return fmt.Errorf("campo 'id' é obrigatório")
	}
	if m.MaxTokens <= 0 {
		return fmt.Errorf("campo 'maxTokens' deve ser positivo (modelo %q)", m.ID)
	}
	if m.InputPricePer1K != nil && *m.InputPricePer1K < 0 {
		return fmt.Errorf("campo 'inputPricePer1K' não pode ser negativo (modelo %q)", m.ID)
	}
	if m.OutputPricePer1K != nil && *m.OutputPricePer1K < 0 {
		return fmt.Errorf("campo 'outputPricePer1K' não pode ser negativo (modelo %q)", m.ID)
	}
	return nil
}
