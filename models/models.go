package models

// ModelInfo guarda metadados de um modelo de linguagem conhecido pelo catálogo.
type ModelInfo struct {
	ID               string   `json:"id"`
	Provider         string   `json:"provider"`
	MaxTokens        int      `json:"maxTokens"`
	InputPricePer1K  *float64 `json:"inputPricePer1K,omitempty"`
	OutputPricePer1K *float64 `json:"outputPricePer1K,omitempty"`
	Encoding         string   `json:"encoding,omitempty"`
}

// AnalyzeResult é o resultado da análise de tokenização de um texto.
type AnalyzeResult struct {
	ModelID             string   `json:"modelId"`
	EngineUsed          string   `json:"engineUsed"`
	TokenCount          int      `json:"tokenCount"`
	Tokens              []string `json:"tokens,omitempty"`
	EstimatedInputCost  *float64 `json:"estimatedInputCost,omitempty"`
	EstimatedOutputCost *float64 `json:"estimatedOutputCost,omitempty"`
}

// ValidateResult é o veredito de um texto contra o limite de tokens do modelo.
type ValidateResult struct {
	ModelID     string `json:"modelId"`
	EngineUsed  string `json:"engineUsed"`
	TokenCount  int    `json:"tokenCount"`
	MaxTokens   int    `json:"maxTokens"`
	WithinLimit bool   `json:"withinLimit"`
}
