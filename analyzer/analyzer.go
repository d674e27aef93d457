package analyzer

import (
	"context"
	"fmt"
	"strings"

	"github.com/tokenkit/catalog"
	"github.com/tokenkit/models"
	"github.com/tokenkit/tokenizer/registry"
	"go.uber.org/zap"
)

// Analyzer orquestra o pipeline de análise/validação: resolve o modelo no
// catálogo, resolve o motor no registro (com fallback), tokeniza e deriva
// custos e veredito de limite. Sem estado entre requisições.
type Analyzer struct {
	catalog  *catalog.Store
	registry *registry.EngineRegistry
	logger   *zap.Logger
}

func New(store *catalog.Store, reg *registry.EngineRegistry, logger *zap.Logger) *Analyzer {
	return &Analyzer{
		catalog:  store,
		registry: reg,
		logger:   logger,
	}
}

// Analyze tokeniza o texto contra o modelo pedido. Modelo ausente é erro
// (a aritmética de custo e limite não faz sentido sem modelo); motor
// desconhecido degrada para o padrão, refletido em EngineUsed.
func (a *Analyzer) Analyze(ctx context.Context, text, modelID, engineName string) (models.AnalyzeResult, error) {
	model, ok := a.catalog.GetByID(modelID)
	if !ok {
		return models.AnalyzeResult{}, fmt.Errorf("modelo '%s': %w", modelID, catalog.ErrModelNotFound)
	}

	eng := a.registry.Resolve(engineName)
	res, err := eng.Tokenize(ctx, text, model)
	if err != nil {
		return models.AnalyzeResult{}, fmt.Errorf("erro ao tokenizar com o motor '%s': %w", eng.GetName(), err)
	}

	result := models.AnalyzeResult{
		ModelID:    model.ID,
		EngineUsed: eng.GetName(),
		TokenCount: res.TokenCount,
		Tokens:     res.Tokens,
	}

	if model.InputPricePer1K != nil {
		cost := float64(res.TokenCount) / 1000 * *model.InputPricePer1K
		result.EstimatedInputCost = &cost
	}
	if model.OutputPricePer1K != nil {
		cost := float64(res.TokenCount) / 1000 * *model.OutputPricePer1K
		result.EstimatedOutputCost = &cost
	}

	a.logger.Debug("Análise concluída",
		zap.String("model", model.ID),
		zap.String("engine", result.EngineUsed),
		zap.Int("tokens", res.TokenCount))
	return result, nil
}

// Validate verifica se o texto cabe no orçamento de tokens do modelo.
func (a *Analyzer) Validate(ctx context.Context, text, modelID, engineName string) (models.ValidateResult, error) {
	model, ok := a.catalog.GetByID(modelID)
	if !ok {
		return models.ValidateResult{}, fmt.Errorf("modelo '%s': %w", modelID, catalog.ErrModelNotFound)
	}

	eng := a.registry.Resolve(engineName)
	res, err := eng.Tokenize(ctx, text, model)
	if err != nil {
		return models.ValidateResult{}, fmt.Errorf("erro ao tokenizar com o motor '%s': %w", eng.GetName(), err)
	}

	return models.ValidateResult{
		ModelID:     model.ID,
		EngineUsed:  eng.GetName(),
		TokenCount:  res.TokenCount,
		MaxTokens:   model.MaxTokens,
		WithinLimit: res.TokenCount <= model.MaxTokens,
	}, nil
}

// GetModels lista os modelos do catálogo. O filtro de provedor é substring,
// case-insensitive; vazio retorna tudo. O filtro vive aqui, na camada de
// fachada: o store só expõe listagem sem filtro e busca por id.
func (a *Analyzer) GetModels(providerFilter string) []models.ModelInfo {
	all := a.catalog.GetAll()
	filter := strings.ToLower(strings.TrimSpace(providerFilter))
	if filter == "" {
		return all
	}

	out := make([]models.ModelInfo, 0, len(all))
	for _, m := range all {
		if strings.Contains(strings.ToLower(m.Provider), filter) {
			out = append(out, m)
		}
	}
	return out
}
