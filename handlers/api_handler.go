package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/tokenkit/analyzer"
	"github.com/tokenkit/catalog"
	"github.com/tokenkit/models"
	"github.com/tokenkit/tokenizer/registry"
	"github.com/tokenkit/utils"
	"go.uber.org/zap"
)

const (
	MaxUploadSize = 30 * 1024 * 1024 // 30MB por upload
)

// TokenizeRequest é o corpo de POST /api/tokenize e /api/validate.
type TokenizeRequest struct {
	Text    string `json:"text"`
	ModelID string `json:"modelId"`
	Engine  string `json:"engine,omitempty"`
}

type errorPayload struct {
	Error string `json:"error"`
}

type countPayload struct {
	Count int `json:"count"`
}

// ModelsHandler atende /api/models:
//   - GET  lista os modelos, com filtro opcional ?provider= (substring,
//     case-insensitive)
//   - POST substitui o catálogo inteiro pelo payload
//   - PUT  mescla o payload no catálogo (upsert por id)
func ModelsHandler(a *analyzer.Analyzer, store *catalog.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeJSON(w, http.StatusOK, a.GetModels(r.URL.Query().Get("provider")), logger)

		case http.MethodPost:
			applyCatalogWrite(w, r, store.ReplaceAll, logger)

		case http.MethodPut:
			applyCatalogWrite(w, r, store.Merge, logger)

		default:
			writeError(w, http.StatusMethodNotAllowed, "método não permitido", logger)
		}
	}
}

// applyCatalogWrite lê e valida o payload e aplica a operação de escrita
// (ReplaceAll ou Merge). Payload malformado deixa o catálogo intacto e
// retorna 400 com detalhe suficiente para corrigir o envio.
func applyCatalogWrite(w http.ResponseWriter, r *http.Request, op func([]models.ModelInfo) (int, error), logger *zap.Logger) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxUploadSize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "erro ao ler o corpo da requisição", logger)
		return
	}

	entries, err := models.ParseCatalog(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), logger)
		return
	}

	count, err := op(entries)
	if err != nil {
		var perr *catalog.PersistenceError
		if errors.As(err, &perr) {
			logger.Error("Falha de persistência do catálogo", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "falha ao persistir o catálogo; operação desfeita", logger)
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error(), logger)
		return
	}

	writeJSON(w, http.StatusOK, countPayload{Count: count}, logger)
}

// UploadModelsHandler atende POST /api/models/upload: recebe um arquivo
// multipart com o catálogo em JSON e aplica merge (padrão) ou replace
// conforme ?mode=.
func UploadModelsHandler(store *catalog.Store, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "método não permitido", logger)
			return
		}

		if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "upload inválido: "+err.Error(), logger)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "campo 'file' ausente no upload", logger)
			return
		}
		defer file.Close()

		data, err := io.ReadAll(io.LimitReader(file, MaxUploadSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "erro ao ler o arquivo enviado", logger)
			return
		}

		entries, err := models.ParseCatalog(data)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error(), logger)
			return
		}

		mode := strings.ToLower(r.URL.Query().Get("mode"))
		op := store.Merge
		if mode == "replace" {
			op = store.ReplaceAll
		}

		count, err := op(entries)
		if err != nil {
			logger.Error("Falha ao aplicar upload de catálogo",
				zap.String("file", header.Filename),
				zap.Error(err))
			writeError(w, http.StatusInternalServerError, "falha ao persistir o catálogo; operação desfeita", logger)
			return
		}

		logger.Info("Catálogo atualizado via upload",
			zap.String("file", header.Filename),
			zap.String("mode", mode),
			zap.Int("count", count))
		writeJSON(w, http.StatusOK, countPayload{Count: count}, logger)
	}
}

// EnginesHandler atende GET /api/engines com os nomes dos motores
// registrados.
func EnginesHandler(reg *registry.EngineRegistry, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			writeError(w, http.StatusMethodNotAllowed, "método não permitido", logger)
			return
		}
		writeJSON(w, http.StatusOK, reg.ListNames(), logger)
	}
}

// TokenizeHandler atende POST /api/tokenize.
func TokenizeHandler(a *analyzer.Analyzer, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeTokenizeRequest(w, r, logger)
		if !ok {
			return
		}

		result, err := a.Analyze(r.Context(), req.Text, req.ModelID, req.Engine)
		if err != nil {
			writeAnalyzeError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result, logger)
	}
}

// ValidateHandler atende POST /api/validate.
func ValidateHandler(a *analyzer.Analyzer, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, ok := decodeTokenizeRequest(w, r, logger)
		if !ok {
			return
		}

		result, err := a.Validate(r.Context(), req.Text, req.ModelID, req.Engine)
		if err != nil {
			writeAnalyzeError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result, logger)
	}
}

// TokenizeFileHandler atende POST /api/tokenize/file: upload multipart de um
// arquivo cujo texto é extraído antes da tokenização, garantindo que o
// pipeline só vê conteúdo literal. Campos de formulário: file, modelId,
// engine (opcional).
func TokenizeFileHandler(a *analyzer.Analyzer, fp *utils.FileProcessor, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeError(w, http.StatusMethodNotAllowed, "método não permitido", logger)
			return
		}

		if err := r.ParseMultipartForm(MaxUploadSize); err != nil {
			writeError(w, http.StatusBadRequest, "upload inválido: "+err.Error(), logger)
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			writeError(w, http.StatusBadRequest, "campo 'file' ausente no upload", logger)
			return
		}
		defer file.Close()

		content, err := io.ReadAll(io.LimitReader(file, MaxUploadSize))
		if err != nil {
			writeError(w, http.StatusBadRequest, "erro ao ler o arquivo enviado", logger)
			return
		}

		extracted, err := fp.ExtractText(header.Filename, content)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, err.Error(), logger)
			return
		}

		result, err := a.Analyze(r.Context(), extracted.Text, r.FormValue("modelId"), r.FormValue("engine"))
		if err != nil {
			writeAnalyzeError(w, err, logger)
			return
		}
		writeJSON(w, http.StatusOK, result, logger)
	}
}

func decodeTokenizeRequest(w http.ResponseWriter, r *http.Request, logger *zap.Logger) (TokenizeRequest, bool) {
	var req TokenizeRequest
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "método não permitido", logger)
		return req, false
	}

	if err := json.NewDecoder(io.LimitReader(r.Body, MaxUploadSize)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "payload inválido: "+err.Error(), logger)
		return req, false
	}

	if strings.TrimSpace(req.ModelID) == "" {
		writeError(w, http.StatusBadRequest, "campo 'modelId' é obrigatório", logger)
		return req, false
	}
	return req, true
}

// writeAnalyzeError mapeia erros do pipeline para status HTTP: modelo
// ausente é erro do chamador, falha de motor é erro do servidor.
func writeAnalyzeError(w http.ResponseWriter, err error, logger *zap.Logger) {
	if errors.Is(err, catalog.ErrModelNotFound) {
		writeError(w, http.StatusNotFound, err.Error(), logger)
		return
	}
	logger.Error("Erro no pipeline de análise", zap.Error(err))
	writeError(w, http.StatusInternalServerError, err.Error(), logger)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("Erro ao serializar resposta JSON", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, message string, logger *zap.Logger) {
	if status >= http.StatusInternalServerError {
		logger.Error("Respondendo erro", zap.Int("status", status), zap.String("mensagem", message))
	} else {
		logger.Warn("Respondendo erro", zap.Int("status", status), zap.String("mensagem", message))
	}
	writeJSON(w, status, errorPayload{Error: message}, logger)
}
