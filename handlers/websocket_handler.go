package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/tokenkit/analyzer"
	"github.com/tokenkit/models"
	"github.com/tokenkit/utils"
	"go.uber.org/zap"
)

const (
	MaxFileSize        = 5 * 1024 * 1024
	MaxFilesPerRequest = 20

	writeWait      = 30 * time.Second
	pongWait       = 90 * time.Second
	pingPeriod     = (pongWait * 8) / 10
	maxMessageSize = 8 * 1024 * 1024 // 8MB: payloads podem carregar arquivos em base64
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  8192,
	WriteBufferSize: 8192,
	CheckOrigin: func(r *http.Request) bool {
		return true // Em produção, valide o origin adequadamente
	},
	HandshakeTimeout: 10 * time.Second,
}

// WSFilePayload é um arquivo anexado à requisição de tokenização ao vivo.
type WSFilePayload struct {
	Name     string `json:"name"`
	Content  string `json:"content"`
	IsBase64 bool   `json:"isBase64"`
}

// WSAnalyzeRequest é a mensagem enviada pelo cliente a cada análise
// (tipicamente conforme o usuário digita no editor).
type WSAnalyzeRequest struct {
	Text    string          `json:"text"`
	ModelID string          `json:"modelId"`
	Engine  string          `json:"engine,omitempty"`
	Files   []WSFilePayload `json:"files,omitempty"`
}

// WSAnalyzeResponse embrulha o resultado (ou o erro) de uma análise.
type WSAnalyzeResponse struct {
	Status string                `json:"status"`
	Result *models.AnalyzeResult `json:"result,omitempty"`
	Error  string                `json:"error,omitempty"`
}

// Client representa uma conexão WebSocket com proteção contra race conditions
type Client struct {
	conn          *websocket.Conn
	send          chan []byte
	analyzer      *analyzer.Analyzer
	fileProcessor *utils.FileProcessor
	logger        *zap.Logger
	mu            sync.Mutex
	closed        bool
}

// WebSocketHandler expõe a tokenização ao vivo: o cliente envia
// {text, modelId, engine, files?} e recebe um AnalyzeResult por mensagem.
func WebSocketHandler(a *analyzer.Analyzer, logger *zap.Logger) http.HandlerFunc {
	fileProcessor := utils.NewFileProcessor(logger)

	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logger.Error("Erro ao fazer upgrade para WebSocket",
				zap.Error(err),
				zap.String("remote_addr", r.RemoteAddr),
			)
			return
		}

		client := &Client{
			conn:          conn,
			send:          make(chan []byte, 256),
			analyzer:      a,
			fileProcessor: fileProcessor,
			logger:        logger,
		}

		logger.Info("Cliente WebSocket conectado",
			zap.String("remote_addr", conn.RemoteAddr().String()),
		)

		go client.writePump()
		go client.readPump()
	}
}

// readPump processa mensagens recebidas
func (c *Client) readPump() {
	defer func() {
		c.close()
		c.logger.Info("Cliente desconectado (readPump)",
			zap.String("remote_addr", c.conn.RemoteAddr().String()))
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure,
				websocket.CloseNoStatusReceived) {
				c.logger.Error("Erro inesperado ao ler mensagem", zap.Error(err))
			}
			break
		}

		if messageType == websocket.TextMessage {
			c.handleMessage(message)
		}
	}
}

// writePump envia mensagens para o cliente
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.logger.Warn("Erro ao escrever mensagem (cliente pode ter desconectado)",
					zap.Error(err))
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.logger.Debug("Erro ao enviar ping (cliente pode ter desconectado)",
					zap.Error(err))
				return
			}
		}
	}
}

// close fecha a conexão de forma segura
func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.closed = true
	close(c.send)
	c.conn.Close()
}

// isClosed verifica se a conexão está fechada
func (c *Client) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// handleMessage processa uma requisição de análise
func (c *Client) handleMessage(payload []byte) {
	var req WSAnalyzeRequest
	if err := json.Unmarshal(payload, &req); err != nil {
		c.sendError("Payload inválido: " + err.Error())
		return
	}

	if req.ModelID == "" {
		c.sendError("Modelo não especificado. Selecione um modelo e tente novamente.")
		return
	}

	if len(req.Files) > MaxFilesPerRequest {
		c.sendError(fmt.Sprintf("Número máximo de arquivos excedido. Limite: %d", MaxFilesPerRequest))
		return
	}

	// O pipeline só vê conteúdo literal: arquivos anexados são resolvidos
	// em texto antes da tokenização.
	text := req.Text
	if len(req.Files) > 0 {
		fileText, err := c.resolveFiles(req.Files)
		if err != nil {
			c.sendError(err.Error())
			return
		}
		if text != "" {
			text += "\n"
		}
		text += fileText
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := c.analyzer.Analyze(ctx, text, req.ModelID, req.Engine)
	if err != nil {
		c.sendError(err.Error())
		return
	}

	c.logger.Debug("Análise ao vivo concluída",
		zap.String("model", result.ModelID),
		zap.String("engine", result.EngineUsed),
		zap.Int("tokens", result.TokenCount),
		zap.Int("files", len(req.Files)),
	)

	c.sendJSON(WSAnalyzeResponse{
		Status: "completed",
		Result: &result,
	})
}

// resolveFiles extrai e concatena o texto dos arquivos anexados.
func (c *Client) resolveFiles(files []WSFilePayload) (string, error) {
	var builder strings.Builder

	for _, file := range files {
		var content []byte
		if file.IsBase64 {
			decoded, err := base64.StdEncoding.DecodeString(file.Content)
			if err != nil {
				return "", fmt.Errorf("erro ao decodificar base64 de '%s': %w", file.Name, err)
			}
			content = decoded
		} else {
			content = []byte(file.Content)
		}

		if int64(len(content)) > MaxFileSize {
			return "", fmt.Errorf("arquivo '%s' excede o limite de %d MB", file.Name, MaxFileSize/1024/1024)
		}

		extracted, err := c.fileProcessor.ExtractText(file.Name, content)
		if err != nil {
			return "", err
		}

		builder.WriteString(extracted.Text)
		builder.WriteString("\n")
	}

	return builder.String(), nil
}

// sendJSON envia um objeto JSON para o cliente
func (c *Client) sendJSON(v interface{}) {
	if c.isClosed() {
		c.logger.Warn("Tentativa de enviar para conexão fechada")
		return
	}

	data, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Erro ao serializar JSON", zap.Error(err))
		return
	}

	select {
	case c.send <- data:
		// Sucesso
	case <-time.After(5 * time.Second):
		c.logger.Warn("Timeout ao enviar mensagem para cliente")
	}
}

// sendError envia uma mensagem de erro
func (c *Client) sendError(message string) {
	c.logger.Warn("Enviando erro para cliente", zap.String("error", message))
	c.sendJSON(WSAnalyzeResponse{
		Status: "error",
		Error:  message,
	})
}
