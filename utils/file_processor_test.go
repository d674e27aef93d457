package utils

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestExtractTextArquivoTexto(t *testing.T) {
	fp := NewFileProcessor(zap.NewNop())

	out, err := fp.ExtractText("notas.txt", []byte("linha um\nlinha dois"))
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if out.FileType != FileTypeText {
		t.Errorf("FileType = %q, esperado %q", out.FileType, FileTypeText)
	}
	if out.Text != "linha um\nlinha dois" {
		t.Errorf("texto deveria ser o conteúdo literal, got %q", out.Text)
	}
}

func TestExtractTextClassificaPorExtensao(t *testing.T) {
	fp := NewFileProcessor(zap.NewNop())

	tests := []struct {
		nome     string
		conteudo string
		esperado FileType
	}{
		{"config.json", `{"chave": "valor"}`, FileTypeJSON},
		{"leia-me.md", "# Título", FileTypeMarkdown},
		{"dados.csv", "a,b,c", FileTypeCSV},
		{"main.go", "package main", FileTypeCode},
	}

	for _, tt := range tests {
		t.Run(tt.nome, func(t *testing.T) {
			out, err := fp.ExtractText(tt.nome, []byte(tt.conteudo))
			if err != nil {
				t.Fatalf("erro inesperado: %v", err)
			}
			if out.FileType != tt.esperado {
				t.Errorf("FileType = %q, esperado %q", out.FileType, tt.esperado)
			}
		})
	}
}

func TestExtractTextArquivoVazio(t *testing.T) {
	fp := NewFileProcessor(zap.NewNop())

	if _, err := fp.ExtractText("vazio.txt", nil); err == nil {
		t.Error("arquivo vazio deveria ser rejeitado")
	}
}

func TestExtractTextRejeitaImagem(t *testing.T) {
	fp := NewFileProcessor(zap.NewNop())

	// Cabeçalho PNG: imagens não carregam texto tokenizável
	png := []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0x00, 0x00}
	_, err := fp.ExtractText("foto.png", png)
	if err == nil {
		t.Fatal("imagem deveria ser rejeitada")
	}
	if !strings.Contains(err.Error(), "imagem") {
		t.Errorf("erro deveria explicar a rejeição: %v", err)
	}
}

func TestExtractTextRejeitaBinarioDesconhecido(t *testing.T) {
	fp := NewFileProcessor(zap.NewNop())

	blob := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x00, 0x10}
	if _, err := fp.ExtractText("dados.bin", blob); err == nil {
		t.Error("binário sem texto deveria ser rejeitado")
	}
}
