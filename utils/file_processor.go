package utils

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/h2non/filetype"
	"github.com/ledongthuc/pdf"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

const (
	MaxPDFSize  = 25 * 1024 * 1024 // 25MB para PDFs
	MaxDocSize  = 15 * 1024 * 1024 // 15MB para documentos Office
	MaxTextSize = 10 * 1024 * 1024 // 10MB para texto puro
)

// FileType representa o tipo de arquivo processado
type FileType string

const (
	FileTypeText     FileType = "text"
	FileTypePDF      FileType = "pdf"
	FileTypeDocx     FileType = "docx"
	FileTypeXlsx     FileType = "xlsx"
	FileTypeCode     FileType = "code"
	FileTypeMarkdown FileType = "markdown"
	FileTypeJSON     FileType = "json"
	FileTypeCSV      FileType = "csv"
)

// ExtractedText é o conteúdo literal de um arquivo, pronto para tokenização.
// O contrato do pipeline é que, quando o Tokenize roda, o texto já é
// conteúdo literal — esta struct é o resultado dessa resolução.
type ExtractedText struct {
	Name        string   `json:"name"`
	Text        string   `json:"text"`
	ContentType string   `json:"contentType"`
	FileType    FileType `json:"fileType"`
	Size        int64    `json:"size"`
}

// FileProcessor resolve arquivos enviados em texto tokenizável.
type FileProcessor struct {
	logger *zap.Logger
}

// NewFileProcessor cria uma nova instância do processador
func NewFileProcessor(logger *zap.Logger) *FileProcessor {
	return &FileProcessor{logger: logger}
}

// ExtractText extrai o texto de um arquivo conforme o tipo detectado.
// Imagens e binários genéricos são rejeitados: não carregam texto
// tokenizável.
func (fp *FileProcessor) ExtractText(name string, content []byte) (*ExtractedText, error) {
	if len(content) == 0 {
		return nil, fmt.Errorf("arquivo vazio: %s", name)
	}

	mtype := mimetype.Detect(content)
	contentType := mtype.String()
	ext := strings.ToLower(filepath.Ext(name))

	fp.logger.Debug("Processando arquivo",
		zap.String("name", name),
		zap.String("mime", contentType),
		zap.String("ext", ext),
		zap.Int("size", len(content)),
	)

	out := &ExtractedText{
		Name:        name,
		ContentType: contentType,
		Size:        int64(len(content)),
	}

	switch {
	case filetype.IsImage(content):
		return nil, fmt.Errorf("arquivo '%s' é uma imagem e não contém texto tokenizável", name)
	case fp.isPDF(contentType, ext):
		return fp.extractPDF(out, content)
	case fp.isDocx(contentType, ext):
		return fp.extractDocx(out, content)
	case fp.isXlsx(contentType, ext):
		return fp.extractXlsx(out, content)
	case fp.isText(contentType, ext):
		return fp.extractPlainText(out, content, ext)
	default:
		return nil, fmt.Errorf("tipo de arquivo não suportado: %s (%s)", name, contentType)
	}
}

// isPDF verifica se é PDF
func (fp *FileProcessor) isPDF(mime, ext string) bool {
	return mime == "application/pdf" || ext == ".pdf"
}

// isDocx verifica se é documento Word
func (fp *FileProcessor) isDocx(mime, ext string) bool {
	return mime == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" || ext == ".docx"
}

// isXlsx verifica se é planilha Excel
func (fp *FileProcessor) isXlsx(mime, ext string) bool {
	return mime == "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" || ext == ".xlsx"
}

// isText verifica se é texto
func (fp *FileProcessor) isText(mime, ext string) bool {
	textExts := map[string]bool{
		".txt": true, ".md": true, ".markdown": true,
		".go": true, ".js": true, ".ts": true, ".py": true,
		".java": true, ".c": true, ".cpp": true, ".h": true,
		".cs": true, ".rb": true, ".php": true, ".html": true,
		".css": true, ".json": true, ".yaml": true, ".yml": true,
		".xml": true, ".toml": true, ".ini": true, ".conf": true,
		".sh": true, ".sql": true, ".log": true, ".csv": true,
		".tsv": true, ".env": true, ".proto": true,
	}
	return strings.HasPrefix(mime, "text/") || textExts[ext]
}

// extractPDF extrai texto de PDFs
func (fp *FileProcessor) extractPDF(out *ExtractedText, content []byte) (*ExtractedText, error) {
	if int64(len(content)) > MaxPDFSize {
		return nil, fmt.Errorf("PDF excede o limite de %d MB", MaxPDFSize/1024/1024)
	}

	reader := bytes.NewReader(content)
	pdfReader, err := pdf.NewReader(reader, int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir PDF: %w", err)
	}

	var textContent strings.Builder
	numPages := pdfReader.NumPage()

	for pageNum := 1; pageNum <= numPages; pageNum++ {
		page := pdfReader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			fp.logger.Warn("Erro ao extrair texto da página",
				zap.Int("page", pageNum),
				zap.Error(err),
			)
			continue
		}
		textContent.WriteString(text)
		textContent.WriteString("\n")
	}

	extracted := textContent.String()
	if len(strings.TrimSpace(extracted)) == 0 {
		return nil, fmt.Errorf("não foi possível extrair texto do PDF")
	}

	out.FileType = FileTypePDF
	out.Text = extracted

	fp.logger.Info("PDF processado",
		zap.String("name", out.Name),
		zap.Int("pages", numPages),
		zap.Int("text_length", len(extracted)),
	)
	return out, nil
}

// docxDocument estrutura para parsear documento Word
type docxDocument struct {
	XMLName xml.Name `xml:"document"`
	Body    docxBody `xml:"body"`
}

type docxBody struct {
	Paragraphs []docxParagraph `xml:"p"`
	Tables     []docxTable     `xml:"tbl"`
}

type docxParagraph struct {
	Runs []docxRun `xml:"r"`
}

type docxRun struct {
	Text string `xml:"t"`
}

type docxTable struct {
	Rows []docxTableRow `xml:"tr"`
}

type docxTableRow struct {
	Cells []docxTableCell `xml:"tc"`
}

type docxTableCell struct {
	Paragraphs []docxParagraph `xml:"p"`
}

// extractDocx extrai texto de documentos Word
func (fp *FileProcessor) extractDocx(out *ExtractedText, content []byte) (*ExtractedText, error) {
	if int64(len(content)) > MaxDocSize {
		return nil, fmt.Errorf("documento excede o limite de %d MB", MaxDocSize/1024/1024)
	}

	// DOCX é um ZIP com o conteúdo em word/document.xml
	zipReader, err := zip.NewReader(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir documento Word: %w", err)
	}

	var documentXML []byte
	for _, file := range zipReader.File {
		if file.Name == "word/document.xml" {
			rc, err := file.Open()
			if err != nil {
				return nil, fmt.Errorf("erro ao abrir document.xml: %w", err)
			}
			documentXML, err = io.ReadAll(rc)
			rc.Close()
			if err != nil {
				return nil, fmt.Errorf("erro ao ler document.xml: %w", err)
			}
			break
		}
	}

	if len(documentXML) == 0 {
		return nil, fmt.Errorf("document.xml não encontrado no arquivo DOCX")
	}

	var doc docxDocument
	if err := xml.Unmarshal(documentXML, &doc); err != nil {
		return nil, fmt.Errorf("erro ao parsear XML do documento: %w", err)
	}

	var textContent strings.Builder

	for _, para := range doc.Body.Paragraphs {
		text := paragraphText(para)
		if strings.TrimSpace(text) != "" {
			textContent.WriteString(text)
			textContent.WriteString("\n")
		}
	}

	for _, table := range doc.Body.Tables {
		for _, row := range table.Rows {
			for _, cell := range row.Cells {
				for _, para := range cell.Paragraphs {
					text := paragraphText(para)
					if strings.TrimSpace(text) != "" {
						textContent.WriteString(text)
						textContent.WriteString(" ")
					}
				}
			}
			textContent.WriteString("\n")
		}
	}

	extracted := textContent.String()
	if len(strings.TrimSpace(extracted)) == 0 {
		return nil, fmt.Errorf("documento Word está vazio")
	}

	out.FileType = FileTypeDocx
	out.Text = extracted

	fp.logger.Info("Documento Word processado",
		zap.String("name", out.Name),
		zap.Int("text_length", len(extracted)),
	)
	return out, nil
}

func paragraphText(para docxParagraph) string {
	var b strings.Builder
	for _, run := range para.Runs {
		b.WriteString(run.Text)
	}
	return b.String()
}

// extractXlsx extrai dados de planilhas Excel
func (fp *FileProcessor) extractXlsx(out *ExtractedText, content []byte) (*ExtractedText, error) {
	if int64(len(content)) > MaxDocSize {
		return nil, fmt.Errorf("planilha excede o limite de %d MB", MaxDocSize/1024/1024)
	}

	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("erro ao abrir planilha Excel: %w", err)
	}
	defer f.Close()

	var textContent strings.Builder
	sheets := f.GetSheetList()

	for _, sheetName := range sheets {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			fp.logger.Warn("Erro ao ler planilha",
				zap.String("sheet", sheetName),
				zap.Error(err),
			)
			continue
		}

		for _, row := range rows {
			textContent.WriteString(strings.Join(row, " "))
			textContent.WriteString("\n")
		}
	}

	extracted := textContent.String()
	if len(strings.TrimSpace(extracted)) == 0 {
		return nil, fmt.Errorf("planilha Excel está vazia")
	}

	out.FileType = FileTypeXlsx
	out.Text = extracted

	fp.logger.Info("Planilha Excel processada",
		zap.String("name", out.Name),
		zap.Int("sheets", len(sheets)),
	)
	return out, nil
}

// extractPlainText processa arquivos de texto
func (fp *FileProcessor) extractPlainText(out *ExtractedText, content []byte, ext string) (*ExtractedText, error) {
	if int64(len(content)) > MaxTextSize {
		return nil, fmt.Errorf("arquivo de texto excede o limite de %d MB", MaxTextSize/1024/1024)
	}

	switch ext {
	case ".json":
		out.FileType = FileTypeJSON
	case ".md", ".markdown":
		out.FileType = FileTypeMarkdown
	case ".csv", ".tsv":
		out.FileType = FileTypeCSV
	case ".go", ".js", ".ts", ".py", ".java", ".c", ".cpp", ".h", ".cs", ".rb", ".php":
		out.FileType = FileTypeCode
	default:
		out.FileType = FileTypeText
	}

	out.Text = string(content)
	return out, nil
}
