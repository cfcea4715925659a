package parser

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/nguyenthenguyen/docx"
	"github.com/rs/zerolog/log"
	"github.com/tealeg/xlsx"
	"github.com/xuri/excelize/v2"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	gmtext "github.com/yuin/goldmark/text"

	"docnav/internal/models"
)

// Load extracts the raw text of one file into a Document. The document ID
// is the base filename, which is what citations surface to the user.
func Load(filePath string) (models.Document, error) {
	ext := strings.ToLower(filepath.Ext(filePath))
	switch ext {
	case ".pdf":
		return loadPDF(filePath)
	case ".docx":
		return loadDOCX(filePath)
	case ".xlsx":
		return loadXLSX(filePath)
	case ".ods":
		return loadODS(filePath)
	case ".md":
		return loadMarkdown(filePath)
	case ".txt":
		return loadText(filePath)
	default:
		return models.Document{}, fmt.Errorf("unsupported file format: %s", ext)
	}
}

// LoadDir walks dir and loads every supported file, in path order.
func LoadDir(dir string) ([]models.Document, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf", ".docx", ".xlsx", ".ods", ".md", ".txt":
			paths = append(paths, path)
		default:
			log.Debug().Str("file", path).Msg("Skipping unsupported file")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(paths)

	docs := make([]models.Document, 0, len(paths))
	for _, p := range paths {
		doc, err := Load(p)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", p, err)
		}
		if strings.TrimSpace(doc.Text) == "" {
			log.Warn().Str("file", p).Msg("File contains no extractable text, skipping")
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func loadPDF(filePath string) (models.Document, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return models.Document{}, err
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return models.Document{}, err
	}
	reader, err := pdf.NewReader(f, stat.Size())
	if err != nil {
		return models.Document{}, err
	}

	var text strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		pageText, err := reader.Page(i).GetPlainText(nil)
		if err != nil {
			return models.Document{}, fmt.Errorf("page %d: %w", i, err)
		}
		if strings.TrimSpace(pageText) == "" {
			continue
		}
		text.WriteString(pageText)
		text.WriteString("\n\n")
	}
	return newDocument(filePath, text.String(), numPages), nil
}

func loadDOCX(filePath string) (models.Document, error) {
	r, err := docx.ReadDocxFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	defer r.Close()

	content := r.Editable().GetContent()
	var text strings.Builder
	for _, para := range strings.Split(content, "</w:p>") {
		line := extractTextFromXML(para, "<w:t")
		if strings.TrimSpace(line) == "" {
			continue
		}
		text.WriteString(line)
		text.WriteString("\n\n")
	}
	return newDocument(filePath, text.String(), 0), nil
}

func loadXLSX(filePath string) (models.Document, error) {
	f, err := xlsx.OpenFile(filePath)
	if err != nil {
		return models.Document{}, err
	}

	var text strings.Builder
	for _, sheet := range f.Sheets {
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheet.Name))
		for _, row := range sheet.Rows {
			for _, cell := range row.Cells {
				text.WriteString(cell.String() + "\t")
			}
			text.WriteString("\n")
		}
		text.WriteString("\n")
	}
	return newDocument(filePath, text.String(), len(f.Sheets)), nil
}

func loadODS(filePath string) (models.Document, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	defer f.Close()

	var text strings.Builder
	sheets := f.GetSheetList()
	for _, sheetName := range sheets {
		rows, err := f.GetRows(sheetName)
		if err != nil {
			continue
		}
		text.WriteString(fmt.Sprintf("Sheet: %s\n", sheetName))
		for _, row := range rows {
			for _, cell := range row {
				text.WriteString(cell + "\t")
			}
			text.WriteString("\n")
		}
		text.WriteString("\n")
	}
	return newDocument(filePath, text.String(), len(sheets)), nil
}

func loadMarkdown(filePath string) (models.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	return newDocument(filePath, markdownToText(data), 0), nil
}

func loadText(filePath string) (models.Document, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return models.Document{}, err
	}
	return newDocument(filePath, string(data), 0), nil
}

func newDocument(filePath, text string, pages int) models.Document {
	return models.Document{
		ID:        filepath.Base(filePath),
		Text:      strings.TrimSpace(text),
		PageCount: pages,
	}
}

// markdownToText walks the goldmark AST and keeps only the text content,
// so headings and list markers don't pollute the chunks.
func markdownToText(src []byte) string {
	root := goldmark.New().Parser().Parse(gmtext.NewReader(src))

	var b strings.Builder
	_ = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if t, ok := n.(*ast.Text); ok && entering {
			b.Write(t.Segment.Value(src))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteString("\n")
			}
			return ast.WalkContinue, nil
		}
		if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
			b.WriteString("\n\n")
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// extractTextFromXML pulls the character data out of every occurrence of
// the given OOXML tag in the fragment.
func extractTextFromXML(fragment, tag string) string {
	var text strings.Builder
	rest := fragment
	for {
		start := strings.Index(rest, tag)
		if start < 0 {
			break
		}
		rest = rest[start:]
		open := strings.Index(rest, ">")
		if open < 0 {
			break
		}
		rest = rest[open+1:]
		end := strings.Index(rest, "<")
		if end < 0 {
			break
		}
		text.WriteString(rest[:end])
		rest = rest[end:]
	}
	return text.String()
}
