// Package docsource turns uploaded files into pipeline documents.
package docsource

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/extract/chunker"
	"github.com/akolanti/TenderExtract/internal/extract/tables"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"github.com/dslipak/pdf"
	"github.com/google/uuid"
	"github.com/lu4p/cat"
)

// PageBreak separates pages in the extracted text; the chunker prefers
// cutting there.
const PageBreak = chunker.PageMarker

var (
	ErrUnsupportedType = errors.New("unsupported document type")
	ErrNoText          = errors.New("document has no extractable text")
)

// PageTimeout bounds the plain-text extraction of a single PDF page.
var PageTimeout = 10 * time.Second

type rawPage struct {
	Number  int
	Content string
}

func DocType(path string) commonModels.DocType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".pdf":
		return commonModels.PDF
	case ".docx", ".rtf", ".odt":
		return commonModels.DOCX
	case ".txt", ".md", ".text":
		return commonModels.TXT
	default:
		return commonModels.ERR
	}
}

// Load reads the file at path and returns it as a Document. name defaults
// to the file's base name and id to a fresh uuid.
func Load(ctx context.Context, path, id, name string) (commonModels.Document, error) {
	log := logger_i.NewLogger("Document Source :").WithTrace(ctx)
	docType := DocType(path)
	if docType == commonModels.ERR {
		return commonModels.Document{}, fmt.Errorf("%w: %s", ErrUnsupportedType, filepath.Ext(path))
	}

	pages, err := extract(ctx, log, path, docType)
	if err != nil {
		return commonModels.Document{}, err
	}
	text := JoinPages(pages)
	if strings.TrimSpace(text) == "" {
		return commonModels.Document{}, ErrNoText
	}

	if name == "" {
		name = filepath.Base(path)
	}
	if id == "" {
		id = uuid.NewString()
	}
	log.Debug("docsource.loaded", "name", name, "type", docType, "pages", len(pages), "bytes", len(text))
	return commonModels.Document{
		Id:          id,
		Name:        name,
		Text:        text,
		ContentType: docType,
		ReceivedAt:  time.Now(),
	}, nil
}

// JoinPages concatenates page contents with PageBreak, repairing the
// mojibake PDF text layers often carry.
func JoinPages(pages []rawPage) string {
	parts := make([]string, 0, len(pages))
	for _, p := range pages {
		parts = append(parts, tables.FixEncoding(p.Content))
	}
	return strings.Join(parts, PageBreak)
}

func extract(ctx context.Context, log *logger_i.Logger, path string, docType commonModels.DocType) ([]rawPage, error) {
	switch docType {
	case commonModels.PDF:
		return extractPDF(ctx, log, path)
	case commonModels.DOCX:
		return extractDocument(path)
	case commonModels.TXT:
		return extractPlain(path)
	}
	return nil, fmt.Errorf("%w: %s", ErrUnsupportedType, docType)
}

func extractPDF(ctx context.Context, log *logger_i.Logger, path string) ([]rawPage, error) {
	f, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}

	var pages []rawPage
	numPages := f.NumPage()
	for i := 1; i <= numPages; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		page := f.Page(i)
		if page.V.IsNull() {
			continue
		}
		content, err := protectExtract(page)
		if err != nil {
			log.Warn("docsource.page.skipped", "page", i, "error", err)
			continue
		}
		pages = append(pages, rawPage{Number: i, Content: content})
	}
	log.Debug("docsource.pdf", "pages", numPages, "extracted", len(pages))
	return pages, nil
}

// extractDocument handles .docx, .odt and .rtf. Page boundaries are not
// available from these formats, so the whole text is one page.
func extractDocument(path string) ([]rawPage, error) {
	text, err := cat.File(path)
	if err != nil {
		return nil, fmt.Errorf("failed to extract document: %w", err)
	}
	return []rawPage{{Number: 1, Content: text}}, nil
}

func extractPlain(path string) ([]rawPage, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		b = []byte(strings.ToValidUTF8(string(b), ""))
	}
	var pages []rawPage
	for i, p := range strings.Split(string(b), PageBreak) {
		pages = append(pages, rawPage{Number: i + 1, Content: p})
	}
	return pages, nil
}

// protectExtract guards against pages whose content streams make the
// pdf reader spin.
func protectExtract(page pdf.Page) (string, error) {
	type result struct {
		content string
		err     error
	}
	resChan := make(chan result, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				resChan <- result{err: fmt.Errorf("page extraction panicked: %v", r)}
			}
		}()
		content, err := page.GetPlainText(nil)
		resChan <- result{content, err}
	}()
	select {
	case r := <-resChan:
		return r.content, r.err
	case <-time.After(PageTimeout):
		return "", errors.New("page extraction timed out")
	}
}
