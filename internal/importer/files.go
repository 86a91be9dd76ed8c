package importer

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/pdfcpu/pdfcpu/pkg/api"

	"github.com/Werneck0live/personal-controller/internal/locale"
	"github.com/Werneck0live/personal-controller/internal/models"
)

const (
	DocTypePhoto = "photo"
	DocTypePDF   = "PDF"
)

var captureDateRe = regexp.MustCompile(`(\d{4})-(\d{2})-(\d{2})`)

// scanFiles lists regular files of dir accepted by keep, sorted by name.
func scanFiles(dir string, keep func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !keep(e.Name()) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// importFiles runs one into every file of path, or only path itself.
func importFiles(path string, keep func(string) bool, one func(string) (*models.FileDocument, error)) (*Result[*models.FileDocument], error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrImport, err)
	}
	files := []string{path}
	if info.IsDir() {
		if files, err = scanFiles(path, keep); err != nil {
			return nil, err
		}
	} else if !keep(path) {
		return nil, fmt.Errorf("%w: unsupported file %s", ErrImport, filepath.Base(path))
	}

	res := &Result[*models.FileDocument]{Source: filepath.Base(path), Records: []*models.FileDocument{}}
	for i, f := range files {
		res.Rows++
		doc, err := one(f)
		if err != nil {
			res.skip(i+1, err.Error())
			continue
		}
		res.Records = append(res.Records, doc)
	}
	return res, nil
}

// PhotoImporter records metadata of delivery photos and scans.
type PhotoImporter struct {
	log *slog.Logger
}

func NewPhotoImporter(log *slog.Logger) *PhotoImporter {
	return &PhotoImporter{log: loggerOr(log).With("kind", KindPhoto)}
}

func (imp *PhotoImporter) CanImport(path string) bool {
	return imageExts[strings.ToLower(filepath.Ext(path))]
}

func (imp *PhotoImporter) ImportFile(path string) ([]*models.FileDocument, error) {
	res, err := imp.Import(path)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Import accepts a single image or a directory of images.
func (imp *PhotoImporter) Import(path string) (*Result[*models.FileDocument], error) {
	res, err := importFiles(path, imp.CanImport, imp.photo)
	if err != nil {
		return nil, err
	}
	imp.log.Info("photo_import_done", "path", path, "imported", len(res.Records), "skipped", res.Skipped)
	return res, nil
}

func (imp *PhotoImporter) photo(path string) (*models.FileDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	doc := &models.FileDocument{
		ID:           models.NewID(),
		Title:        name,
		DocumentType: DocTypePhoto,
		Source:       path,
		FileSize:     info.Size(),
		Metadata: map[string]any{
			"filename":  name,
			"file_size": info.Size(),
			"extension": strings.TrimPrefix(strings.ToLower(filepath.Ext(name)), "."),
		},
		Audit: models.NewAudit(),
	}
	captured := "unknown"
	if d, ok := CaptureDate(name); ok {
		doc.CapturedAt = &d
		doc.Metadata["captured_at"] = d.Format(time.DateOnly)
		captured = d.Format(time.DateOnly)
	}
	doc.Content = fmt.Sprintf("Photo: %s\nSize: %d bytes\nCaptured: %s", name, info.Size(), captured)
	return doc, nil
}

// CaptureDate reads a YYYY-MM-DD stamp from a file name.
func CaptureDate(name string) (time.Time, bool) {
	m := captureDateRe.FindStringSubmatch(name)
	if m == nil {
		return time.Time{}, false
	}
	// reaproveita a validação de calendário do parser dd/mm/aaaa
	return locale.ParseDate(m[3] + "/" + m[2] + "/" + m[1])
}

// PDFImporter records metadata of fiscal PDFs. Text extraction is not done.
type PDFImporter struct {
	log *slog.Logger
}

func NewPDFImporter(log *slog.Logger) *PDFImporter {
	return &PDFImporter{log: loggerOr(log).With("kind", KindPDF)}
}

func (imp *PDFImporter) CanImport(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".pdf")
}

func (imp *PDFImporter) ImportFile(path string) ([]*models.FileDocument, error) {
	res, err := imp.Import(path)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Import accepts a single PDF or a directory of PDFs.
func (imp *PDFImporter) Import(path string) (*Result[*models.FileDocument], error) {
	res, err := importFiles(path, imp.CanImport, imp.pdf)
	if err != nil {
		return nil, err
	}
	imp.log.Info("pdf_import_done", "path", path, "imported", len(res.Records), "skipped", res.Skipped)
	return res, nil
}

func (imp *PDFImporter) pdf(path string) (*models.FileDocument, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(path)
	docType := DocumentType(name)
	doc := &models.FileDocument{
		ID:           models.NewID(),
		Title:        name,
		DocumentType: docType,
		Source:       path,
		FileSize:     info.Size(),
		Metadata: map[string]any{
			"filename":      name,
			"file_size":     info.Size(),
			"document_type": docType,
		},
		Audit: models.NewAudit(),
	}
	pages := "unknown"
	// PDFs corrompidos ainda são registrados, só sem contagem de páginas
	if n, err := api.PageCountFile(path); err == nil {
		doc.PageCount = &n
		doc.Metadata["page_count"] = n
		pages = fmt.Sprint(n)
	} else {
		imp.log.Debug("pdf_page_count_failed", "file", name, "err", err)
	}
	doc.Content = fmt.Sprintf("PDF Document: %s\nType: %s\nSize: %d bytes\nPages: %s", name, docType, info.Size(), pages)
	return doc, nil
}

// DocumentType classifies a fiscal PDF by its file name.
func DocumentType(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "cte") || strings.Contains(n, "ct-e"):
		return "CT-e"
	case strings.Contains(n, "nfe") || strings.Contains(n, "nf-e"):
		return "NF-e"
	case strings.Contains(n, "minuta"):
		return "Minuta"
	case strings.Contains(n, "comprovante"):
		return "Comprovante"
	case strings.Contains(n, "embarque"):
		return "Pre-Embarque"
	case strings.Contains(n, "fatura"):
		return "Fatura"
	case strings.Contains(n, "relatorio") || strings.Contains(n, "report"):
		return "Relatorio"
	}
	return DocTypePDF
}

var (
	_ Importer[*models.FileDocument] = (*PhotoImporter)(nil)
	_ Importer[*models.FileDocument] = (*PDFImporter)(nil)
)
