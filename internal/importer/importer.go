// Package importer turns the operational spreadsheets (semicolon CSV in
// Windows-1252, or xlsx) and scanned files into validated records.
package importer

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Werneck0live/personal-controller/internal/models"
)

// ErrImport means the whole file could not be read. Row problems never
// produce it; they are collected in Result.Errors.
var ErrImport = errors.New("import failed")

type Kind string

const (
	KindAuto      Kind = "auto"
	KindFreight   Kind = "freight"
	KindTimesheet Kind = "timesheet"
	KindRoute     Kind = "route"
	KindPhoto     Kind = "photo"
	KindPDF       Kind = "pdf"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "", KindAuto:
		return KindAuto, nil
	case KindFreight, KindTimesheet, KindRoute, KindPhoto, KindPDF:
		return k, nil
	}
	return "", fmt.Errorf("%w: unknown import type %q", ErrImport, s)
}

// RowError describes a dropped row. Line is 1-based and counts the header.
type RowError struct {
	Line   int    `json:"line"`
	Reason string `json:"reason"`
}

type Result[T any] struct {
	Source  string     `json:"source"`
	Records []T        `json:"-"`
	Rows    int        `json:"rows"`
	Skipped int        `json:"skipped"`
	Errors  []RowError `json:"errors,omitempty"`
}

func (r *Result[T]) skip(line int, reason string) {
	r.Skipped++
	if reason != "" {
		r.Errors = append(r.Errors, RowError{Line: line, Reason: reason})
	}
}

// Importer is implemented by every file importer of this package.
type Importer[T models.Record] interface {
	Import(path string) (*Result[T], error)
	ImportFile(path string) ([]T, error)
	CanImport(path string) bool
}

var imageExts = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".bmp": true, ".gif": true, ".webp": true,
}

func isSheet(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".csv" || ext == ".xlsx"
}

// Detect picks the importer for a file from its name.
func Detect(path string) (Kind, error) {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))
	switch {
	case imageExts[ext]:
		return KindPhoto, nil
	case ext == ".pdf":
		return KindPDF, nil
	case strings.Contains(name, "Horas") || strings.Contains(name, "Ponto"):
		return KindTimesheet, nil
	case strings.Contains(name, "Rotas"):
		return KindRoute, nil
	case strings.Contains(name, "-04") || strings.Contains(name, "Planilha"):
		return KindFreight, nil
	}
	return "", fmt.Errorf("%w: cannot detect file type of %s", ErrImport, name)
}
