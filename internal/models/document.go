package models

import (
	"fmt"
	"time"
)

// FileDocument is the stored metadata of an imported photo or PDF.
type FileDocument struct {
	ID           string         `bson:"_id,omitempty" json:"id"`
	Title        string         `bson:"title" json:"title"`
	Content      string         `bson:"content" json:"content"`
	DocumentType string         `bson:"document_type" json:"document_type"`
	Source       string         `bson:"source,omitempty" json:"source,omitempty"`
	FileSize     int64          `bson:"file_size" json:"file_size"`
	PageCount    *int           `bson:"page_count,omitempty" json:"page_count,omitempty"`
	CapturedAt   *time.Time     `bson:"captured_at,omitempty" json:"captured_at,omitempty"`
	Metadata     map[string]any `bson:"metadata,omitempty" json:"metadata,omitempty"`

	Audit `bson:",inline"`
}

func (d *FileDocument) Collection() string { return CollectionDocuments }
func (d *FileDocument) GetID() string      { return d.ID }
func (d *FileDocument) SetID(id string)    { d.ID = id }

// Reimportar o mesmo arquivo não duplica o documento.
func (d *FileDocument) UniqueKey() (string, string) { return "source", d.Source }

func (d *FileDocument) Validate() error {
	if blank(d.Title) {
		return invalid("title is required")
	}
	if d.FileSize < 0 {
		return invalid("file_size must be >= 0")
	}
	return nil
}

func (d *FileDocument) EmbeddingText() string {
	return fmt.Sprintf("%s %s %s", d.DocumentType, d.Title, d.Content)
}
