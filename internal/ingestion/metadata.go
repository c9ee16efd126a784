package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes an ingested resume document.
type Metadata struct {
	Filename    string `json:"filename,omitempty"`
	ContentType string `json:"content_type"`
	Size        int    `json:"size"`
	Hash        string `json:"hash"`      // SHA256 hex digest of the original bytes
	Timestamp   string `json:"timestamp"` // RFC3339
}

// NewMetadata describes data received at the current time.
func NewMetadata(filename, contentType string, data []byte) *Metadata {
	return &Metadata{
		Filename:    filename,
		ContentType: contentType,
		Size:        len(data),
		Hash:        computeHash(data),
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
}

// ObjectKey returns a content-addressed storage key for the document.
func (m *Metadata) ObjectKey(prefix string) string {
	ext := ".bin"
	switch m.ContentType {
	case ContentTypePDF:
		ext = ".pdf"
	case ContentTypeText:
		ext = ".txt"
	}
	return prefix + m.Hash + ext
}

func computeHash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
