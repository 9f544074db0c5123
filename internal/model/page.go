package model

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Page is a fetched dictionary page.
type Page struct {
	// URL is the page URL, or the file path for local pages.
	URL string `json:"url"`

	// StatusCode is the HTTP status. Local files report 200.
	StatusCode int `json:"status_code"`

	// ContentType is the response media type.
	ContentType string `json:"content_type"`

	// Title is the <title> text.
	Title string `json:"title,omitempty"`

	// Snapshot is the page rendered as plain text, capped at
	// MaxSnapshotSize.
	Snapshot string `json:"snapshot,omitempty"`

	// Raw is the response body, capped at MaxPageSize.
	Raw []byte `json:"-"`

	// Hash is the SHA-256 of Raw.
	Hash string `json:"hash"`
}

// MaxSnapshotSize caps Page.Snapshot.
const MaxSnapshotSize = 64 * 1024

// MaxPageSize caps Page.Raw.
const MaxPageSize = 5 * 1024 * 1024

// ComputeHash sets Hash from Raw.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}
	sum := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// IsHTML reports whether the content type is HTML. An empty content type
// counts as HTML since local files carry none.
func (p *Page) IsHTML() bool {
	ct := strings.ToLower(p.ContentType)
	return ct == "" || strings.HasPrefix(ct, "text/html") || strings.HasPrefix(ct, "application/xhtml+xml")
}

// TruncateSnapshot enforces MaxSnapshotSize without splitting a UTF-8
// sequence.
func (p *Page) TruncateSnapshot() {
	if len(p.Snapshot) <= MaxSnapshotSize {
		return
	}
	cut := MaxSnapshotSize
	for cut > 0 && !isRuneStart(p.Snapshot[cut]) {
		cut--
	}
	p.Snapshot = p.Snapshot[:cut]
}

// TruncateRaw enforces MaxPageSize.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}

func isRuneStart(b byte) bool {
	return b&0xC0 != 0x80
}
