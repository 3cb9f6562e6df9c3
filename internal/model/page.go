package model

import (
	"encoding/hex"
	"mime"
	"strings"
	"time"

	"golang.org/x/crypto/sha3"
)

// Page represents a fetched listing page.
type Page struct {
	// URL is the location the page was fetched from.
	URL string `json:"url"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// Headers contains all HTTP response headers.
	// Keys are canonicalized header names.
	Headers map[string][]string `json:"headers,omitempty"`

	// ContentType is the value of the Content-Type header.
	ContentType string `json:"content_type"`

	// Raw contains the response body, capped by the fetcher's size limit.
	Raw []byte `json:"-"`

	// Truncated is true when the body exceeded the size limit.
	Truncated bool `json:"truncated,omitempty"`

	// Hash is the hex SHA3-256 digest of Raw.
	// Two fetches with the same hash saw the same listing.
	Hash string `json:"hash"`

	// FetchedAt is when the response was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// ComputeHash calculates and sets the SHA3-256 hash of the page's raw content.
// This should be called after setting the Raw field.
func (p *Page) ComputeHash() {
	if len(p.Raw) == 0 {
		p.Hash = ""
		return
	}

	hash := sha3.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(hash[:])
}

// MediaType returns the lower-cased media type of ContentType without
// parameters. An unparseable or empty content type yields "".
func (p *Page) MediaType() string {
	if p.ContentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(p.ContentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(strings.Split(p.ContentType, ";")[0]))
	}
	return mediaType
}

// IsPlainText returns true if the page is served as text/plain.
// Pages without a content type are treated as HTML.
func (p *Page) IsPlainText() bool {
	return p.MediaType() == "text/plain"
}
