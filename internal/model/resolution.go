package model

import (
	"time"

	"github.com/google/uuid"
)

// Resolution is the outcome of resolving the latest artifact of one Target.
// A failed resolution keeps whatever was learned before the failure, e.g. the
// versions found before a constraint removed all of them.
type Resolution struct {
	// ID uniquely identifies this resolution in history.
	ID string `json:"id"`

	// Target is the resolved target.
	Target Target `json:"target"`

	// Versions contains every version found on the page, in page order.
	Versions []string `json:"versions"`

	// Candidates contains the versions left after constraint filtering.
	// Equal to Versions when the target has no constraint.
	Candidates []string `json:"candidates,omitempty"`

	// Latest is the selected version.
	Latest string `json:"latest,omitempty"`

	// ArtifactURL is the composed location of the latest artifact.
	ArtifactURL string `json:"artifact_url,omitempty"`

	// StatusCode is the HTTP status of the listing response.
	StatusCode int `json:"status_code,omitempty"`

	// ContentType is the Content-Type of the listing response.
	ContentType string `json:"content_type,omitempty"`

	// ContentDigest is the SHA3-256 digest of the listing body.
	ContentDigest string `json:"content_digest,omitempty"`

	// ChunkCount is the number of text chunks the page was split into.
	ChunkCount int `json:"chunk_count"`

	// ResolvedAt is when the resolution started.
	ResolvedAt time.Time `json:"resolved_at"`

	// Duration is how long the resolution took.
	Duration time.Duration `json:"duration"`

	// Page is the fetched listing. It is kept in memory only.
	Page *Page `json:"-"`

	// PerformedSteps lists the pipeline steps that completed.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error is the failure, if any. It is not serialized; see ErrorMessage.
	Error error `json:"-"`

	// ErrorMessage is the text of Error.
	ErrorMessage string `json:"error,omitempty"`
}

// NewResolution creates an empty Resolution for target.
func NewResolution(target Target) *Resolution {
	return &Resolution{
		ID:         uuid.NewString(),
		Target:     target,
		Versions:   make([]string, 0),
		ResolvedAt: time.Now(),
	}
}

// SetError records err on the resolution.
func (r *Resolution) SetError(err error) {
	r.Error = err
	if err != nil {
		r.ErrorMessage = err.Error()
	} else {
		r.ErrorMessage = ""
	}
}

// Succeeded reports whether an artifact URL was resolved without error.
func (r *Resolution) Succeeded() bool {
	return r.ErrorMessage == "" && r.ArtifactURL != ""
}
