package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/nao1215/latestver/internal/listing"
	"github.com/nao1215/latestver/internal/model"
	"github.com/nao1215/latestver/internal/version"
)

// PageFetcher retrieves a listing page.
// *listing.Fetcher satisfies this interface.
type PageFetcher interface {
	Fetch(ctx context.Context, pageURL string) (*model.Page, error)
}

// Step names as recorded in Resolution.PerformedSteps.
const (
	StepFetch   = "fetch"
	StepExtract = "extract"
	StepSelect  = "select"
	StepCompose = "compose"
)

// FetchStep retrieves the target's listing page.
type FetchStep struct {
	fetcher PageFetcher
}

// NewFetchStep creates a step that fetches pages with fetcher.
func NewFetchStep(fetcher PageFetcher) *FetchStep {
	return &FetchStep{fetcher: fetcher}
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return StepFetch
}

// Do fetches the page and records its response metadata.
func (s *FetchStep) Do(ctx context.Context, res *model.Resolution) error {
	page, err := s.fetcher.Fetch(ctx, res.Target.URL)
	if err != nil {
		return err
	}

	res.Page = page
	res.StatusCode = page.StatusCode
	res.ContentType = page.ContentType
	res.ContentDigest = page.Hash
	return nil
}

// ExtractStep splits the page into text chunks and collects the version
// tokens that fit the target's template. When the target has a constraint,
// tokens that do not satisfy it are dropped.
type ExtractStep struct{}

// NewExtractStep creates an extract step.
func NewExtractStep() *ExtractStep {
	return &ExtractStep{}
}

// Name returns the step name.
func (s *ExtractStep) Name() string {
	return StepExtract
}

// Do collects the versions. It fails with a *version.NoVersionsFoundError
// when no candidate is left.
func (s *ExtractStep) Do(_ context.Context, res *model.Resolution) error {
	if res.Page == nil {
		return fmt.Errorf("extract versions for %s: page was not fetched", res.Target.URL)
	}

	tmpl, err := res.Target.Template()
	if err != nil {
		return err
	}

	chunks, err := listing.TokenizePage(res.Page)
	if err != nil {
		return err
	}
	res.ChunkCount = len(chunks)
	res.Versions = tmpl.Collect(chunks)
	res.Candidates = res.Versions

	constraint, err := res.Target.VersionConstraint()
	if err != nil {
		return err
	}
	if constraint != nil {
		candidates, err := constraint.Filter(res.Versions)
		if err != nil {
			return fmt.Errorf("filter versions at %s: %w", res.Target.URL, err)
		}
		res.Candidates = candidates
	}

	if len(res.Candidates) == 0 {
		return &version.NoVersionsFoundError{
			URL:        res.Target.URL,
			Template:   tmpl,
			Constraint: res.Target.Constraint,
			Matched:    len(res.Versions),
		}
	}
	return nil
}

// SelectStep picks the numerically greatest candidate.
type SelectStep struct{}

// NewSelectStep creates a select step.
func NewSelectStep() *SelectStep {
	return &SelectStep{}
}

// Name returns the step name.
func (s *SelectStep) Name() string {
	return StepSelect
}

// Do selects the latest version.
func (s *SelectStep) Do(_ context.Context, res *model.Resolution) error {
	latest, err := version.SelectLatest(res.Candidates)
	if err != nil {
		tmpl, _ := res.Target.Template() //nolint:errcheck // validated by ExtractStep
		if errors.Is(err, version.ErrNoVersionsFound) {
			return &version.NoVersionsFoundError{URL: res.Target.URL, Template: tmpl}
		}
		if tmpl != nil {
			return fmt.Errorf("select version at %s with %q: %w", res.Target.URL, tmpl.Shape(), err)
		}
		return fmt.Errorf("select version at %s: %w", res.Target.URL, err)
	}

	res.Latest = latest
	return nil
}

// ComposeStep builds the artifact URL from the selected version.
type ComposeStep struct{}

// NewComposeStep creates a compose step.
func NewComposeStep() *ComposeStep {
	return &ComposeStep{}
}

// Name returns the step name.
func (s *ComposeStep) Name() string {
	return StepCompose
}

// Do composes the artifact URL.
func (s *ComposeStep) Do(_ context.Context, res *model.Resolution) error {
	if res.Latest == "" {
		return fmt.Errorf("compose artifact URL for %s: no version selected", res.Target.URL)
	}

	tmpl, err := res.Target.Template()
	if err != nil {
		return err
	}
	res.ArtifactURL = tmpl.Compose(res.Target.URL, res.Latest)
	return nil
}
