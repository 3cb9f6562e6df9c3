// Package pipeline resolves targets by running a fixed sequence of steps.
//
// A resolution fetches the listing page, extracts every version token that
// fits the target's template, selects the numeric maximum and composes the
// artifact URL from it. Each stage is a Step that reads and updates a
// model.Resolution. A failing step ends the resolution, so a page that could
// not be fetched is never scanned.
//
// BatchProcessor resolves many targets concurrently with errgroup and joins
// their failures with go-multierror.
package pipeline
