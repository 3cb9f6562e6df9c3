package main

import (
	"errors"

	"github.com/hashicorp/go-multierror"

	"github.com/nao1215/latestver/internal/listing"
	"github.com/nao1215/latestver/internal/version"
)

// Process exit codes.
const (
	exitOK        = 0
	exitError     = 1 // usage, configuration and other errors
	exitTransport = 2 // the listing page could not be retrieved
	exitNoVersion = 3 // no token fit the template
	exitMalformed = 4 // a matched token is not a numeric version
)

// exitCode maps err to a process exit code.
// For batch failures the first failed target decides.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var merr *multierror.Error
	if errors.As(err, &merr) && len(merr.Errors) > 0 {
		return exitCode(merr.Errors[0])
	}

	var transportErr *listing.TransportError
	var malformedErr *version.MalformedVersionError
	switch {
	case errors.As(err, &transportErr):
		return exitTransport
	case errors.Is(err, version.ErrNoVersionsFound):
		return exitNoVersion
	case errors.As(err, &malformedErr):
		return exitMalformed
	default:
		return exitError
	}
}
