// Package listing retrieves directory listing pages and splits them into text.
//
// # Components
//
//   - Fetcher: Performs the HTTP GET of a listing page with an optional
//     retry budget, proxy and body size limit
//   - Tokenize: Splits an HTML page into the text chunks a browser would
//     render, one chunk per run of text between tags
//
// # Usage
//
//	fetcher, err := listing.NewFetcher(listing.WithTimeout(30 * time.Second))
//	page, err := fetcher.Fetch(ctx, "https://mysoftware.com/stable/")
//	chunks, err := listing.TokenizePage(page)
//
// # Failures
//
// Every failure to obtain a page (DNS, connection refused, timeout, non-2xx
// status) is reported as a *TransportError carrying the requested URL.
package listing
