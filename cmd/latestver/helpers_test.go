package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

const stableListing = `<html><head><title>Index of /stable</title></head><body>
<h1>Index of /stable</h1>
<pre><a href="?C=N;O=D">Name</a>  <a href="?C=M;O=A">Last modified</a>  <a href="?C=S;O=A">Size</a>
<hr><a href="/">Parent Directory</a>                             -
<a href="mysoftware-1.2.3.tar.gz">mysoftware-1.2.3.tar.gz</a>   2023-01-10 10:00  1.2M
<a href="mysoftware-1.10.0.tar.gz">mysoftware-1.10.0.tar.gz</a>  2023-06-01 10:00  1.3M
<a href="mysoftware-1.9.9.tar.gz">mysoftware-1.9.9.tar.gz</a>   2023-05-01 10:00  1.3M
<a href="tool-2.5.zip">tool-2.5.zip</a>              2023-02-01 10:00  300K
<a href="tool-2.10.zip">tool-2.10.zip</a>             2023-03-01 10:00  310K
<a href="lib++-3.1.4.zip">lib++-3.1.4.zip</a>           2023-04-01 10:00  80K
<hr></pre>
</body></html>`

// listingServer serves stableListing at /stable/, a malformed listing at
// /weird/ and 404 elsewhere. It counts the requests it receives.
type listingServer struct {
	*httptest.Server
	hits       atomic.Int64
	userAgent  atomic.Value
	authHeader atomic.Value
}

func newListingServer(t *testing.T) *listingServer {
	t.Helper()

	ls := &listingServer{}
	mux := http.NewServeMux()
	mux.HandleFunc("/stable/", func(w http.ResponseWriter, r *http.Request) {
		ls.userAgent.Store(r.UserAgent())
		ls.authHeader.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(stableListing))
	})
	mux.HandleFunc("/weird/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("data-1..2.bin\n"))
	})

	ls.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ls.hits.Add(1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(ls.Close)
	return ls
}

func (ls *listingServer) stableURL() string {
	return ls.URL + "/stable/"
}

func (ls *listingServer) lastUserAgent() string {
	v, _ := ls.userAgent.Load().(string)
	return v
}

func (ls *listingServer) lastAuthorization() string {
	v, _ := ls.authHeader.Load().(string)
	return v
}

// execute runs the root command with args and returns what it wrote.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	cmd := NewRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}
