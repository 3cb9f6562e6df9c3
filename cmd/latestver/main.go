// Package main provides the entry point for the latestver CLI.
//
// latestver finds the newest release of a piece of software on a directory
// listing page and prints the URL of its artifact.
//
// Usage:
//
//	latestver resolve https://example.com/stable/ mysoftware- .tar.gz
//	latestver batch --config .latestver
//
// See --help for all available options.
package main

// main is the entry point for latestver.
func main() {
	Execute()
}
