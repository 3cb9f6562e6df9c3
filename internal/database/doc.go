// Package database provides SQLite-based storage of resolution history.
//
// HistoryDB records every resolution made with --save so that the history
// command can show when a target's latest version changed. Resolution never
// reads from it; each run fetches the listing page again.
//
// The store uses modernc.org/sqlite, a CGO-free driver, and keeps the whole
// history in a single file in the XDG data directory.
package database
