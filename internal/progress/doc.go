// Package progress renders pipeline progress to the terminal. On a TTY it
// keeps one live line per worker plus a completion counter; elsewhere it
// falls back to plain log lines so output stays readable in CI logs and
// files.
package progress
