// Package manifest defines the persisted content manifest, the single
// source of truth for what has been scanned and processed, and the store
// that loads and atomically persists it.
package manifest
