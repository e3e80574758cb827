// Package planner computes, for one image, the (width, format) variants
// still required given the size ladder, the config fingerprints and what
// already exists on disk.
package planner
