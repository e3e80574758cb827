// Package encoder produces image variant files. libvips (via govips) is
// the primary encoder; a pure-Go fallback based on imaging covers
// environments without libvips.
package encoder
