// Package fingerprint computes the short, stable hashes that drive cache
// invalidation: one over the image processing configuration, one over the
// scan configuration, and one over a single content item's identity.
package fingerprint
