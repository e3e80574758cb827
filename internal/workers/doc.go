// Package workers computes pool sizes for the variant pipeline based on
// available CPU, with an environment override for manual tuning.
package workers
