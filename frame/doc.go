// Package frame applies functions to groups of rows and to trailing windows of a
// series, in parallel through package pool, and reassembles the per-group or
// per-position results into one index-aligned Frame backed by a gonum matrix.
package frame
