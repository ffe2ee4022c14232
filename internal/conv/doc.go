// Package conv provides checked integer conversions.
//
// The index type of the substrate is unsigned and its width is selected at
// build time, while Go slices are addressed with int. Every crossing between
// the two goes through this package so that a negative length or an index
// that does not fit the selected width is reported instead of wrapping.
//
// Loop counters and values already bounded by a slice length should use a
// direct cast instead.
package conv
