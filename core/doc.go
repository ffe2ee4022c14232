// Package core defines the index type shared by every component.
//
// IdxSize addresses arena slots and row positions. It is 32 bits wide by
// default; building with the bigidx tag widens it to 64 bits:
//
//	go build -tags bigidx ./...
//
// The choice is made once per build. Code that needs to move between IdxSize
// and int must use IdxFromInt and IdxToInt rather than a bare cast.
package core
