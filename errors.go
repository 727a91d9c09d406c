package simbooks

import "errors"

var (
	// ErrEmptySelection is returned when a compute action has no record at all.
	ErrEmptySelection = errors.New("no records selected")
	// ErrMissingColumn is returned when an input table lacks a required column.
	ErrMissingColumn = errors.New("missing required column")
	// ErrInvalidCutoff is returned when the statement cutoff cannot be used.
	ErrInvalidCutoff = errors.New("invalid cutoff")
	// ErrNoPrice is returned by a PriceSource that has no reference price.
	ErrNoPrice = errors.New("no reference price")
)
