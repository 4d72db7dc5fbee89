package command

import (
	"errors"

	"github.com/cynergists/go-viewprefs/pkg/types"
)

var (
	// ErrUnknownTable indicates the command targeted a table outside the enumerated set.
	ErrUnknownTable = types.ErrUnknownTable
	// ErrColumnRequired indicates a column identifier was blank.
	ErrColumnRequired = types.ErrColumnRequired
	// ErrColumnIndexInvalid indicates a negative column position in a move.
	ErrColumnIndexInvalid = errors.New("go-viewprefs: column index must not be negative")
	// ErrFilterKeyRequired indicates a filter was set without a column key.
	ErrFilterKeyRequired = errors.New("go-viewprefs: filter key required")
	// ErrViewNameRequired indicates a saved view command omitted the view name.
	ErrViewNameRequired = types.ErrViewNameRequired
	// ErrSavedViewsDisabled indicates saved views are disabled via feature gate.
	ErrSavedViewsDisabled = errors.New("go-viewprefs: saved views disabled")
)
