package conversion

import (
	"errors"
	"fmt"
)

var (
	// ErrNotMapped is returned by Mapper lookups for unbound items. Callers
	// treat it as "no corresponding position".
	ErrNotMapped = errors.New("conversion: item is not mapped")

	// ErrReentrantConversion is returned when a converter starts another
	// conversion on the dispatcher that is running it.
	ErrReentrantConversion = errors.New("conversion: re-entrant conversion")

	// ErrNoViewElement is returned by element factories that produced
	// nothing for an item that needs a view element.
	ErrNoViewElement = errors.New("conversion: no view element created")
)

// ContractError reports a caller-contract violation, for example firing an
// event for an item that never had a consumable entry.
type ContractError struct {
	Event  string
	Item   string
	Reason string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("conversion contract: %s (event %s, item %s)", e.Reason, e.Event, e.Item)
}

// ConverterError wraps a converter failure. Only the item being converted
// is affected; the rest of the batch still converts.
type ConverterError struct {
	Event string
	Err   error
}

func (e *ConverterError) Error() string {
	return fmt.Sprintf("converter for %s: %v", e.Event, e.Err)
}

func (e *ConverterError) Unwrap() error { return e.Err }
