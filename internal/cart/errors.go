package cart

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when an id is missing from the catalog (Add) or
// from the cart (Remove, Toggle). Use errors.Is to test for it.
var ErrNotFound = errors.New("not found")

// ErrAlreadyInCart is returned by Add when the id already has an entry.
var ErrAlreadyInCart = errors.New("already in cart")

var (
	errNotInCatalog = fmt.Errorf("%w in catalog", ErrNotFound)
	errNotInCart    = fmt.Errorf("%w in cart", ErrNotFound)
)

func itemError(id uint64, err error) error {
	return fmt.Errorf("item %d: %w", id, err)
}
