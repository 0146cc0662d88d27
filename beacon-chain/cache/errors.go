package cache

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/prysmaticlabs/observed-aggregates/types"
)

var (
	// ErrGetItem is returned when the aggregation bits of an aggregate could
	// not be extracted into a storable container.
	ErrGetItem = errors.New("could not extract aggregation bits from aggregate")
	// ErrRoot is returned when the identity root of an aggregate could not be
	// computed, e.g. because its committee cannot be determined.
	ErrRoot = errors.New("could not determine aggregate identity root")
)

// SlotTooLowError is returned when an aggregate targets a slot below the
// cache's retention floor.
type SlotTooLowError struct {
	Slot                  types.Slot
	LowestPermissibleSlot types.Slot
}

func (e *SlotTooLowError) Error() string {
	return fmt.Sprintf("slot %d is lower than the lowest permissible slot %d", e.Slot, e.LowestPermissibleSlot)
}

// IncorrectSlotError is returned when an aggregate is routed to a per-slot
// set whose slot does not match the aggregate's. The cache always routes by
// the aggregate's own slot, so this error indicates an internal bug.
type IncorrectSlotError struct {
	Expected types.Slot
	Actual   types.Slot
}

func (e *IncorrectSlotError) Error() string {
	return fmt.Sprintf("set for slot %d received aggregate for slot %d", e.Expected, e.Actual)
}

// InvalidSetIndexError is returned when set routing produced an index that
// does not exist. This error indicates an internal bug.
type InvalidSetIndexError struct {
	Index int
}

func (e *InvalidSetIndexError) Error() string {
	return fmt.Sprintf("slot set index %d does not exist", e.Index)
}

// MaxObservationsPerSlotError is returned when a slot has reached its maximum
// number of distinct observed aggregates. Subset lookups, subset observations
// and superset replacements keep working past this point; any other aggregate
// is refused, whether or not its identity root was already seen.
type MaxObservationsPerSlotError struct {
	Capacity int
}

func (e *MaxObservationsPerSlotError) Error() string {
	return fmt.Sprintf("reached maximum of %d observed aggregates per slot", e.Capacity)
}
