package types

import (
	"github.com/prysmaticlabs/go-bitfield"
)

// SyncCommitteeContribution is an aggregate of sync committee messages for a
// single subcommittee, produced by a sync subcommittee aggregator.
type SyncCommitteeContribution struct {
	Slot              Slot
	BlockRoot         [32]byte
	SubcommitteeIndex uint64
	AggregationBits   bitfield.Bitvector128
	Signature         [96]byte
}

// GetSlot returns the slot the contribution applies to.
func (c *SyncCommitteeContribution) GetSlot() Slot {
	return c.Slot
}
