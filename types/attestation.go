package types

import (
	"github.com/pkg/errors"
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/prysmaticlabs/observed-aggregates/shared/params"
)

var (
	// ErrNoCommitteeBits is returned when an Electra attestation carries an
	// empty committee bits vector, leaving its committee undetermined.
	ErrNoCommitteeBits = errors.New("attestation has no committee bits set")
	// ErrBitsExceedSlotWidth is returned when per-committee aggregation bits
	// are wider than the full per-slot bitlist they would be extended into.
	ErrBitsExceedSlotWidth = errors.New("aggregation bits exceed the maximum validators per slot")
)

// Checkpoint is an epoch boundary reference.
type Checkpoint struct {
	Epoch Epoch
	Root  [32]byte
}

// AttestationData is the unsigned vote carried by every attestation shape.
//
// Post-Electra the on-wire CommitteeIndex is always zero; the real committee
// is carried in the attestation's committee bits.
type AttestationData struct {
	Slot            Slot
	CommitteeIndex  CommitteeIndex
	BeaconBlockRoot [32]byte
	Source          *Checkpoint
	Target          *Checkpoint
}

// Att is the common view over the two attestation shapes. The concrete type
// behind it decides how aggregation bits are interpreted.
type Att interface {
	GetSlot() Slot
	GetData() *AttestationData
	GetCommitteeIndex() (CommitteeIndex, error)
}

// Attestation is the pre-Electra attestation shape. Its aggregation bits
// cover a single committee.
type Attestation struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	Signature       [96]byte
}

// GetSlot returns the slot the attestation votes for.
func (a *Attestation) GetSlot() Slot {
	return a.Data.Slot
}

// GetData returns the attestation data.
func (a *Attestation) GetData() *AttestationData {
	return a.Data
}

// GetCommitteeIndex returns the committee the aggregation bits apply to.
func (a *Attestation) GetCommitteeIndex() (CommitteeIndex, error) {
	return a.Data.CommitteeIndex, nil
}

// ExtendAggregationBits widens the per-committee aggregation bits to the full
// per-slot width, preserving set bit positions. Bits wider than the target
// cannot be represented and return ErrBitsExceedSlotWidth.
func (a *Attestation) ExtendAggregationBits() (bitfield.Bitlist, error) {
	maxBits := params.BeaconConfig().MaxValidatorsPerSlot()
	if a.AggregationBits.Len() > maxBits {
		return nil, ErrBitsExceedSlotWidth
	}
	extended := bitfield.NewBitlist(maxBits)
	for _, idx := range a.AggregationBits.BitIndices() {
		extended.SetBitAt(uint64(idx), true)
	}
	return extended, nil
}

// AttestationElectra is the post-Electra attestation shape. Its aggregation
// bits span every committee of the slot, and the committee selection lives in
// CommitteeBits.
type AttestationElectra struct {
	AggregationBits bitfield.Bitlist
	Data            *AttestationData
	CommitteeBits   bitfield.Bitvector64
	Signature       [96]byte
}

// GetSlot returns the slot the attestation votes for.
func (a *AttestationElectra) GetSlot() Slot {
	return a.Data.Slot
}

// GetData returns the attestation data.
func (a *AttestationElectra) GetData() *AttestationData {
	return a.Data
}

// GetCommitteeIndex returns the lowest committee selected in the committee
// bits. Aggregates with more than one committee bit are rejected upstream by
// gossip validation, so the lowest bit identifies the committee.
func (a *AttestationElectra) GetCommitteeIndex() (CommitteeIndex, error) {
	for i := uint64(0); i < a.CommitteeBits.Len(); i++ {
		if a.CommitteeBits.BitAt(i) {
			return CommitteeIndex(i), nil
		}
	}
	return 0, ErrNoCommitteeBits
}
