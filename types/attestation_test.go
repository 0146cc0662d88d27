package types

import (
	"testing"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/prysmaticlabs/observed-aggregates/shared/params"
	"github.com/prysmaticlabs/observed-aggregates/shared/testutil/assert"
	"github.com/prysmaticlabs/observed-aggregates/shared/testutil/require"
)

func TestSlot_SaturatingSub(t *testing.T) {
	assert.Equal(t, Slot(5), Slot(10).SaturatingSub(5))
	assert.Equal(t, Slot(0), Slot(10).SaturatingSub(10))
	assert.Equal(t, Slot(0), Slot(10).SaturatingSub(11))
	assert.Equal(t, Slot(0), Slot(0).SaturatingSub(1))
}

func TestAttestation_ExtendAggregationBits(t *testing.T) {
	bits := bitfield.NewBitlist(128)
	bits.SetBitAt(0, true)
	bits.SetBitAt(5, true)
	bits.SetBitAt(127, true)
	att := &Attestation{
		AggregationBits: bits,
		Data:            &AttestationData{Slot: 1, CommitteeIndex: 2},
	}

	extended, err := att.ExtendAggregationBits()
	require.NoError(t, err)
	assert.Equal(t, params.BeaconConfig().MaxValidatorsPerSlot(), extended.Len())
	assert.Equal(t, uint64(3), extended.Count())
	assert.DeepEqual(t, []int{0, 5, 127}, extended.BitIndices())
}

func TestAttestation_ExtendAggregationBitsTooWide(t *testing.T) {
	att := &Attestation{
		AggregationBits: bitfield.NewBitlist(params.BeaconConfig().MaxValidatorsPerSlot() + 1),
		Data:            &AttestationData{},
	}
	_, err := att.ExtendAggregationBits()
	require.Equal(t, ErrBitsExceedSlotWidth, err)
}

func TestAttestation_GetCommitteeIndex(t *testing.T) {
	att := &Attestation{Data: &AttestationData{CommitteeIndex: 7}}
	ci, err := att.GetCommitteeIndex()
	require.NoError(t, err)
	assert.Equal(t, CommitteeIndex(7), ci)
}

func TestAttestationElectra_GetCommitteeIndex(t *testing.T) {
	committeeBits := bitfield.NewBitvector64()
	committeeBits.SetBitAt(9, true)
	committeeBits.SetBitAt(30, true)
	att := &AttestationElectra{
		Data:          &AttestationData{},
		CommitteeBits: committeeBits,
	}
	ci, err := att.GetCommitteeIndex()
	require.NoError(t, err)
	assert.Equal(t, CommitteeIndex(9), ci, "lowest set committee bit wins")

	att.CommitteeBits = bitfield.NewBitvector64()
	_, err = att.GetCommitteeIndex()
	require.Equal(t, ErrNoCommitteeBits, err)
}

func TestAttestationData_HashTreeRoot(t *testing.T) {
	data := &AttestationData{
		Slot:            3,
		CommitteeIndex:  1,
		BeaconBlockRoot: [32]byte{'b'},
		Source:          &Checkpoint{Epoch: 0, Root: [32]byte{'s'}},
		Target:          &Checkpoint{Epoch: 1, Root: [32]byte{'t'}},
	}

	r1, err := data.HashTreeRoot()
	require.NoError(t, err)
	r2, err := data.HashTreeRoot()
	require.NoError(t, err)
	assert.Equal(t, r1, r2, "hashing must be deterministic")

	changed := *data
	changed.Slot = 4
	r3, err := changed.HashTreeRoot()
	require.NoError(t, err)
	assert.NotEqual(t, r1, r3)
}

func TestAttestationData_HashTreeRootNilCheckpoints(t *testing.T) {
	data := &AttestationData{Slot: 1}
	r1, err := data.HashTreeRoot()
	require.NoError(t, err)

	explicit := &AttestationData{
		Slot:   1,
		Source: &Checkpoint{},
		Target: &Checkpoint{},
	}
	r2, err := explicit.HashTreeRoot()
	require.NoError(t, err)
	assert.Equal(t, r1, r2, "nil checkpoints hash as zero checkpoints")
}
