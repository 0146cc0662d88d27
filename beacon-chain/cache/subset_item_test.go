package cache

import (
	"testing"

	"github.com/prysmaticlabs/go-bitfield"

	"github.com/prysmaticlabs/observed-aggregates/shared/params"
	"github.com/prysmaticlabs/observed-aggregates/shared/testutil/assert"
	"github.com/prysmaticlabs/observed-aggregates/shared/testutil/require"
	"github.com/prysmaticlabs/observed-aggregates/types"
)

func testAttestationElectra(slot types.Slot, committee uint64, bitIndices ...uint64) *types.AttestationElectra {
	bits := bitfield.NewBitlist(params.BeaconConfig().MaxValidatorsPerSlot())
	for _, idx := range bitIndices {
		bits.SetBitAt(idx, true)
	}
	committeeBits := bitfield.NewBitvector64()
	committeeBits.SetBitAt(committee, true)
	return &types.AttestationElectra{
		AggregationBits: bits,
		Data: &types.AttestationData{
			Slot:            slot,
			BeaconBlockRoot: [32]byte{'b'},
			Source:          &types.Checkpoint{Epoch: 0, Root: [32]byte{'s'}},
			Target:          &types.Checkpoint{Epoch: 1, Root: [32]byte{'t'}},
		},
		CommitteeBits: committeeBits,
	}
}

func TestSubsetItem_Reflexive(t *testing.T) {
	t.Run("base attestation", func(t *testing.T) {
		item := ForAttestation(testAttestation(0, 1, 0, 3))
		stored, err := item.Item()
		require.NoError(t, err)
		assert.Equal(t, true, item.IsSubset(stored))
		assert.Equal(t, true, item.IsSuperset(stored))
	})
	t.Run("electra attestation", func(t *testing.T) {
		item := ForAttestation(testAttestationElectra(0, 1, 0, 3))
		stored, err := item.Item()
		require.NoError(t, err)
		assert.Equal(t, true, item.IsSubset(stored))
		assert.Equal(t, true, item.IsSuperset(stored))
	})
	t.Run("sync contribution", func(t *testing.T) {
		item := ForSyncContribution(testContribution(0, 1, 0, 3))
		stored, err := item.Item()
		require.NoError(t, err)
		assert.Equal(t, true, item.IsSubset(stored))
		assert.Equal(t, true, item.IsSuperset(stored))
	})
}

func TestSubsetItem_ExtendedBitsMatchElectraShape(t *testing.T) {
	base := testAttestation(0, 1, 2, 7)
	extended, err := base.ExtendAggregationBits()
	require.NoError(t, err)

	// An Electra attestation carrying the same participation compares as
	// both subset and superset of the extended pre-Electra bits.
	electra := ForAttestation(testAttestationElectra(0, 1, 2, 7))
	assert.Equal(t, true, electra.IsSubset(extended))
	assert.Equal(t, true, electra.IsSuperset(extended))

	// Strictly more participation is a superset but not a subset.
	wider := ForAttestation(testAttestationElectra(0, 1, 2, 7, 9))
	assert.Equal(t, false, wider.IsSubset(extended))
	assert.Equal(t, true, wider.IsSuperset(extended))
}

func TestSubsetItem_RootDependsOnCommitteeIndex(t *testing.T) {
	a1 := testAttestation(0, 1, 0)
	a2 := testAttestation(0, 1, 0)
	a2.Data.CommitteeIndex = 2

	r1, err := ForAttestation(a1).Root()
	require.NoError(t, err)
	r2, err := ForAttestation(a2).Root()
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2, "different committees must key differently")

	// The committee index enters the key twice for Electra attestations:
	// once via the data (zero on the wire) and once explicitly.
	e1 := ForAttestation(testAttestationElectra(0, 1, 0))
	e2 := ForAttestation(testAttestationElectra(0, 2, 0))
	r1, err = e1.Root()
	require.NoError(t, err)
	r2, err = e2.Root()
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2)
}

func TestSubsetItem_RootIsDeterministic(t *testing.T) {
	item := ForAttestation(testAttestation(3, 9, 1))
	r1, err := item.Root()
	require.NoError(t, err)
	r2, err := item.Root()
	require.NoError(t, err)
	assert.Equal(t, r1, r2)

	other := ForAttestation(testAttestation(3, 9, 5))
	r3, err := other.Root()
	require.NoError(t, err)
	assert.Equal(t, r1, r3, "aggregation bits must not affect the identity root")
}

func TestSubsetItem_RootErrorWithoutCommitteeBits(t *testing.T) {
	att := testAttestationElectra(0, 1, 0)
	att.CommitteeBits = bitfield.NewBitvector64()

	_, err := ForAttestation(att).Root()
	require.Equal(t, ErrRoot, err)

	store := NewObservedAggregateAttestations()
	_, err = store.ObserveItem(ForAttestation(att), nil)
	require.Equal(t, ErrRoot, err)
}

func TestSubsetItem_GetItemErrorOnOversizedBits(t *testing.T) {
	att := testAttestation(0, 1)
	att.AggregationBits = bitfield.NewBitlist(params.BeaconConfig().MaxValidatorsPerSlot() + 1)

	item := ForAttestation(att)
	_, err := item.Item()
	require.Equal(t, ErrGetItem, err)

	// Comparison against any stored container fails closed.
	stored := bitfield.NewBitlist(params.BeaconConfig().MaxValidatorsPerSlot())
	assert.Equal(t, false, item.IsSubset(stored))
	assert.Equal(t, false, item.IsSuperset(stored))
}

func TestSubsetItem_MismatchedVectorWidthsNeverCompare(t *testing.T) {
	item := ForSyncContribution(testContribution(0, 1, 0))
	assert.Equal(t, false, item.IsSubset(bitfield.Bitvector128{}))
	assert.Equal(t, false, item.IsSuperset(bitfield.Bitvector128{}))
}

func TestSubsetItem_ContributionRootCoversKeyFields(t *testing.T) {
	c1 := testContribution(0, 1, 0)
	c2 := testContribution(0, 1, 0)
	c2.SubcommitteeIndex++

	r1, err := ForSyncContribution(c1).Root()
	require.NoError(t, err)
	r2, err := ForSyncContribution(c2).Root()
	require.NoError(t, err)
	assert.NotEqual(t, r1, r2, "different subcommittees must key differently")

	c3 := testContribution(0, 1, 0)
	c3.BlockRoot = [32]byte{'x'}
	r3, err := ForSyncContribution(c3).Root()
	require.NoError(t, err)
	assert.NotEqual(t, r1, r3, "different block roots must key differently")
}
