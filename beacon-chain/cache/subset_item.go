package cache

import (
	ssz "github.com/ferranbt/fastssz"
	"github.com/prysmaticlabs/go-bitfield"

	"github.com/prysmaticlabs/observed-aggregates/types"
)

// SubsetItem is the view the observed aggregates cache takes over an incoming
// aggregate. I is the container stored for later subset comparison with new
// aggregates of the same identity.
type SubsetItem[I any] interface {
	// GetSlot returns the aggregate's slot.
	GetSlot() types.Slot
	// Root returns the identity root that keys the stored containers.
	Root() ([32]byte, error)
	// Item returns an owned copy of the aggregate's bits, in the container
	// shape used for storage.
	Item() (I, error)
	// IsSubset returns true if every set bit of the aggregate is set in stored.
	IsSubset(stored I) bool
	// IsSuperset returns true if every set bit of stored is set in the aggregate.
	IsSuperset(stored I) bool
}

// observedAttestationKey augments attestation data with the committee index.
//
// Its hash tree root keys the map of observed aggregate attestations. The
// committee index has to be part of the key post-Electra, where the on-wire
// attestation data index is always zero: without it, aggregation bits of
// different committees voting for the same data would be compared.
type observedAttestationKey struct {
	committeeIndex uint64
	data           *types.AttestationData
}

// HashTreeRoot ssz hashes the observedAttestationKey object.
func (k *observedAttestationKey) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(k)
}

// HashTreeRootWith ssz hashes the observedAttestationKey object with a hasher.
func (k *observedAttestationKey) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()

	// Field (0) 'CommitteeIndex'
	hh.PutUint64(k.committeeIndex)

	// Field (1) 'Data'
	if err := k.data.HashTreeRootWith(hh); err != nil {
		return err
	}

	hh.Merkleize(indx)
	return nil
}

// GetTree ssz hashes the observedAttestationKey object.
func (k *observedAttestationKey) GetTree() (*ssz.Node, error) {
	return ssz.ProofTree(k)
}

// syncContributionKey identifies a sync committee contribution by block root,
// slot and subcommittee. Its hash tree root keys the map of observed sync
// contributions.
type syncContributionKey struct {
	root              [32]byte
	slot              uint64
	subcommitteeIndex uint64
}

// HashTreeRoot ssz hashes the syncContributionKey object.
func (k *syncContributionKey) HashTreeRoot() ([32]byte, error) {
	return ssz.HashWithDefaultHasher(k)
}

// HashTreeRootWith ssz hashes the syncContributionKey object with a hasher.
func (k *syncContributionKey) HashTreeRootWith(hh *ssz.Hasher) error {
	indx := hh.Index()

	// Field (0) 'Root'
	hh.PutBytes(k.root[:])

	// Field (1) 'Slot'
	hh.PutUint64(k.slot)

	// Field (2) 'SubcommitteeIndex'
	hh.PutUint64(k.subcommitteeIndex)

	hh.Merkleize(indx)
	return nil
}

// GetTree ssz hashes the syncContributionKey object.
func (k *syncContributionKey) GetTree() (*ssz.Node, error) {
	return ssz.ProofTree(k)
}

// attestationItem adapts an attestation of either shape to the SubsetItem
// contract. Pre-Electra aggregation bits cover a single committee and are
// extended to the full per-slot width before any comparison, so stored
// containers are uniformly shaped.
type attestationItem struct {
	att types.Att
}

// ForAttestation wraps an attestation for observation.
func ForAttestation(att types.Att) SubsetItem[bitfield.Bitlist] {
	return &attestationItem{att: att}
}

// GetSlot returns the attestation's slot.
func (a *attestationItem) GetSlot() types.Slot {
	return a.att.GetSlot()
}

// Root returns the hash tree root of the attestation data augmented with the
// committee index.
func (a *attestationItem) Root() ([32]byte, error) {
	ci, err := a.att.GetCommitteeIndex()
	if err != nil {
		return [32]byte{}, ErrRoot
	}
	key := &observedAttestationKey{
		committeeIndex: uint64(ci),
		data:           a.att.GetData(),
	}
	root, err := key.HashTreeRoot()
	if err != nil {
		return [32]byte{}, ErrRoot
	}
	return root, nil
}

// Item returns the attestation's aggregation bits, extended to the full
// per-slot width for pre-Electra attestations.
func (a *attestationItem) Item() (bitfield.Bitlist, error) {
	switch att := a.att.(type) {
	case *types.Attestation:
		bits, err := att.ExtendAggregationBits()
		if err != nil {
			return nil, ErrGetItem
		}
		return bits, nil
	case *types.AttestationElectra:
		return bitfield.Bitlist(append([]byte(nil), att.AggregationBits...)), nil
	default:
		return nil, ErrGetItem
	}
}

func (a *attestationItem) comparisonBits() (bitfield.Bitlist, bool) {
	switch att := a.att.(type) {
	case *types.Attestation:
		bits, err := att.ExtendAggregationBits()
		if err != nil {
			return nil, false
		}
		return bits, true
	case *types.AttestationElectra:
		return att.AggregationBits, true
	default:
		return nil, false
	}
}

// IsSubset returns true if every set bit of the attestation is set in stored.
func (a *attestationItem) IsSubset(stored bitfield.Bitlist) bool {
	bits, ok := a.comparisonBits()
	if !ok {
		return false
	}
	contained, err := stored.Contains(bits)
	return err == nil && contained
}

// IsSuperset returns true if every set bit of stored is set in the attestation.
func (a *attestationItem) IsSuperset(stored bitfield.Bitlist) bool {
	bits, ok := a.comparisonBits()
	if !ok {
		return false
	}
	contained, err := bits.Contains(stored)
	return err == nil && contained
}

// syncContributionItem adapts a sync committee contribution to the SubsetItem
// contract.
type syncContributionItem struct {
	contribution *types.SyncCommitteeContribution
}

// ForSyncContribution wraps a sync committee contribution for observation.
func ForSyncContribution(c *types.SyncCommitteeContribution) SubsetItem[bitfield.Bitvector128] {
	return &syncContributionItem{contribution: c}
}

// GetSlot returns the contribution's slot.
func (s *syncContributionItem) GetSlot() types.Slot {
	return s.contribution.Slot
}

// Root returns the hash tree root of the contribution's block root, slot and
// subcommittee index.
func (s *syncContributionItem) Root() ([32]byte, error) {
	key := &syncContributionKey{
		root:              s.contribution.BlockRoot,
		slot:              uint64(s.contribution.Slot),
		subcommitteeIndex: s.contribution.SubcommitteeIndex,
	}
	root, err := key.HashTreeRoot()
	if err != nil {
		return [32]byte{}, ErrRoot
	}
	return root, nil
}

// Item returns an owned copy of the contribution's aggregation bits.
func (s *syncContributionItem) Item() (bitfield.Bitvector128, error) {
	return bitfield.Bitvector128(append([]byte(nil), s.contribution.AggregationBits...)), nil
}

// IsSubset returns true if every set bit of the contribution is set in stored.
func (s *syncContributionItem) IsSubset(stored bitfield.Bitvector128) bool {
	return bitsWithin(s.contribution.AggregationBits, stored)
}

// IsSuperset returns true if every set bit of stored is set in the contribution.
func (s *syncContributionItem) IsSuperset(stored bitfield.Bitvector128) bool {
	return bitsWithin(stored, s.contribution.AggregationBits)
}

// bitsWithin reports whether every set bit of sub is also set in super. The
// fixed-width vector types expose raw bytes rather than a subset predicate,
// so the check runs over the underlying bytes. Mismatched widths never
// compare as subsets.
func bitsWithin(sub, super []byte) bool {
	if len(sub) != len(super) {
		return false
	}
	for i := range sub {
		if sub[i]&^super[i] != 0 {
			return false
		}
	}
	return true
}
