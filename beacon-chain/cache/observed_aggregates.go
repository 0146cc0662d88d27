package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sirupsen/logrus"

	"github.com/prysmaticlabs/observed-aggregates/shared/params"
	"github.com/prysmaticlabs/observed-aggregates/types"
)

var (
	observedAggregatesCount = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observed_aggregates_total",
		Help: "Count of aggregates observed on gossip, by kind and outcome.",
	}, []string{"kind", "outcome"})
	observedAggregatesEvictions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observed_aggregates_forced_evictions_total",
		Help: "Count of slot sets evicted because the cache was at slot capacity.",
	}, []string{"kind"})
	observedAggregatesCapacityHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "observed_aggregates_slot_capacity_rejections_total",
		Help: "Count of aggregates refused because their slot reached its observation capacity.",
	}, []string{"kind"})
)

// ObserveOutcome is the result of observing an aggregate that was not
// rejected.
type ObserveOutcome uint8

const (
	// OutcomeNew indicates the aggregate carried new information.
	OutcomeNew ObserveOutcome = iota
	// OutcomeSubset indicates the aggregate is a non-strict subset of an
	// aggregate that was already observed.
	OutcomeSubset
)

// String returns a human readable representation of the outcome.
func (o ObserveOutcome) String() string {
	switch o {
	case OutcomeNew:
		return "new"
	case OutcomeSubset:
		return "subset"
	default:
		return "unknown"
	}
}

// slotAggregates holds the aggregates observed for a single slot, keyed by
// identity root. Each entry is a list of mutually non-subset containers: no
// stored container is a subset of another under the same root.
type slotAggregates[I any] struct {
	slot        types.Slot
	m           map[[32]byte][]I
	maxCapacity int
}

func newSlotAggregates[I any](slot types.Slot, initialCapacity, maxCapacity int) *slotAggregates[I] {
	return &slotAggregates[I]{
		slot:        slot,
		m:           make(map[[32]byte][]I, initialCapacity),
		maxCapacity: maxCapacity,
	}
}

// observe records item so future observations recognise it.
func (s *slotAggregates[I]) observe(item SubsetItem[I], root [32]byte) (ObserveOutcome, error) {
	if item.GetSlot() != s.slot {
		return 0, &IncorrectSlotError{Expected: s.slot, Actual: item.GetSlot()}
	}

	if stored, ok := s.m[root]; ok {
		for i := range stored {
			if item.IsSubset(stored[i]) {
				return OutcomeSubset, nil
			}
			// A superset replaces the stored entry in place, keeping the
			// list at one representative per comparable chain.
			if item.IsSuperset(stored[i]) {
				v, err := item.Item()
				if err != nil {
					return 0, err
				}
				stored[i] = v
				return OutcomeNew, nil
			}
		}
	}

	// Once a slot reaches its observation capacity no new identities are
	// recorded, but subset lookups keep answering so the gossip layer can
	// keep suppressing redundant forwards. The pubsub layer deduplicates by
	// message id, so this cannot cause a broadcast loop.
	if len(s.m) >= s.maxCapacity {
		return 0, &MaxObservationsPerSlotError{Capacity: s.maxCapacity}
	}

	v, err := item.Item()
	if err != nil {
		return 0, err
	}
	s.m[root] = append(s.m[root], v)
	return OutcomeNew, nil
}

// isKnownSubset returns true if item is a non-strict subset of any stored
// container under the given root. Read-only.
func (s *slotAggregates[I]) isKnownSubset(item SubsetItem[I], root [32]byte) (bool, error) {
	if item.GetSlot() != s.slot {
		return false, &IncorrectSlotError{Expected: s.slot, Actual: item.GetSlot()}
	}
	for _, stored := range s.m[root] {
		if item.IsSubset(stored) {
			return true, nil
		}
	}
	return false, nil
}

// len returns the number of distinct identity roots observed for the slot.
func (s *slotAggregates[I]) len() int {
	return len(s.m)
}

// ObservedAggregates tracks the aggregates seen over a sliding window of
// slots near the chain tip. It is not safe for concurrent use; callers
// serialize access.
type ObservedAggregates[I any] struct {
	lowestPermissibleSlot types.Slot
	sets                  []*slotAggregates[I]

	kind                   string
	defaultPerSlotCapacity int
	maxSlotCapacity        uint64
	maxPerSlotCapacity     int
}

// NewObservedAggregateAttestations creates an empty cache for aggregate
// attestations. Attestations are retained for every slot of the current and
// previous epoch. The default per-slot capacity matches the target committee
// size; the hard cap of 2^19 identities per slot is the DoS bound, upstream
// validation is expected to keep the real rate near the validator count.
func NewObservedAggregateAttestations() *ObservedAggregates[bitfield.Bitlist] {
	return &ObservedAggregates[bitfield.Bitlist]{
		kind:                   "attestation",
		defaultPerSlotCapacity: 128,
		maxSlotCapacity:        2 * params.BeaconConfig().SlotsPerEpoch,
		maxPerSlotCapacity:     1 << 19,
	}
}

// NewObservedSyncContributions creates an empty cache for sync committee
// contributions. Only the current slot's contributions are needed, with the
// expected aggregator count per slot across all subcommittees as default
// capacity and the sync committee size as the per-slot cap.
func NewObservedSyncContributions() *ObservedAggregates[bitfield.Bitvector128] {
	cfg := params.BeaconConfig()
	return &ObservedAggregates[bitfield.Bitvector128]{
		kind:                   "sync_contribution",
		defaultPerSlotCapacity: int(cfg.TargetAggregatorsPerSyncSubcommittee * cfg.SyncCommitteeSubnetCount),
		maxSlotCapacity:        1,
		maxPerSlotCapacity:     int(cfg.SyncCommitteeSize),
	}
}

// maxCapacity returns the number of slot sets retained. The two extra slots
// cover one slot of clock disparity on either side of the retention range.
func (o *ObservedAggregates[I]) maxCapacity() uint64 {
	return o.maxSlotCapacity + 2
}

// ObserveItem records item keyed at its identity root. If root is non-nil it
// is trusted to equal the item's own root and the recomputation is skipped.
// Returns whether the item was new information or a subset of something
// already seen.
func (o *ObservedAggregates[I]) ObserveItem(item SubsetItem[I], root *[32]byte) (ObserveOutcome, error) {
	index, err := o.getSetIndex(item.GetSlot())
	if err != nil {
		return 0, err
	}

	var r [32]byte
	if root != nil {
		r = *root
	} else {
		r, err = item.Root()
		if err != nil {
			return 0, err
		}
	}

	if index >= len(o.sets) {
		return 0, &InvalidSetIndexError{Index: index}
	}
	outcome, err := o.sets[index].observe(item, r)
	if err != nil {
		if _, ok := err.(*MaxObservationsPerSlotError); ok {
			observedAggregatesCapacityHits.WithLabelValues(o.kind).Inc()
		}
		return 0, err
	}
	observedAggregatesCount.WithLabelValues(o.kind, outcome.String()).Inc()
	return outcome, nil
}

// IsKnownSubset returns true if item is a non-strict subset of any observed
// aggregate under the given root. Read-only: no slot set is created or
// evicted on this path.
func (o *ObservedAggregates[I]) IsKnownSubset(item SubsetItem[I], root [32]byte) (bool, error) {
	slot := item.GetSlot()
	if slot < o.lowestPermissibleSlot {
		return false, &SlotTooLowError{Slot: slot, LowestPermissibleSlot: o.lowestPermissibleSlot}
	}
	for _, set := range o.sets {
		if set.slot == slot {
			return set.isKnownSubset(item, root)
		}
	}
	return false, nil
}

// Prune removes every slot set below the retention floor implied by
// currentSlot and raises the floor. The floor never decreases: pruning with
// an older slot than previously seen is a no-op.
func (o *ObservedAggregates[I]) Prune(currentSlot types.Slot) {
	lowestPermissibleSlot := currentSlot.SaturatingSub(o.maxCapacity() - 1)
	if lowestPermissibleSlot <= o.lowestPermissibleSlot {
		return
	}

	kept := o.sets[:0]
	for _, set := range o.sets {
		if set.slot >= lowestPermissibleSlot {
			kept = append(kept, set)
		}
	}
	for i := len(kept); i < len(o.sets); i++ {
		o.sets[i] = nil
	}
	o.sets = kept
	o.lowestPermissibleSlot = lowestPermissibleSlot
}

// getSetIndex returns the index of the slot set matching slot, creating one
// if needed. When the cache is already holding its maximum number of slot
// sets, the set with the lowest slot is replaced.
func (o *ObservedAggregates[I]) getSetIndex(slot types.Slot) (int, error) {
	lowestPermissibleSlot := o.lowestPermissibleSlot
	if slot < lowestPermissibleSlot {
		return 0, &SlotTooLowError{Slot: slot, LowestPermissibleSlot: lowestPermissibleSlot}
	}

	// An aggregate beyond the current window means the chain has advanced;
	// prune before routing.
	if lowestPermissibleSlot+types.Slot(o.maxCapacity()) < slot+1 {
		o.Prune(slot)
	}

	for i, set := range o.sets {
		if set.slot == slot {
			return i, nil
		}
	}

	// Size the new set from the mean occupancy of settled slots. Slots at or
	// above the new one are still filling and would skew the estimate low.
	count, sum := 0, 0
	for _, set := range o.sets {
		if set.slot < slot {
			count++
			sum += set.len()
		}
	}
	initialCapacity := o.defaultPerSlotCapacity
	if count > 0 {
		initialCapacity = sum / count
	}

	if len(o.sets) < int(o.maxCapacity()) {
		index := len(o.sets)
		o.sets = append(o.sets, newSlotAggregates[I](slot, initialCapacity, o.maxPerSlotCapacity))
		return index, nil
	}

	minIndex := 0
	for i, set := range o.sets {
		if set.slot < o.sets[minIndex].slot {
			minIndex = i
		}
	}
	log.WithFields(logrus.Fields{
		"kind":         o.kind,
		"evictedSlot":  o.sets[minIndex].slot,
		"incomingSlot": slot,
	}).Debug("Replacing oldest slot set")
	observedAggregatesEvictions.WithLabelValues(o.kind).Inc()
	o.sets[minIndex] = newSlotAggregates[I](slot, initialCapacity, o.maxPerSlotCapacity)
	return minIndex, nil
}
