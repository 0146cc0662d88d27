// aggsim replays synthetic aggregate load through the observed aggregates
// cache and reports how many messages the cache would have suppressed. It is
// a development tool for eyeballing cache behaviour under different traffic
// shapes.
package main

import (
	"fmt"
	"os"

	"github.com/prysmaticlabs/go-bitfield"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"

	"github.com/prysmaticlabs/observed-aggregates/beacon-chain/cache"
	"github.com/prysmaticlabs/observed-aggregates/shared/params"
	"github.com/prysmaticlabs/observed-aggregates/types"
)

var log = logrus.WithField("prefix", "aggsim")

type tally struct {
	new      uint64
	subset   uint64
	rejected uint64
}

func main() {
	app := &cli.App{
		Name:  "aggsim",
		Usage: "replay synthetic aggregate traffic through the observed aggregates cache",
		Flags: []cli.Flag{
			&cli.Uint64Flag{
				Name:  "slots",
				Usage: "number of consecutive slots to simulate",
				Value: 64,
			},
			&cli.Uint64Flag{
				Name:  "aggregators-per-slot",
				Usage: "distinct aggregates produced per slot",
				Value: 16,
			},
			&cli.Uint64Flag{
				Name:  "resend-factor",
				Usage: "how many times each aggregate is re-gossiped",
				Value: 3,
			},
			&cli.StringFlag{
				Name:  "kind",
				Usage: "aggregate kind to simulate: attestation or sync",
				Value: "attestation",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "enable debug logging",
			},
		},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		log.WithError(err).Fatal("Simulation failed")
	}
}

func run(c *cli.Context) error {
	logrus.SetFormatter(&prefixed.TextFormatter{
		FullTimestamp: true,
	})
	if c.Bool("verbose") {
		logrus.SetLevel(logrus.DebugLevel)
	}

	slots := c.Uint64("slots")
	perSlot := c.Uint64("aggregators-per-slot")
	resend := c.Uint64("resend-factor")

	var t tally
	var err error
	switch kind := c.String("kind"); kind {
	case "attestation":
		t, err = simulateAttestations(slots, perSlot, resend)
	case "sync":
		t, err = simulateSyncContributions(slots, perSlot, resend)
	default:
		return fmt.Errorf("unknown kind %q", kind)
	}
	if err != nil {
		return err
	}

	total := t.new + t.subset + t.rejected
	log.WithFields(logrus.Fields{
		"total":      total,
		"new":        t.new,
		"subset":     t.subset,
		"rejected":   t.rejected,
		"suppressed": fmt.Sprintf("%.1f%%", 100*float64(t.subset)/float64(total)),
	}).Info("Simulation complete")
	return nil
}

func simulateAttestations(slots, perSlot, resend uint64) (tally, error) {
	store := cache.NewObservedAggregateAttestations()
	committeeSize := params.BeaconConfig().TargetCommitteeSize
	rng := newRng(1)

	var t tally
	for slot := types.Slot(0); slot < types.Slot(slots); slot++ {
		store.Prune(slot)
		for round := uint64(0); round < resend; round++ {
			for i := uint64(0); i < perSlot; i++ {
				bits := bitfield.NewBitlist(committeeSize)
				for b := uint64(0); b < committeeSize; b++ {
					// Every round draws fresh bits: about a third at random
					// plus every (round+2)-th bit, so a re-gossiped aggregate
					// may be new, a subset, or incomparable to earlier ones.
					if rng.next()%3 == 0 || b%(round+2) == 0 {
						bits.SetBitAt(b, true)
					}
				}
				att := &types.Attestation{
					AggregationBits: bits,
					Data: &types.AttestationData{
						Slot:            slot,
						CommitteeIndex:  types.CommitteeIndex(i % params.BeaconConfig().MaxCommitteesPerSlot),
						BeaconBlockRoot: [32]byte{byte(slot), byte(slot >> 8)},
					},
				}
				outcome, err := store.ObserveItem(cache.ForAttestation(att), nil)
				record(&t, outcome, err)
			}
		}
	}
	return t, nil
}

func simulateSyncContributions(slots, perSlot, resend uint64) (tally, error) {
	store := cache.NewObservedSyncContributions()
	subnetCount := params.BeaconConfig().SyncCommitteeSubnetCount
	rng := newRng(2)

	var t tally
	for slot := types.Slot(0); slot < types.Slot(slots); slot++ {
		store.Prune(slot)
		for round := uint64(0); round < resend; round++ {
			for i := uint64(0); i < perSlot; i++ {
				bits := bitfield.NewBitvector128()
				for b := uint64(0); b < bits.Len(); b++ {
					if rng.next()%3 == 0 || b%(round+2) == 0 {
						bits.SetBitAt(b, true)
					}
				}
				contribution := &types.SyncCommitteeContribution{
					Slot:              slot,
					BlockRoot:         [32]byte{byte(slot), byte(slot >> 8)},
					SubcommitteeIndex: i % subnetCount,
					AggregationBits:   bits,
				}
				outcome, err := store.ObserveItem(cache.ForSyncContribution(contribution), nil)
				record(&t, outcome, err)
			}
		}
	}
	return t, nil
}

func record(t *tally, outcome cache.ObserveOutcome, err error) {
	if err != nil {
		t.rejected++
		log.WithError(err).Debug("Aggregate rejected")
		return
	}
	switch outcome {
	case cache.OutcomeNew:
		t.new++
	case cache.OutcomeSubset:
		t.subset++
	}
}

// rng is a splitmix64 generator, good enough for shaping traffic.
type rng struct {
	state uint64
}

func newRng(seed uint64) *rng {
	return &rng{state: seed}
}

func (r *rng) next() uint64 {
	r.state += 0x9e3779b97f4a7c15
	z := r.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
