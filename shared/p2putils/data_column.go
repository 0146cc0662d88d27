// Package p2putils contains useful helpers for the networking layer. It
// currently covers data column custody: deriving which column subnets a node
// must subscribe to from its node ID.
package p2putils

import (
	"encoding/binary"
	"sort"

	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/prysmaticlabs/observed-aggregates/shared/hashutil"
	"github.com/prysmaticlabs/observed-aggregates/shared/params"
)

// ErrCustodyCountTooLarge is returned when more custody subnets are requested
// than exist.
var ErrCustodyCountTooLarge = errors.New("custody subnet count exceeds the data column subnet count")

// DataColumnSubnets computes the custody subnets for the given node ID. The
// node ID is hashed repeatedly, incrementing it (mod 2^256) between rounds,
// until the requested number of distinct subnets has been collected.
func DataColumnSubnets(nodeID *uint256.Int, custodySubnetCount uint64) ([]uint64, error) {
	cfg := params.BeaconConfig()
	if custodySubnetCount > cfg.DataColumnSubnetCount {
		return nil, ErrCustodyCountTooLarge
	}

	subnets := make([]uint64, 0, custodySubnetCount)
	currentID := new(uint256.Int).Set(nodeID)
	one := uint256.NewInt(1)
	for uint64(len(subnets)) < custodySubnetCount {
		// The spec hashes the node ID in little-endian byte order.
		be := currentID.Bytes32()
		var le [32]byte
		for i := 0; i < 32; i++ {
			le[i] = be[31-i]
		}
		hash := hashutil.Hash(le[:])
		subnet := binary.LittleEndian.Uint64(hash[:8]) % cfg.DataColumnSubnetCount

		seen := false
		for _, s := range subnets {
			if s == subnet {
				seen = true
				break
			}
		}
		if !seen {
			subnets = append(subnets, subnet)
		}

		// Addition wraps at 2^256, matching the spec's rollover to zero.
		currentID.Add(currentID, one)
	}
	return subnets, nil
}

// ColumnsForSubnet returns the column indices carried by the given subnet.
// Successive columns of a subnet are offset by the subnet count.
func ColumnsForSubnet(subnet uint64) []uint64 {
	cfg := params.BeaconConfig()
	columnsPerSubnet := cfg.DataColumnsPerSubnet()
	columns := make([]uint64, 0, columnsPerSubnet)
	for i := uint64(0); i < columnsPerSubnet; i++ {
		columns = append(columns, cfg.DataColumnSubnetCount*i+subnet)
	}
	return columns
}

// CustodyColumns returns the sorted column indices the given node ID must
// custody.
func CustodyColumns(nodeID *uint256.Int, custodySubnetCount uint64) ([]uint64, error) {
	subnets, err := DataColumnSubnets(nodeID, custodySubnetCount)
	if err != nil {
		return nil, err
	}
	columns := make([]uint64, 0, uint64(len(subnets))*params.BeaconConfig().DataColumnsPerSubnet())
	for _, subnet := range subnets {
		columns = append(columns, ColumnsForSubnet(subnet)...)
	}
	sort.Slice(columns, func(i, j int) bool { return columns[i] < columns[j] })
	return columns, nil
}
