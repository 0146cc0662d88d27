// Package params defines the beacon chain configuration consumed by the
// observed aggregates cache, along with helpers to override it for tests or
// non-mainnet networks.
package params

// BeaconChainConfig contains the subset of spec constants that size the
// aggregate observation caches and the data column subnets.
type BeaconChainConfig struct {
	// Time parameters.
	SlotsPerEpoch uint64 `yaml:"SLOTS_PER_EPOCH"`

	// Committee parameters.
	MaxCommitteesPerSlot      uint64 `yaml:"MAX_COMMITTEES_PER_SLOT"`
	MaxValidatorsPerCommittee uint64 `yaml:"MAX_VALIDATORS_PER_COMMITTEE"`
	TargetCommitteeSize       uint64 `yaml:"TARGET_COMMITTEE_SIZE"`

	// Sync committee parameters.
	SyncCommitteeSize                    uint64 `yaml:"SYNC_COMMITTEE_SIZE"`
	SyncCommitteeSubnetCount             uint64 `yaml:"SYNC_COMMITTEE_SUBNET_COUNT"`
	TargetAggregatorsPerSyncSubcommittee uint64 `yaml:"TARGET_AGGREGATORS_PER_SYNC_SUBCOMMITTEE"`

	// Data column parameters.
	DataColumnSubnetCount uint64 `yaml:"DATA_COLUMN_SUBNET_COUNT"`
	CustodyRequirement    uint64 `yaml:"CUSTODY_REQUIREMENT"`
	NumberOfColumns       uint64 `yaml:"NUMBER_OF_COLUMNS"`
}

// MaxValidatorsPerSlot returns the width of a full per-slot aggregation
// bitlist, covering every committee of the slot.
func (b *BeaconChainConfig) MaxValidatorsPerSlot() uint64 {
	return b.MaxCommitteesPerSlot * b.MaxValidatorsPerCommittee
}

// SyncSubcommitteeSize returns the number of validators in a single sync
// subcommittee.
func (b *BeaconChainConfig) SyncSubcommitteeSize() uint64 {
	return b.SyncCommitteeSize / b.SyncCommitteeSubnetCount
}

// DataColumnsPerSubnet returns how many column indices each data column
// subnet carries.
func (b *BeaconChainConfig) DataColumnsPerSubnet() uint64 {
	return b.NumberOfColumns / b.DataColumnSubnetCount
}

// Copy returns a deep copy of the config.
func (b *BeaconChainConfig) Copy() *BeaconChainConfig {
	config := *b
	return &config
}

var beaconConfig = MainnetConfig()

// BeaconConfig retrieves the beacon chain config in use.
func BeaconConfig() *BeaconChainConfig {
	return beaconConfig
}

// OverrideBeaconConfig replaces the beacon chain config in use. This should
// only be called at startup or from tests.
func OverrideBeaconConfig(c *BeaconChainConfig) {
	beaconConfig = c
}

// UseMinimalConfig for beacon chain services.
func UseMinimalConfig() {
	beaconConfig = MinimalSpecConfig()
}

// UseMainnetConfig for beacon chain services.
func UseMainnetConfig() {
	beaconConfig = MainnetConfig()
}
