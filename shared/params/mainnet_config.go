package params

var mainnetBeaconConfig = &BeaconChainConfig{
	// Time parameters.
	SlotsPerEpoch: 32,

	// Committee parameters.
	MaxCommitteesPerSlot:      64,
	MaxValidatorsPerCommittee: 2048,
	TargetCommitteeSize:       128,

	// Sync committee parameters.
	SyncCommitteeSize:                    512,
	SyncCommitteeSubnetCount:             4,
	TargetAggregatorsPerSyncSubcommittee: 16,

	// Data column parameters.
	DataColumnSubnetCount: 32,
	CustodyRequirement:    4,
	NumberOfColumns:       128,
}

// MainnetConfig returns the configuration to be used in the main network.
func MainnetConfig() *BeaconChainConfig {
	return mainnetBeaconConfig.Copy()
}
