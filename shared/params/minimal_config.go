package params

// MinimalSpecConfig retrieves the minimal spec configuration used in spec
// tests and local devnets.
func MinimalSpecConfig() *BeaconChainConfig {
	minimalConfig := MainnetConfig()

	// Time parameters.
	minimalConfig.SlotsPerEpoch = 8

	// Committee parameters.
	minimalConfig.MaxCommitteesPerSlot = 4
	minimalConfig.TargetCommitteeSize = 4

	// Sync committee parameters.
	minimalConfig.SyncCommitteeSize = 32

	return minimalConfig
}
