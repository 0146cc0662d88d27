package params

import (
	"testing"
)

func TestMainnetConfig_DerivedValues(t *testing.T) {
	c := MainnetConfig()
	if c.MaxValidatorsPerSlot() != 131072 {
		t.Errorf("MaxValidatorsPerSlot() = %d, want 131072", c.MaxValidatorsPerSlot())
	}
	if c.SyncSubcommitteeSize() != 128 {
		t.Errorf("SyncSubcommitteeSize() = %d, want 128", c.SyncSubcommitteeSize())
	}
	if c.DataColumnsPerSubnet() != 4 {
		t.Errorf("DataColumnsPerSubnet() = %d, want 4", c.DataColumnsPerSubnet())
	}
}

func TestOverrideBeaconConfig(t *testing.T) {
	defer OverrideBeaconConfig(MainnetConfig())

	cfg := BeaconConfig().Copy()
	cfg.SlotsPerEpoch = 5
	OverrideBeaconConfig(cfg)
	if BeaconConfig().SlotsPerEpoch != 5 {
		t.Errorf("BeaconConfig().SlotsPerEpoch = %d, want 5", BeaconConfig().SlotsPerEpoch)
	}
}

func TestCopy_DoesNotAliasActiveConfig(t *testing.T) {
	c := BeaconConfig().Copy()
	c.SlotsPerEpoch = 99
	if BeaconConfig().SlotsPerEpoch == 99 {
		t.Error("Copy() aliases the active config")
	}
}

func TestUseMinimalConfig(t *testing.T) {
	defer UseMainnetConfig()

	UseMinimalConfig()
	if BeaconConfig().SlotsPerEpoch != 8 {
		t.Errorf("minimal SlotsPerEpoch = %d, want 8", BeaconConfig().SlotsPerEpoch)
	}
	if BeaconConfig().SyncCommitteeSize != 32 {
		t.Errorf("minimal SyncCommitteeSize = %d, want 32", BeaconConfig().SyncCommitteeSize)
	}
}
