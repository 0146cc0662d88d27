package params

import (
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v2"
)

// LoadChainConfigFile loads a YAML spec file from the given path and
// overrides the active beacon chain config with the values it defines.
// Constants absent from the file keep their current values.
func LoadChainConfigFile(chainConfigFileName string) error {
	yamlFile, err := ioutil.ReadFile(chainConfigFileName) // #nosec G304
	if err != nil {
		return errors.Wrap(err, "failed to read chain config file")
	}
	conf := BeaconConfig().Copy()
	if err := yaml.Unmarshal(yamlFile, conf); err != nil {
		return errors.Wrap(err, "failed to unmarshal chain config file")
	}
	OverrideBeaconConfig(conf)
	return nil
}
