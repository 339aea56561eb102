package game

import (
	"fmt"
	"io/ioutil"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// GameConfig holds the defaults applied to every new game.
type GameConfig struct {
	WinningScore   int     `yaml:"winningScore" json:"winningScore"`
	PlayTimeoutSec uint32  `yaml:"playTimeoutSec" json:"playTimeoutSec"`
	IntentRate     float64 `yaml:"intentRate" json:"intentRate"`
	IntentBurst    int     `yaml:"intentBurst" json:"intentBurst"`
}

func DefaultGameConfig() GameConfig {
	return GameConfig{
		WinningScore:   DefaultWinningScore,
		PlayTimeoutSec: 62,
		IntentRate:     5,
		IntentBurst:    10,
	}
}

// ParseGameConfig reads the YAML file. Keys missing from the file keep their defaults.
func ParseGameConfig(configFile string) (GameConfig, error) {
	bytes, err := ioutil.ReadFile(configFile)
	if err != nil {
		return GameConfig{}, errors.Wrap(err, fmt.Sprintf("Error reading game config file [%s]", configFile))
	}

	data := DefaultGameConfig()
	err = yaml.Unmarshal(bytes, &data)
	if err != nil {
		return GameConfig{}, errors.Wrap(err, fmt.Sprintf("Error parsing game config YAML file [%s]", configFile))
	}
	if data.WinningScore < 0 {
		return GameConfig{}, fmt.Errorf("Invalid winning score %d in [%s]", data.WinningScore, configFile)
	}
	return data, nil
}
