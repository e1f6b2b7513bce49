package config

import (
	_ "embed"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"easedrop/cli/utils"
)

type Paths struct {
	config string
}

type Config struct {
	Server string `yaml:"server,omitempty"`
}

var baseConfigPath = filepath.Join(".config", "easedrop")

const configFileName = "config.yml"

//go:embed config.yml
var defaultConfig string

// SetupConfigDir ensures that the directory for easedrop's config has been
// created. This path defaults to $HOME/.config/easedrop.
func SetupConfigDir() (Paths, error) {
	dirname, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, err
	}

	localConfig, err := makeConfigDirectories(dirname)
	if err != nil {
		return Paths{}, err
	}

	return Paths{
		config: filepath.Join(localConfig, configFileName),
	}, nil
}

// setupTempConfigDir creates a config directory in the OS's temporary
// directory. Used for testing.
func setupTempConfigDir() (Paths, error) {
	dirname := os.TempDir()
	localConfig, err := makeConfigDirectories(dirname)
	if err != nil {
		return Paths{}, err
	}

	return Paths{
		config: filepath.Join(localConfig, configFileName),
	}, nil
}

func makeConfigDirectories(dirname string) (string, error) {
	localConfig := filepath.Join(dirname, baseConfigPath)
	err := os.MkdirAll(localConfig, os.ModePerm)
	if err != nil {
		return "", err
	}

	return localConfig, nil
}

// ReadConfig reads the config file (config.yml) for the current
// configuration, creating a default one if none exists yet.
func ReadConfig(paths Paths) (Config, error) {
	if _, err := os.Stat(paths.config); err == nil {
		config := Config{}
		data, err := os.ReadFile(paths.config)
		if err != nil {
			return config, err
		}

		err = yaml.Unmarshal(data, &config)
		if err != nil {
			return config, err
		}

		// Strip trailing slash
		config.Server = strings.TrimSuffix(config.Server, "/")

		return config, nil
	} else {
		err := utils.CopyToFile(defaultConfig, paths.config)
		if err != nil {
			return Config{}, err
		}
		return ReadConfig(paths)
	}
}
