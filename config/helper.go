package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mitchellh/go-homedir"
	"github.com/relloyd/psvexport/constants"
)

// EnvVarConfigDir overrides the directory that holds the config files.
const EnvVarConfigDir = constants.EnvVarPrefix + "_CONFIG_DIR"

// GetConfigHomeDir returns the full path to the directory that stores all config files.
func GetConfigHomeDir() (string, error) {
	if dir := os.Getenv(EnvVarConfigDir); dir != "" {
		return dir, nil
	}
	home, err := homedir.Dir()
	if err != nil {
		return "", fmt.Errorf("unable to find home directory: %w", err)
	}
	return filepath.Join(home, MainDir), nil
}

// makeDir wll make the given directory if it does not already exist.
// If it exist then return nil.
// An error is returned if there is a problem creating the dir.
func makeDir(dir string) error {
	_, err := os.Stat(dir)
	if os.IsNotExist(err) { // if it doesn't exist...
		if err = os.MkdirAll(dir, 0700); err != nil { // if the dir was NOT created...
			return fmt.Errorf("error creating directory %v: %w", dir, err)
		}
	} else if err != nil { // if there was an error getting status...
		return err
	}
	return nil
}
