package cli

import (
	"fmt"
	"os"
	"path/filepath"
)

// EnvDataDir overrides the default data directory.
const EnvDataDir = "VGREPORT_DATA_DIR"

// appDirName is the directory created under the user config dir.
const appDirName = "vgreport"

// ResolveDataDir returns the data directory in priority order: the flag
// value, then $VGREPORT_DATA_DIR, then <user config dir>/vgreport.
func ResolveDataDir(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv(EnvDataDir); env != "" {
		return env, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("no data directory: set --data-dir or $%s: %w", EnvDataDir, err)
	}
	return filepath.Join(configDir, appDirName), nil
}
