package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
)

// GlobalDataPath returns the path to the per-user .importance directory.
// On Unix: ~/.importance
// On Windows: %USERPROFILE%\.importance
func GlobalDataPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, constants.DataDirName), nil
}

// LocalDataPath returns the path to the .importance directory
// for the given project root.
func LocalDataPath(projectRoot string) string {
	return filepath.Join(projectRoot, constants.DataDirName)
}

// ResolveRoot returns projectRoot, or the home directory when projectRoot is empty.
// The returned root is the directory that holds .importance.
func ResolveRoot(projectRoot string) (string, error) {
	if projectRoot != "" {
		return projectRoot, nil
	}
	global, err := GlobalDataPath()
	if err != nil {
		return "", err
	}
	return filepath.Dir(global), nil
}
