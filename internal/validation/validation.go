// Package validation checks local files that hold OAuth secrets.
package validation

import (
	"fmt"
	"os"
)

// IsValidFilePermissions reports an error when group or others have any
// access to a file holding secrets.
func IsValidFilePermissions(mode os.FileMode) error {
	if mode.Perm()&0077 != 0 {
		return fmt.Errorf("file permissions are too permissive: %s. Recommended 0600", mode.Perm().String())
	}
	return nil
}

// CheckSecretFile stats path and applies IsValidFilePermissions. A missing
// file is not an error.
func CheckSecretFile(path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("error checking path %s: %w", path, err)
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("path %s is not a regular file", path)
	}
	if err := IsValidFilePermissions(info.Mode()); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
