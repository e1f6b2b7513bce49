package utils

import (
	"os"
)

// CopyToFile writes the provided contents to the file at the given path,
// creating it if it doesn't exist.
func CopyToFile(contents string, to string) error {
	return os.WriteFile(to, []byte(contents), 0644)
}
