package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// StdinPath is the path argument that selects standard input.
const StdinPath = "-"

func GetPathInfo(relPath string) (fullPath string, parentDir string, err error) {
	// Convert to absolute path (resolves ../../ and cleans the path)
	fullPath, err = filepath.Abs(relPath)
	if err != nil {
		return "", "", err
	}

	// Get the directory containing the file
	parentDir = filepath.Dir(fullPath)

	return fullPath, parentDir, nil
}

// ReadSource returns the contents of path, or of stdin when path is "-".
// The returned name is the absolute path, or "<stdin>".
func ReadSource(path string, stdin io.Reader) (name string, src []byte, err error) {
	if path == StdinPath {
		src, err = io.ReadAll(stdin)
		if err != nil {
			return "", nil, fmt.Errorf("read stdin: %w", err)
		}
		return "<stdin>", src, nil
	}

	fullPath, _, err := GetPathInfo(path)
	if err != nil {
		return "", nil, err
	}
	src, err = os.ReadFile(fullPath)
	if err != nil {
		return "", nil, err
	}
	return fullPath, src, nil
}

// WriteOutput writes data to path, creating or truncating it.
func WriteOutput(path string, data []byte) error {
	fullPath, parentDir, err := GetPathInfo(path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(parentDir); err != nil {
		return fmt.Errorf("output directory: %w", err)
	}
	return os.WriteFile(fullPath, data, 0o644)
}
