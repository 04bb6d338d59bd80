package security

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

// ValidatePathWithinDirectory checks if a file path is within a safe directory.
// It prevents path traversal attacks by ensuring the resolved path doesn't escape
// the specified safe directory.
func ValidatePathWithinDirectory(filePath, safeDir string) error {
	// Clean the path to resolve . and .. components
	cleanPath := filepath.Clean(filePath)

	// Get absolute paths for proper validation
	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	absSafeDir, err := filepath.Abs(safeDir)
	if err != nil {
		return fmt.Errorf("failed to resolve safe directory path: %w", err)
	}

	// Resolve symlinks when the path exists, so a link inside the safe
	// directory that points outside it is rejected. A path that does not
	// exist yet is checked lexically.
	if resolvedPath, err := filepath.EvalSymlinks(absPath); err == nil {
		if resolvedDir, err := filepath.EvalSymlinks(absSafeDir); err == nil {
			absPath, absSafeDir = resolvedPath, resolvedDir
		}
	}

	// Check if path is within safe directory
	relPath, err := filepath.Rel(absSafeDir, absPath)
	if err != nil {
		return fmt.Errorf("path is outside safe directory: %w", err)
	}

	// Reject paths that escape the safe directory
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) || filepath.IsAbs(relPath) {
		return fmt.Errorf("path traversal detected: %s attempts to escape %s", filePath, safeDir)
	}

	return nil
}

// ValidatePathWithinAllowedDirs checks if a file path is within any of the allowed directories.
// Returns nil if the path is valid, or an error describing why it was rejected.
func ValidatePathWithinAllowedDirs(filePath string, allowedDirs []string) error {
	if len(allowedDirs) == 0 {
		return fmt.Errorf("no allowed directories specified")
	}

	for _, dir := range allowedDirs {
		if err := ValidatePathWithinDirectory(filePath, dir); err == nil {
			return nil // Path is valid within this directory
		}
	}

	// Path is not within any allowed directory
	return fmt.Errorf("path must be within one of the allowed directories: %v", allowedDirs)
}

// ValidateExportPath validates a file path for export operations.
// It ensures the path is within either the temp directory or current working directory.
func ValidateExportPath(filePath string) error {
	tempDir := os.TempDir()
	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("failed to get working directory: %w", err)
	}

	allowedDirs := []string{tempDir, cwd}
	return ValidatePathWithinAllowedDirs(filePath, allowedDirs)
}

// ValidateOutputPath validates a file path for report/CSV output
// operations. It ensures the path is within either the temp directory
// or the current working directory.
func ValidateOutputPath(filePath string) error {
	return ValidateExportPath(filePath)
}

var invalidFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// SanitizeFilename reduces input to a filesystem-safe filename: runs of
// characters outside [a-zA-Z0-9._-] collapse to a single underscore,
// leading/trailing dots and underscores are trimmed, and the result is
// capped at 128 characters. An input that sanitizes to nothing becomes
// "unknown".
func SanitizeFilename(input string) string {
	if input == "" {
		return "unknown"
	}

	sanitized := invalidFilenameChars.ReplaceAllString(input, "_")
	sanitized = strings.Trim(sanitized, "._")
	if sanitized == "" {
		return "unknown"
	}

	const maxLen = 128
	if len(sanitized) > maxLen {
		sanitized = sanitized[:maxLen]
	}
	return sanitized
}

// ResolveTripPath joins tripID onto rootDir (the configured upload_dir or
// report_dir) and confirms the result cannot escape rootDir. A trip_id
// such as "../../etc" or an absolute path is rejected before any file
// I/O touches it.
func ResolveTripPath(tripID, rootDir string) (string, error) {
	if tripID == "" {
		return "", fmt.Errorf("trip_id must not be empty")
	}
	if filepath.IsAbs(tripID) {
		return "", fmt.Errorf("trip_id %q must be a relative path", tripID)
	}
	candidate := filepath.Join(rootDir, tripID)
	if err := ValidatePathWithinDirectory(candidate, rootDir); err != nil {
		return "", fmt.Errorf("trip_id %q escapes root %q: %w", tripID, rootDir, err)
	}
	return candidate, nil
}
