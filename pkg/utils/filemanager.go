// =============================================================================
// Loyverse Export - File Manager Utility
// =============================================================================
//
// This module provides file management utilities for the exporter:
//   - Output directory creation
//   - Output file naming from a placeholder format
//   - Safe cross-device file moves
//
// =============================================================================

package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// DIRECTORY MANAGEMENT
// =============================================================================

// EnsureDir creates the directory (and parents) if it doesn't exist.
func EnsureDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}
	return nil
}

// =============================================================================
// OUTPUT FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name from a placeholder
// format.
//
// PARAMETERS:
//   - format: The naming pattern. Supported placeholders:
//     {timestamp} - Current time as YYYYMMDD_HHMMSS
//     {uuid}      - A random UUID
//
// RETURNS:
//   - The generated file name, with an .xlsx extension appended when the
//     format carries none.
//
// EXAMPLE:
//   GenerateOutputFileName("loyverse_export_{timestamp}.xlsx")
//   -> "loyverse_export_20240101_153045.xlsx"
func GenerateOutputFileName(format string) string {
	timestamp := time.Now().Format("20060102_150405")

	fileName := format
	fileName = strings.ReplaceAll(fileName, "{timestamp}", timestamp)
	fileName = strings.ReplaceAll(fileName, "{uuid}", uuid.New().String())

	if filepath.Ext(fileName) == "" {
		fileName += ".xlsx"
	}

	return fileName
}

// =============================================================================
// FILE MOVES
// =============================================================================

// MoveFile moves a file, falling back to copy-and-delete when a rename
// crosses filesystems.
func MoveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}

	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", dst, err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %w", dst, err)
	}

	return os.Remove(src)
}
