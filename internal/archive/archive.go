package archive

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"codeberg.org/snonux/vocabtable/internal"
)

// ArchiveOutput moves a previous run's output directory to
// <parent>/archive/<name>-<timestamp> and returns the new path. It returns an
// empty path when there is nothing to archive.
func ArchiveOutput(outputDir string) (string, error) {
	info, err := os.Stat(outputDir)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to inspect output directory: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("output path is not a directory: %s", outputDir)
	}

	absDir, err := filepath.Abs(outputDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve output directory: %w", err)
	}

	archiveDir := filepath.Join(filepath.Dir(absDir), "archive")
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create archive directory: %w", err)
	}

	name := internal.SanitizeFilename(filepath.Base(absDir))
	archivePath := filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, time.Now().Format("20060102-150405")))

	// Two runs within the same second
	if _, err := os.Stat(archivePath); err == nil {
		archivePath = filepath.Join(archiveDir, fmt.Sprintf("%s-%s", name, time.Now().Format("20060102-150405.000000")))
	}

	if err := os.Rename(absDir, archivePath); err != nil {
		return "", fmt.Errorf("failed to archive output directory: %w", err)
	}

	return archivePath, nil
}
