// Package assets moves downloaded image files to where the destination
// store can serve them: a working temp directory always, plus an
// optional local image directory and an optional FTP upload.
package assets

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"wp2presta/models"
)

// Store writes image bytes to the configured destinations. Per-file
// destination failures are logged as warnings; only the temp write is
// fatal for a file.
type Store struct {
	tempDir  string
	localDir string
	ftp      *ftpUploader
	logger   *slog.Logger
}

// NewStore creates the temp directory and prepares the optional
// destinations from the migration config.
func NewStore(cfg models.MigrationConfig, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if err := os.MkdirAll(cfg.ImageTempDir, 0o755); err != nil {
		return nil, fmt.Errorf("create temp dir %s: %w", cfg.ImageTempDir, err)
	}

	s := &Store{
		tempDir:  cfg.ImageTempDir,
		localDir: cfg.ImageTargetDir,
		logger:   logger,
	}
	if cfg.FTPHost != "" {
		s.ftp = newFTPUploader(cfg, logger)
	}
	return s, nil
}

// Save writes one image. The temp write must succeed; the local copy
// and FTP upload are best-effort.
func (s *Store) Save(filename string, data []byte) error {
	filename = filepath.Base(filename)
	if filename == "." || filename == string(filepath.Separator) || filename == "" {
		return fmt.Errorf("unusable image filename %q", filename)
	}

	tempPath := filepath.Join(s.tempDir, filename)
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", tempPath, err)
	}

	if s.localDir != "" {
		if err := s.copyLocal(filename, data); err != nil {
			s.logger.Warn("local image copy failed", "file", filename, "error", err)
		}
	}
	if s.ftp != nil {
		if err := s.ftp.upload(filename, data); err != nil {
			s.logger.Warn("ftp upload failed", "file", filename, "error", err)
		}
	}
	return nil
}

func (s *Store) copyLocal(filename string, data []byte) error {
	if err := os.MkdirAll(s.localDir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.localDir, filename), data, 0o644)
}

// Cleanup removes the temp directory and closes the FTP connection.
// Failures are logged, never returned.
func (s *Store) Cleanup() {
	if s.ftp != nil {
		s.ftp.close()
	}
	if err := os.RemoveAll(s.tempDir); err != nil {
		s.logger.Warn("temp dir cleanup failed", "dir", s.tempDir, "error", err)
	}
}
