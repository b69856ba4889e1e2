package packaging

import (
	"archive/zip"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/sirupsen/logrus"
)

const archiveMetadataFileName = "archive_metadata.json"

// Archiver stores released package versions under a storage base directory.
type Archiver struct {
	log         *logrus.Logger
	storageBase string
}

func NewArchiver(log *logrus.Logger, storageBase string) *Archiver {
	return &Archiver{log: log, storageBase: storageBase}
}

type archiveMetadata struct {
	Name       string    `json:"name"`
	Version    string    `json:"version"`
	SourcePath string    `json:"source_path"`
	ArchivedAt time.Time `json:"archived_at"`
	FileCount  int       `json:"file_count"`
}

// ArchivePackage copies the package tree to <storageBase>/<name>/<version>/
// and records archive_metadata.json alongside it. An empty name defaults to
// the package directory's base name.
func (a *Archiver) ArchivePackage(packagePath, version, name string) (string, error) {
	if name == "" {
		name = filepath.Base(packagePath)
	}
	archivedPath := filepath.Join(a.storageBase, name, version)
	if err := os.MkdirAll(archivedPath, 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	fileCount, err := copyTree(packagePath, archivedPath)
	if err != nil {
		return "", fmt.Errorf("copying package: %w", err)
	}

	meta := archiveMetadata{
		Name:       name,
		Version:    version,
		SourcePath: packagePath,
		ArchivedAt: time.Now().UTC(),
		FileCount:  fileCount,
	}
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encoding archive metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(archivedPath, archiveMetadataFileName), data, 0o644); err != nil {
		return "", fmt.Errorf("writing archive metadata: %w", err)
	}

	a.log.WithFields(logrus.Fields{
		"name":    name,
		"version": version,
		"files":   fileCount,
	}).Info("Archived package version")
	return archivedPath, nil
}

// CreateZipArchive writes <storageBase>/<name>/<name>-v<version>.zip
// containing the package with paths relative to the package root.
func (a *Archiver) CreateZipArchive(packagePath, version, name string) (string, error) {
	if name == "" {
		name = filepath.Base(packagePath)
	}
	if err := os.MkdirAll(filepath.Join(a.storageBase, name), 0o755); err != nil {
		return "", fmt.Errorf("creating archive directory: %w", err)
	}

	zipPath := filepath.Join(a.storageBase, name, fmt.Sprintf("%s-v%s.zip", name, version))
	out, err := os.Create(zipPath)
	if err != nil {
		return "", fmt.Errorf("creating zip file: %w", err)
	}
	defer out.Close()

	writer := zip.NewWriter(out)
	err = filepath.WalkDir(packagePath, func(path string, entry fs.DirEntry, err error) error {
		if err != nil || entry.IsDir() {
			return err
		}
		rel, err := filepath.Rel(packagePath, path)
		if err != nil {
			return err
		}
		dst, err := writer.Create(filepath.ToSlash(rel))
		if err != nil {
			return err
		}
		src, err := os.Open(path)
		if err != nil {
			return err
		}
		defer src.Close()
		_, err = io.Copy(dst, src)
		return err
	})
	if err != nil {
		writer.Close()
		return "", fmt.Errorf("writing zip archive: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("finalizing zip archive: %w", err)
	}

	a.log.WithField("path", zipPath).Info("Created zip archive")
	return zipPath, nil
}

// ListVersions returns the archived versions of a package, sorted
// lexicographically. An unknown package yields an empty list.
func (a *Archiver) ListVersions(name string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(a.storageBase, name))
	if os.IsNotExist(err) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("listing versions: %w", err)
	}

	versions := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			versions = append(versions, entry.Name())
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// GetLatestVersion returns the lexicographically last version; ok is false
// when the package has none.
func (a *Archiver) GetLatestVersion(name string) (string, bool) {
	versions, err := a.ListVersions(name)
	if err != nil || len(versions) == 0 {
		return "", false
	}
	return versions[len(versions)-1], true
}

func copyTree(src, dst string) (int, error) {
	count := 0
	err := filepath.WalkDir(src, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if entry.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if err := copyFile(path, target); err != nil {
			return err
		}
		count++
		return nil
	})
	return count, err
}
