package store

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// Backup copies the persisted documents and the append log into a
// timestamped folder under <dataDir>/backups and zips that folder.
// Files that do not exist yet are skipped. Returns the zip path.
func Backup(dataDir string) (string, error) {
	backupDir := filepath.Join(dataDir, "backups")
	ts := time.Now().Format("20060102_150405")
	folder := filepath.Join(backupDir, "backup_"+ts)
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", err
	}

	names := []string{"users.json", "services.json", "config.json", "logs.txt"}
	copied := make([]string, 0, len(names))
	for _, name := range names {
		src := filepath.Join(dataDir, name)
		if _, err := os.Stat(src); err != nil {
			continue
		}
		dst := filepath.Join(folder, name)
		if err := copyFile(src, dst); err != nil {
			return "", fmt.Errorf("backup %s: %w", name, err)
		}
		copied = append(copied, name)
	}

	zipPath := folder + ".zip"
	if err := zipFolder(folder, copied, zipPath); err != nil {
		return "", err
	}
	return zipPath, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func zipFolder(folder string, names []string, zipPath string) error {
	f, err := os.Create(zipPath)
	if err != nil {
		return err
	}
	defer f.Close()

	zw := zip.NewWriter(f)
	for _, name := range names {
		if err := addFileToZip(zw, filepath.Join(folder, name), name); err != nil {
			zw.Close()
			return err
		}
	}
	return zw.Close()
}

func addFileToZip(zw *zip.Writer, srcPath, archivePath string) error {
	file, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open file %s: %w", srcPath, err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to create zip header: %w", err)
	}
	header.Name = archivePath
	header.Method = zip.Deflate

	writer, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("failed to create zip entry: %w", err)
	}

	if _, err := io.Copy(writer, file); err != nil {
		return fmt.Errorf("failed to write file to zip: %w", err)
	}
	return nil
}
