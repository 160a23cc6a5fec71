package coffeesave

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"
)

// BackupManager copies compiled output files aside before they get overwritten.
//
// Only used when the workspace enables the backup setting, hand edited javascript
// next to a coffee file is otherwise lost on the next save.
type BackupManager struct {
	now func() time.Time
}

func NewBackupManager() *BackupManager {
	return &BackupManager{
		now: time.Now,
	}
}

// CreateBackupOf creates a backup of the file at path if it exists
//
// Returns the path to the backup file, or an empty string if no backup was created
func (bm *BackupManager) CreateBackupOf(path string) (backupPath string, err error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return "", nil
	} else if err != nil {
		return "", fmt.Errorf("checking file existence: %w", err)
	}

	backupPath = fmt.Sprintf("%s.%s.bak", path, bm.now().Format("20060102_150405"))

	if err := bm.copyFile(path, backupPath); err != nil {
		return "", fmt.Errorf("creating backup: %w", err)
	}

	slog.Debug("output file already existed, created a backup", "backup", backupPath, "output", path)
	return backupPath, nil
}

func (bm *BackupManager) copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening source file: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating destination file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, in); err != nil {
		return fmt.Errorf("copying file: %w", err)
	}

	return nil
}
