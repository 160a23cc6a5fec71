package coffeesave

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestBackupManager(t *testing.T) {
	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		want    string
		wantErr bool
	}{
		{
			name: "no_existing_file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				return filepath.Join(dir, "nonexistent.js")
			},
			want:    "",
			wantErr: false,
		},
		{
			name: "existing_file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "main.js")
				must(t, os.WriteFile(path, []byte("var a = 1;"), 0644))
				return path
			},
			want:    ".bak",
			wantErr: false,
		},
		{
			name: "path_through_a_file",
			setup: func(t *testing.T) string {
				dir := t.TempDir()
				path := filepath.Join(dir, "main.js")
				must(t, os.WriteFile(path, []byte("var a = 1;"), 0644))
				// stat fails with ENOTDIR rather than ENOENT
				return filepath.Join(path, "nested.js")
			},
			want:    "",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			bm := NewBackupManager()

			got, err := bm.CreateBackupOf(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("CreateBackupOf() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if !tt.wantErr {
				if tt.want == "" && got != "" {
					t.Errorf("CreateBackupOf() = %v, want empty string", got)
				} else if tt.want != "" && !strings.HasSuffix(got, tt.want) {
					t.Errorf("CreateBackupOf() = %v, want suffix %v", got, tt.want)
				}

				// Verify backup content matches original if backup was created
				if got != "" {
					original, err := os.ReadFile(path)
					if err != nil {
						t.Fatal(err)
					}
					backup, err := os.ReadFile(got)
					if err != nil {
						t.Fatal(err)
					}
					if !bytes.Equal(original, backup) {
						t.Error("Backup content doesn't match original")
					}
				}
			}
		})
	}
}

func TestBackupNameUsesTimestamp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "main.js")
	must(t, os.WriteFile(path, []byte("var a = 1;"), 0644))

	bm := NewBackupManager()
	bm.now = func() time.Time { return time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC) }

	got, err := bm.CreateBackupOf(path)
	must(t, err)

	if want := path + ".20240102_030405.bak"; got != want {
		t.Errorf("CreateBackupOf() = %v, want %v", got, want)
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}
