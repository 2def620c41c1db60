package storage

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStoredName(t *testing.T) {
	tests := []struct {
		name       string
		storedName string
		wantErr    bool
	}{
		{"timestamped name", "1700000000000000000_report.pdf", false},
		{"short prefix", "1_a", false},
		{"empty", "", true},
		{"no prefix", "report.pdf", true},
		{"no separator", "1700000000000000000", true},
		{"prefix only", "1700000000000000000_", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStoredName(tt.storedName)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidName)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestResolve_PathTraversal(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	ls := storage.(*localStorage)

	tests := []struct {
		name       string
		storedName string
	}{
		{"simple traversal", "1_../etc/passwd"},
		{"double traversal", "1_../../etc/passwd"},
		{"neutralized traversal", "123_../../etc/passwd"},
		{"windows style", "1_..\\..\\windows\\system32"},
		{"embedded separator", "1_sub/file.txt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ls.resolve(111111, tt.storedName)
			assert.ErrorIs(t, err, ErrPathTraversal)
		})
	}
}

func TestResolve_ValidName(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	ls := storage.(*localStorage)

	result, err := ls.resolve(111111, "1700000000000000000_file.txt")
	require.NoError(t, err)

	absBase, _ := filepath.Abs(tempDir)
	assert.True(t, strings.HasPrefix(result, absBase))
	assert.Contains(t, result, string(filepath.Separator)+"111111"+string(filepath.Separator))
}

func TestValidateFile_BlockedExtensions(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		wantErr  bool
	}{
		{"exe blocked", "malware.exe", true},
		{"bat blocked", "script.bat", true},
		{"sh blocked", "script.sh", true},
		{"ps1 blocked", "script.ps1", true},
		{"jar blocked", "app.jar", true},
		{"pdf allowed", "document.pdf", false},
		{"txt allowed", "readme.txt", false},
		{"jpg allowed", "image.jpg", false},
		{"uppercase exe blocked", "MALWARE.EXE", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateFile(tt.filename, 1024)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrBlockedExt)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFile_SizeLimit(t *testing.T) {
	err := ValidateFile("file.pdf", MaxFileSize-1)
	assert.NoError(t, err)

	err = ValidateFile("file.pdf", MaxFileSize)
	assert.NoError(t, err)

	err = ValidateFile("file.pdf", MaxFileSize+1)
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestSaveAndOpen_Integration(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	stored, err := storage.Save(111111, "notes.txt", strings.NewReader("test content"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", stored.OriginalName)
	assert.True(t, strings.HasSuffix(stored.StoredName, "_notes.txt"))
	assert.NoError(t, ValidateStoredName(stored.StoredName))
	assert.Equal(t, int64(len("test content")), stored.SizeBytes)

	reader, info, err := storage.Open(111111, stored.StoredName)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, "test content", string(data))
	assert.Equal(t, "notes.txt", info.OriginalName)
	assert.Equal(t, int64(len("test content")), info.SizeBytes)
}

func TestSave_StripsDirectoryFromFilename(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	stored, err := storage.Save(111111, "../escape/notes.txt", strings.NewReader("x"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", stored.OriginalName)

	absBase, _ := filepath.Abs(tempDir)
	assert.True(t, strings.HasPrefix(stored.Path, absBase))
}

func TestSave_ScopedPerOwner(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	stored, err := storage.Save(111111, "notes.txt", strings.NewReader("mine"))
	require.NoError(t, err)

	// Another owner cannot read the blob by name.
	_, _, err = storage.Open(222222, stored.StoredName)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestOpen_FileNotFound(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, _, err = storage.Open(111111, "1700000000000000000_missing.txt")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestOpen_PathTraversal(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	_, _, err = storage.Open(111111, "1_../../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestDelete_Integration(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	stored, err := storage.Save(111111, "notes.txt", strings.NewReader("x"))
	require.NoError(t, err)

	err = storage.Delete(111111, stored.StoredName)
	assert.NoError(t, err)

	_, _, err = storage.Open(111111, stored.StoredName)
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestDelete_NonexistentFile(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	// Deleting a blob that never existed is not an error.
	err = storage.Delete(111111, "1_nonexistent.txt")
	assert.NoError(t, err)
}

func TestDelete_PathTraversal(t *testing.T) {
	tempDir := t.TempDir()
	storage, err := NewLocalStorage(tempDir)
	require.NoError(t, err)

	err = storage.Delete(111111, "1_../../../etc/passwd")
	assert.ErrorIs(t, err, ErrPathTraversal)
}

func TestNewLocalStorage_CreatesDirectory(t *testing.T) {
	tempDir := t.TempDir()
	newDir := filepath.Join(tempDir, "new", "nested", "dir")

	_, err := NewLocalStorage(newDir)
	require.NoError(t, err)

	info, err := os.Stat(newDir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}
