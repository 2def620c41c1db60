package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Security errors
var (
	ErrPathTraversal = errors.New("path traversal detected")
	ErrFileNotFound  = errors.New("file not found")
	ErrFileTooLarge  = errors.New("file exceeds size limit")
	ErrBlockedExt    = errors.New("file extension is blocked")
	ErrInvalidName   = errors.New("invalid stored name")
)

// MaxFileSize is the maximum allowed file size (25 MB)
const MaxFileSize = 25 * 1024 * 1024

// BlockedExtensions contains file extensions that are not allowed
var BlockedExtensions = map[string]bool{
	".exe": true, ".bat": true, ".cmd": true, ".com": true,
	".pif": true, ".scr": true, ".vbs": true, ".js": true,
	".jar": true, ".ps1": true, ".sh": true, ".bash": true,
	".msi": true, ".dll": true, ".sys": true,
}

// storedNamePattern matches "<unix-nano>_<original name>". The format
// check is only the first-line reject; containment is enforced by
// resolving the path under the owner's directory.
var storedNamePattern = regexp.MustCompile(`^[0-9]+_.+$`)

// StoredFile describes a persisted attachment blob.
type StoredFile struct {
	OriginalName string
	StoredName   string
	Path         string
	SizeBytes    int64
	UploadedAt   time.Time
}

// FileStorage stores attachment blobs under per-identity directories.
// Stored names are stable once issued; they are the only storage-level
// value exposed across the API boundary.
type FileStorage interface {
	Save(ownerID int, filename string, content io.Reader) (*StoredFile, error)
	Open(ownerID int, storedName string) (io.ReadCloser, *StoredFile, error)
	Delete(ownerID int, storedName string) error
}

// localStorage implements FileStorage using the local filesystem
type localStorage struct {
	basePath string
}

// NewLocalStorage creates a new localStorage instance
func NewLocalStorage(basePath string) (FileStorage, error) {
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &localStorage{basePath: basePath}, nil
}

// ValidateStoredName checks the "<timestamp>_<name>" format of a stored
// attachment name.
func ValidateStoredName(storedName string) error {
	if storedName == "" || !storedNamePattern.MatchString(storedName) {
		return ErrInvalidName
	}
	return nil
}

// ValidateFile checks file extension and size
func ValidateFile(filename string, size int64) error {
	ext := strings.ToLower(filepath.Ext(filename))

	if BlockedExtensions[ext] {
		return ErrBlockedExt
	}

	if size > MaxFileSize {
		return ErrFileTooLarge
	}

	return nil
}

// ownerDir returns the attachment directory for one identity.
func (s *localStorage) ownerDir(ownerID int) string {
	return filepath.Join(s.basePath, strconv.Itoa(ownerID))
}

// resolve validates storedName and resolves it strictly inside the
// owner's directory. Any name whose cleaned path escapes that directory
// is rejected as traversal.
func (s *localStorage) resolve(ownerID int, storedName string) (string, error) {
	if err := ValidateStoredName(storedName); err != nil {
		return "", err
	}

	// Stored names are bare filenames; any separator means an attempt
	// to step out of the owner's directory.
	if strings.ContainsAny(storedName, `/\`) {
		return "", ErrPathTraversal
	}
	cleanName := filepath.Clean(storedName)
	if filepath.IsAbs(cleanName) || strings.Contains(cleanName, "..") {
		return "", ErrPathTraversal
	}

	dir := s.ownerDir(ownerID)
	fullPath := filepath.Join(dir, cleanName)

	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return "", fmt.Errorf("invalid file path: %w", err)
	}
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absDir+string(filepath.Separator)) {
		return "", ErrPathTraversal
	}

	return absPath, nil
}

// Save persists the content under the owner's directory. The stored name
// is the original filename prefixed with a nanosecond timestamp, which
// keeps names unique per owner without coordination.
func (s *localStorage) Save(ownerID int, filename string, content io.Reader) (*StoredFile, error) {
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || base == "" {
		return nil, ErrInvalidName
	}

	now := time.Now()
	storedName := fmt.Sprintf("%d_%s", now.UnixNano(), base)

	dir := s.ownerDir(ownerID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create owner directory: %w", err)
	}

	fullPath, err := s.resolve(ownerID, storedName)
	if err != nil {
		return nil, err
	}

	file, err := os.OpenFile(fullPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		return nil, fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	size, err := io.Copy(file, content)
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("failed to write file: %w", err)
	}
	if size > MaxFileSize {
		os.Remove(fullPath)
		return nil, ErrFileTooLarge
	}

	return &StoredFile{
		OriginalName: base,
		StoredName:   storedName,
		Path:         fullPath,
		SizeBytes:    size,
		UploadedAt:   now,
	}, nil
}

// Open retrieves a stored blob by name, scoped to the owner's directory.
func (s *localStorage) Open(ownerID int, storedName string) (io.ReadCloser, *StoredFile, error) {
	fullPath, err := s.resolve(ownerID, storedName)
	if err != nil {
		return nil, nil, err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, ErrFileNotFound
		}
		return nil, nil, fmt.Errorf("failed to open file: %w", err)
	}

	info, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, nil, fmt.Errorf("failed to stat file: %w", err)
	}

	return file, &StoredFile{
		OriginalName: originalNameOf(storedName),
		StoredName:   storedName,
		Path:         fullPath,
		SizeBytes:    info.Size(),
		UploadedAt:   info.ModTime(),
	}, nil
}

// Delete removes a stored blob by name.
func (s *localStorage) Delete(ownerID int, storedName string) error {
	fullPath, err := s.resolve(ownerID, storedName)
	if err != nil {
		return err
	}

	if err := os.Remove(fullPath); err != nil {
		if os.IsNotExist(err) {
			// File already doesn't exist, not an error
			return nil
		}
		return fmt.Errorf("failed to delete file: %w", err)
	}

	return nil
}

// originalNameOf strips the timestamp prefix from a stored name.
func originalNameOf(storedName string) string {
	if i := strings.IndexByte(storedName, '_'); i >= 0 && i+1 < len(storedName) {
		return storedName[i+1:]
	}
	return storedName
}
