/*
Package files stores uploaded client documents on local disk.

LAYOUT:
  <root>/<client id>/<storage key>

  The storage key is generated at upload time (random UUID plus the original
  extension) and never changes. The name staff see is kept on the document
  record, so renaming a document never touches the file.

CONCURRENCY:
  No locking. Two uploads for the same client get different keys, so they
  cannot overwrite each other.

SEE ALSO:
  - records/service.go: Upload, rename, delete flows
*/
package files

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that would escape the client directory.
var ErrInvalidKey = errors.New("invalid storage key")

// Disk keeps files under a root directory, one subdirectory per client.
type Disk struct {
	root string
}

// NewDisk creates the root directory if needed.
func NewDisk(root string) (*Disk, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Disk{root: root}, nil
}

// Root returns the upload root.
func (d *Disk) Root() string { return d.root }

// NewKey returns a fresh storage key that keeps name's extension when the
// extension is plain ASCII letters and digits.
func NewKey(name string) string {
	ext := filepath.Ext(SanitizeName(name))
	if !safeExt.MatchString(ext) {
		ext = ""
	}
	return uuid.NewString() + strings.ToLower(ext)
}

// Save writes r to the client's directory under key.
func (d *Disk) Save(clientID int64, key string, r io.Reader) (int64, error) {
	path, err := d.path(clientID, key)
	if err != nil {
		return 0, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, fmt.Errorf("failed to create client directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return 0, fmt.Errorf("failed to write file: %w", err)
	}
	return n, nil
}

// Open opens a stored file for reading.
func (d *Disk) Open(clientID int64, key string) (*os.File, error) {
	path, err := d.path(clientID, key)
	if err != nil {
		return nil, err
	}
	return os.Open(path)
}

// Remove deletes one stored file. Missing files are not an error.
func (d *Disk) Remove(clientID int64, key string) error {
	path, err := d.path(clientID, key)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

// RemoveClient deletes the client's whole directory.
func (d *Disk) RemoveClient(clientID int64) error {
	return os.RemoveAll(d.clientDir(clientID))
}

func (d *Disk) clientDir(clientID int64) string {
	return filepath.Join(d.root, strconv.FormatInt(clientID, 10))
}

func (d *Disk) path(clientID int64, key string) (string, error) {
	if key == "" || key != filepath.Base(key) || key == "." || key == ".." {
		return "", ErrInvalidKey
	}
	return filepath.Join(d.clientDir(clientID), key), nil
}

// =============================================================================
// NAME SANITIZING
// =============================================================================

var safeExt = regexp.MustCompile(`^\.[A-Za-z0-9]{1,10}$`)

// SanitizeName turns an uploaded file name into a display label: the
// directory part, control characters and invalid UTF-8 are dropped, and any
// script is kept. May return "".
func SanitizeName(name string) string {
	name = strings.ToValidUTF8(name, "")
	name = strings.ReplaceAll(name, "\\", "/")
	name = name[strings.LastIndex(name, "/")+1:]
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)
	if name == "." || name == ".." {
		return ""
	}
	return name
}
