package uploads

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Storage saves uploaded photos under a tenant-namespaced directory:
// <root>/<tenantId>/<random hex><ext>. Only the web path is persisted on the
// record; serving the files back is plain static hosting.
type Storage struct {
	root string
}

func NewStorage(root string) (*Storage, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return &Storage{root: abs}, nil
}

func (s *Storage) Root() string { return s.root }

// Save writes the file and returns its web path ("/uploads/<tenant>/<name>").
func (s *Storage) Save(tenantID, originalName string, r io.Reader) (string, error) {
	if tenantID == "" {
		return "", fmt.Errorf("tenant id required for uploads")
	}
	dir := filepath.Join(s.root, tenantID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	var b [8]byte
	_, _ = rand.Read(b[:])
	ext := strings.ToLower(filepath.Ext(originalName))
	name := hex.EncodeToString(b[:]) + ext

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		return "", err
	}

	return "/uploads/" + tenantID + "/" + name, nil
}
