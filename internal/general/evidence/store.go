package evidence

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"courier-dispatch/internal/ports"
)

var (
	ErrNotFound   = errors.New("evidence blob not found")
	ErrBadRef     = errors.New("malformed evidence reference")
	ErrBadDataURL = errors.New("malformed base64 data URL")
)

// extByContentType maps accepted image types to on-disk extensions.
var extByContentType = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// DiskStore keeps evidence blobs (pickup/delivery photos, signatures) on the
// local filesystem. References are "<shipmentID>/<kind>-<random><ext>" and are
// the only thing the core ever persists.
type DiskStore struct {
	root string
}

// NewDiskStore creates the root directory if needed and returns a store.
func NewDiskStore(root string) (*DiskStore, error) {
	if strings.TrimSpace(root) == "" {
		return nil, errors.New("evidence: empty root directory")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("evidence: create root dir: %w", err)
	}
	return &DiskStore{root: root}, nil
}

var _ ports.EvidenceStore = (*DiskStore)(nil)

// Put stores a blob and returns its reference.
func (store *DiskStore) Put(ctx context.Context, shipmentID, kind string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(data) == 0 {
		return "", errors.New("evidence: empty blob")
	}

	ext, ok := extByContentType[contentType]
	if !ok {
		return "", fmt.Errorf("evidence: unsupported content type %q", contentType)
	}

	// random suffix keeps re-uploads from clobbering earlier evidence
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("evidence: random suffix: %w", err)
	}

	ref := filepath.Join(shipmentID, kind+"-"+hex.EncodeToString(suffix)+ext)
	path, err := store.resolve(ref)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("evidence: create shipment dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("evidence: write blob: %w", err)
	}

	return ref, nil
}

// Get loads a blob by reference.
func (store *DiskStore) Get(ctx context.Context, ref string) ([]byte, string, error) {
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	path, err := store.resolve(ref)
	if err != nil {
		return nil, "", err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("evidence: read blob: %w", err)
	}

	return data, contentTypeByExt(filepath.Ext(path)), nil
}

// resolve joins ref under root and rejects anything that escapes it.
func (store *DiskStore) resolve(ref string) (string, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.Contains(ref, "..") || filepath.IsAbs(ref) {
		return "", ErrBadRef
	}

	path := filepath.Join(store.root, filepath.FromSlash(ref))
	rel, err := filepath.Rel(store.root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return "", ErrBadRef
	}

	return path, nil
}

func contentTypeByExt(ext string) string {
	for ct, e := range extByContentType {
		if e == ext {
			return ct
		}
	}
	return "application/octet-stream"
}

// DecodeDataURL splits a "data:image/jpeg;base64,...." payload into raw bytes
// and a content type. Mobile clients submit evidence photos in this form.
func DecodeDataURL(s string) ([]byte, string, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "data:") {
		return nil, "", ErrBadDataURL
	}

	meta, body, ok := strings.Cut(s[len("data:"):], ",")
	if !ok {
		return nil, "", ErrBadDataURL
	}

	contentType, enc, ok := strings.Cut(meta, ";")
	if !ok || enc != "base64" {
		return nil, "", ErrBadDataURL
	}
	if _, known := extByContentType[contentType]; !known {
		return nil, "", fmt.Errorf("evidence: unsupported content type %q", contentType)
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, "", ErrBadDataURL
	}
	if len(data) == 0 {
		return nil, "", ErrBadDataURL
	}

	return data, contentType, nil
}
