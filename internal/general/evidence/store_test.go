package evidence

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"
)

func TestPutGetRoundTrip(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	payload := []byte("jpeg-bytes")
	ref, err := store.Put(context.Background(), "shp-1", "pickup-photo", payload, "image/jpeg")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasPrefix(ref, "shp-1/pickup-photo-") || !strings.HasSuffix(ref, ".jpg") {
		t.Fatalf("unexpected ref shape: %q", ref)
	}

	data, contentType, err := store.Get(context.Background(), ref)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "jpeg-bytes" {
		t.Fatalf("blob corrupted")
	}
	if contentType != "image/jpeg" {
		t.Fatalf("content type lost: %q", contentType)
	}
}

func TestPutDistinctRefsOnReupload(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir())

	a, err := store.Put(context.Background(), "shp-1", "signature", []byte("one"), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	b, err := store.Put(context.Background(), "shp-1", "signature", []byte("two"), "image/png")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if a == b {
		t.Fatalf("re-upload must not clobber earlier evidence")
	}
}

func TestPutRejectsBadInput(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir())

	if _, err := store.Put(context.Background(), "shp-1", "photo", nil, "image/jpeg"); err == nil {
		t.Fatalf("expected empty blob to fail")
	}
	if _, err := store.Put(context.Background(), "shp-1", "photo", []byte("x"), "application/pdf"); err == nil {
		t.Fatalf("expected unsupported content type to fail")
	}
}

func TestGetRejectsPathEscape(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir())

	for _, ref := range []string{"../secrets.txt", "/etc/passwd", "shp-1/../../x.jpg", "  "} {
		if _, _, err := store.Get(context.Background(), ref); !errors.Is(err, ErrBadRef) {
			t.Fatalf("ref %q: expected ErrBadRef, got %v", ref, err)
		}
	}
}

func TestGetMissingBlob(t *testing.T) {
	store, _ := NewDiskStore(t.TempDir())
	if _, _, err := store.Get(context.Background(), "shp-1/photo-aa.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestDecodeDataURL(t *testing.T) {
	body := base64.StdEncoding.EncodeToString([]byte("png-bytes"))

	data, contentType, err := DecodeDataURL("data:image/png;base64," + body)
	if err != nil {
		t.Fatalf("DecodeDataURL: %v", err)
	}
	if string(data) != "png-bytes" || contentType != "image/png" {
		t.Fatalf("decode mismatch: %q %q", data, contentType)
	}

	bad := []string{
		"image/png;base64," + body, // no data: prefix
		"data:image/png," + body,   // no base64 marker
		"data:image/png;base64,@@", // invalid base64
		"data:image/png;base64,",   // empty body
		"data:text/html;base64," + body,
	}
	for _, s := range bad {
		if _, _, err := DecodeDataURL(s); err == nil {
			t.Fatalf("expected %q to fail", s)
		}
	}
}
