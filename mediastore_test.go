package main

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"
)

func openTestMediaStore(t *testing.T) *MediaStore {
	t.Helper()
	ms, err := OpenMediaStore(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("opening media store: %v", err)
	}
	t.Cleanup(func() { ms.Close() })
	return ms
}

func TestResolveMintsDistinctHandles(t *testing.T) {
	ms := openTestMediaStore(t)
	blob := []byte("recorded testimony bytes")
	if err := ms.SaveBlob("proj/maria/video", "video/webm", blob); err != nil {
		t.Fatalf("saving blob: %v", err)
	}

	first, err := ms.Resolve("proj/maria/video")
	if err != nil || first == nil {
		t.Fatalf("first resolve: handle=%v err=%v", first, err)
	}
	second, err := ms.Resolve("proj/maria/video")
	if err != nil || second == nil {
		t.Fatalf("second resolve: handle=%v err=%v", second, err)
	}

	if first.Path() == second.Path() {
		t.Error("two resolves returned the same handle path")
	}
	if !strings.HasPrefix(first.URL(), "file://") {
		t.Errorf("handle URL %q is not locally playable", first.URL())
	}
	for _, h := range []*MediaHandle{first, second} {
		data, err := os.ReadFile(h.Path())
		if err != nil {
			t.Fatalf("reading handle %s: %v", h.Path(), err)
		}
		if !bytes.Equal(data, blob) {
			t.Errorf("handle content mismatch for %s", h.Path())
		}
	}
	if ms.LiveHandles() != 2 {
		t.Errorf("live handles = %d, want 2", ms.LiveHandles())
	}

	first.Release()
	second.Release()
	if ms.LiveHandles() != 0 {
		t.Errorf("live handles after release = %d, want 0", ms.LiveHandles())
	}
	if _, err := os.Stat(first.Path()); !os.IsNotExist(err) {
		t.Error("released handle file still exists")
	}
}

func TestReleaseIsIdempotent(t *testing.T) {
	ms := openTestMediaStore(t)
	if err := ms.SaveBlob("k", "video/webm", []byte("x")); err != nil {
		t.Fatal(err)
	}
	handle, err := ms.Resolve("k")
	if err != nil || handle == nil {
		t.Fatalf("resolve: %v", err)
	}

	handle.Release()
	handle.Release()
	handle.Release()
	if ms.LiveHandles() != 0 {
		t.Errorf("live handles = %d after repeated release, want 0", ms.LiveHandles())
	}
}

func TestResolveMissingKeyIsAMiss(t *testing.T) {
	ms := openTestMediaStore(t)
	handle, err := ms.Resolve("never/saved")
	if err != nil {
		t.Fatalf("miss returned error: %v", err)
	}
	if handle != nil {
		t.Error("miss returned a handle")
	}
}

func TestSaveBlobOverwritesSlot(t *testing.T) {
	ms := openTestMediaStore(t)
	if err := ms.SaveBlob("slot", "video/webm", []byte("take one")); err != nil {
		t.Fatal(err)
	}
	if err := ms.SaveBlob("slot", "video/mp4", []byte("take two")); err != nil {
		t.Fatal(err)
	}

	handle, err := ms.Resolve("slot")
	if err != nil || handle == nil {
		t.Fatalf("resolve: %v", err)
	}
	defer handle.Release()

	data, err := os.ReadFile(handle.Path())
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "take two" {
		t.Errorf("blob = %q, want the overwrite", data)
	}
	if handle.ContentType() != "video/mp4" {
		t.Errorf("content type = %q, want overwrite", handle.ContentType())
	}
}

func TestSaveBlobValidation(t *testing.T) {
	ms := openTestMediaStore(t)
	if err := ms.SaveBlob("", "video/webm", []byte("x")); err == nil {
		t.Error("empty key accepted")
	} else if errors.Is(err, ErrMediaStorage) {
		t.Error("empty key misclassified as a storage failure")
	}
	if err := ms.SaveBlob("k", "video/webm", nil); err == nil {
		t.Error("empty blob accepted")
	}
}

func TestClearWipesAllBlobs(t *testing.T) {
	ms := openTestMediaStore(t)
	if err := ms.SaveBlob("a", "image/png", []byte("1")); err != nil {
		t.Fatal(err)
	}
	if err := ms.SaveBlob("b", "image/png", []byte("2")); err != nil {
		t.Fatal(err)
	}

	if err := ms.Clear(); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if ms.Exists("a") || ms.Exists("b") {
		t.Error("blobs survived clear")
	}
}

func TestNilStoreDegrades(t *testing.T) {
	var ms *MediaStore

	handle, err := ms.Resolve("anything")
	if handle != nil || err != nil {
		t.Errorf("nil store resolve = (%v, %v), want miss", handle, err)
	}
	if ms.Exists("anything") {
		t.Error("nil store claims a blob exists")
	}
	if err := ms.SaveBlob("k", "video/webm", []byte("x")); !errors.Is(err, ErrMediaStorage) {
		t.Errorf("nil store save error = %v, want ErrMediaStorage", err)
	}
	if ms.LiveHandles() != 0 {
		t.Error("nil store reports live handles")
	}
}

func TestExtensionForMimeTypes(t *testing.T) {
	if got := extensionFor("video/webm"); got != ".webm" {
		t.Errorf("video/webm -> %q", got)
	}
	if got := extensionFor("application/octet-stream"); got != ".octet-stream" {
		t.Errorf("fallback -> %q", got)
	}
	if got := extensionFor("junk"); got != ".bin" {
		t.Errorf("malformed -> %q", got)
	}
}
