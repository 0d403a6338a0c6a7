package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

// ErrMediaStorage marks persistence failures in the media store, as
// opposed to a plain miss (which is a nil handle, not an error). Callers
// surface it as a repair/retry action instead of swallowing it.
var ErrMediaStorage = errors.New("media storage failure")

// MediaStore persists binary media keyed by opaque strings and resolves a
// key to a playable handle on demand. Keys are stable path-like slot names
// (e.g. "<project>/<contributor>/video") so re-seeding or re-uploading a
// replacement for the same logical slot overwrites instead of duplicating.
//
// A nil *MediaStore is valid and treats every resolve as a miss; callers
// degrade gracefully when the underlying database could not be opened.
type MediaStore struct {
	db        *badger.DB
	handleDir string
	logger    *log.Logger

	mu   sync.Mutex
	live int
}

// MediaHandle is one minted reference to a stored blob. Every Resolve hit
// creates a fresh handle; the caller owns it and must call Release when
// the media is no longer displayed.
type MediaHandle struct {
	store       *MediaStore
	key         string
	contentType string
	path        string

	releaseOnce sync.Once
}

const (
	blobKeyPrefix = "blob/"
	mimeKeyPrefix = "mime/"
)

// OpenMediaStore opens the blob database under dirPath.
func OpenMediaStore(dirPath string, logger *log.Logger) (*MediaStore, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	opts := badger.DefaultOptions(filepath.Join(dirPath, "blobs")).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open blob database: %v", ErrMediaStorage, err)
	}

	handleDir := filepath.Join(dirPath, "handles")
	if err := os.MkdirAll(handleDir, 0755); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: failed to create handle directory: %v", ErrMediaStorage, err)
	}

	return &MediaStore{
		db:        db,
		handleDir: handleDir,
		logger:    logger,
	}, nil
}

// SaveBlob stores data under key with last-write-wins overwrite semantics.
// Any valid non-empty blob is accepted; persistence failures wrap
// ErrMediaStorage so callers can distinguish them from a miss.
func (ms *MediaStore) SaveBlob(key, contentType string, data []byte) error {
	if ms == nil || ms.db == nil {
		return fmt.Errorf("%w: store not available", ErrMediaStorage)
	}
	if strings.TrimSpace(key) == "" {
		return errors.New("media key cannot be empty")
	}
	if len(data) == 0 {
		return errors.New("media blob cannot be empty")
	}

	err := ms.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(blobKeyPrefix+key), data); err != nil {
			return err
		}
		return txn.Set([]byte(mimeKeyPrefix+key), []byte(contentType))
	})
	if err != nil {
		return fmt.Errorf("%w: save %q: %v", ErrMediaStorage, key, err)
	}
	return nil
}

// Resolve looks up key and mints a new handle for the stored blob. A
// missing key returns (nil, nil), not an error: project hydration probes
// every memory's key speculatively and most may not exist yet.
func (ms *MediaStore) Resolve(key string) (*MediaHandle, error) {
	if ms == nil || ms.db == nil {
		return nil, nil
	}

	var data []byte
	var contentType string
	err := ms.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(blobKeyPrefix + key))
		if err != nil {
			return err
		}
		if data, err = item.ValueCopy(nil); err != nil {
			return err
		}
		mimeItem, err := txn.Get([]byte(mimeKeyPrefix + key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return mimeItem.Value(func(val []byte) error {
			contentType = string(val)
			return nil
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: resolve %q: %v", ErrMediaStorage, key, err)
	}

	path := filepath.Join(ms.handleDir, uuid.NewString()+extensionFor(contentType))
	if err := os.WriteFile(path, data, 0600); err != nil {
		return nil, fmt.Errorf("%w: mint handle for %q: %v", ErrMediaStorage, key, err)
	}

	ms.mu.Lock()
	ms.live++
	ms.mu.Unlock()

	return &MediaHandle{
		store:       ms,
		key:         key,
		contentType: contentType,
		path:        path,
	}, nil
}

// Exists reports whether a blob is stored under key without minting a
// handle.
func (ms *MediaStore) Exists(key string) bool {
	if ms == nil || ms.db == nil {
		return false
	}
	err := ms.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte(blobKeyPrefix + key))
		return err
	})
	return err == nil
}

// Clear wipes all stored blobs. Used only by the explicit repair flow.
func (ms *MediaStore) Clear() error {
	if ms == nil || ms.db == nil {
		return nil
	}
	if err := ms.db.DropAll(); err != nil {
		return fmt.Errorf("%w: clear: %v", ErrMediaStorage, err)
	}
	return nil
}

// LiveHandles returns the number of minted handles not yet released.
func (ms *MediaStore) LiveHandles() int {
	if ms == nil {
		return 0
	}
	ms.mu.Lock()
	defer ms.mu.Unlock()
	return ms.live
}

// Close closes the blob database and removes any scratch handles still on
// disk.
func (ms *MediaStore) Close() error {
	if ms == nil || ms.db == nil {
		return nil
	}
	os.RemoveAll(ms.handleDir)
	return ms.db.Close()
}

// Key returns the logical slot this handle was resolved from.
func (h *MediaHandle) Key() string { return h.key }

// ContentType returns the stored MIME type.
func (h *MediaHandle) ContentType() string { return h.contentType }

// Path returns the local filesystem path backing this handle.
func (h *MediaHandle) Path() string { return h.path }

// URL returns a locally valid, playable reference to the blob.
func (h *MediaHandle) URL() string {
	return "file://" + h.path
}

// Release frees the handle. Safe to call more than once; only the first
// call has effect. Every component that resolves a handle must release it
// on teardown or replacement or the scratch space grows without bound.
func (h *MediaHandle) Release() {
	if h == nil {
		return
	}
	h.releaseOnce.Do(func() {
		if err := os.Remove(h.path); err != nil && !os.IsNotExist(err) {
			h.store.logger.Printf("Warning: Failed to remove handle %s: %v", h.path, err)
		}
		h.store.mu.Lock()
		h.store.live--
		h.store.mu.Unlock()
	})
}

// extensionFor maps a MIME type to a file extension for minted handles.
func extensionFor(contentType string) string {
	switch contentType {
	case "video/webm":
		return ".webm"
	case "video/mp4":
		return ".mp4"
	case "audio/wav":
		return ".wav"
	case "audio/webm":
		return ".weba"
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	default:
		if idx := strings.IndexByte(contentType, '/'); idx >= 0 && idx+1 < len(contentType) {
			return "." + contentType[idx+1:]
		}
		return ".bin"
	}
}
