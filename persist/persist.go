// Package persist implements snapshot save/load for a core.Store: a
// snapshot-only format holding every live key's DUMP blob, gob-encoded
// as one envelope. The core engine has no notion of disk at all; this
// package is the external collaborator that owns it.
package persist

import (
	"encoding/gob"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"

	"github.com/mshaverdo/assert"

	"github.com/nullcache/nullcache/core"
	"github.com/nullcache/nullcache/internal/log"
)

// snapshotVersion guards the envelope format; bump when the blob layout
// in core/dump.go changes incompatibly.
const snapshotVersion = 1

// envelope is the gob-serialized snapshot file contents: a version tag
// plus one DUMP blob per live key at the time of the snapshot.
type envelope struct {
	Version int
	Blobs   map[string][]byte
}

// Save writes every live key in store to filename as a single snapshot,
// atomically (write to a temp file in the same directory, then rename).
// Expired keys are swept first so the snapshot never carries dead weight.
func Save(store *core.Store, filename string) error {
	store.EvictExpired()

	keys := store.Keys("*")
	blobs := make(map[string][]byte, len(keys))
	for _, key := range keys {
		blob, ok, err := store.Dump(key)
		if err != nil {
			return fmt.Errorf("persist.Save: dumping %q: %w", key, err)
		}
		assert.True(ok, "persist.Save: key vanished between Keys() and Dump()")
		blobs[string(key)] = blob
	}

	dir := filepath.Dir(filename)
	tmp, err := ioutil.TempFile(dir, filepath.Base(filename)+".tmp")
	if err != nil {
		return fmt.Errorf("persist.Save: %w", err)
	}
	defer tmp.Close()

	if err := gob.NewEncoder(tmp).Encode(envelope{Version: snapshotVersion, Blobs: blobs}); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist.Save: encoding: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist.Save: %w", err)
	}

	if err := os.Rename(tmp.Name(), filename); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist.Save: %w", err)
	}

	log.Infof("persisted %d keys to %s", len(blobs), filename)
	return nil
}

// Load restores every key from filename's snapshot into store via
// RESTORE (ttlMs=0, replace=true), so each key's embedded absolute
// expiration carries over unchanged -- restoring a snapshot hours after
// it was taken still honors the original deadline.
// A missing file is not an error: it just means a fresh store.
func Load(store *core.Store, filename string) error {
	file, err := os.Open(filename)
	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return fmt.Errorf("persist.Load: %w", err)
	}
	defer file.Close()

	var env envelope
	if err := gob.NewDecoder(file).Decode(&env); err != nil {
		return fmt.Errorf("persist.Load: decoding %s: %w", filename, err)
	}
	if env.Version != snapshotVersion {
		return fmt.Errorf("persist.Load: unsupported snapshot version %d", env.Version)
	}

	for key, blob := range env.Blobs {
		if err := store.Restore([]byte(key), blob, 0, true); err != nil {
			return fmt.Errorf("persist.Load: restoring %q: %w", key, err)
		}
	}

	log.Infof("loaded %d keys from %s", len(env.Blobs), filename)
	return nil
}
