// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prefs

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// =============================================================================
// STORE CONTRACT TESTS
// =============================================================================

func storeImplementations(t *testing.T) map[string]Store {
	t.Helper()
	sqlStore, err := OpenSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })

	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlStore,
	}
}

func TestStore_Contract(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			_, ok, err := store.Get(KeyModel)
			require.NoError(t, err)
			require.False(t, ok)

			require.NoError(t, store.Put(KeyModel, "gpt-3.5-turbo"))
			require.NoError(t, store.Put(KeyMaxTokens, "256"))
			require.NoError(t, store.Put(KeyModel, "text-davinci-003"))

			v, ok, err := store.Get(KeyModel)
			require.NoError(t, err)
			require.True(t, ok)
			require.Equal(t, "text-davinci-003", v)

			keys, err := store.Keys()
			require.NoError(t, err)
			require.Equal(t, []string{KeyMaxTokens, KeyModel}, keys)

			require.NoError(t, store.Remove(KeyModel))
			require.NoError(t, store.Remove("never-existed"))
			_, ok, err = store.Get(KeyModel)
			require.NoError(t, err)
			require.False(t, ok)

			require.ErrorIs(t, store.Put("  ", "x"), ErrEmptyKey)
		})
	}
}

func TestStore_TypedHelpers(t *testing.T) {
	store := NewMemoryStore()

	require.Equal(t, "fallback", GetString(store, KeyAPIKey, "fallback"))
	require.True(t, GetBool(store, KeyEcho, true))

	require.NoError(t, PutBool(store, KeyEcho, false))
	require.False(t, GetBool(store, KeyEcho, true))

	require.NoError(t, store.Put(KeyEcho, "not-a-bool"))
	require.True(t, GetBool(store, KeyEcho, true))
}

func TestStore_Closed(t *testing.T) {
	for name, store := range storeImplementations(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, store.Close())
			_, _, err := store.Get(KeyModel)
			require.ErrorIs(t, err, ErrClosed)
			require.ErrorIs(t, store.Put(KeyModel, "x"), ErrClosed)
		})
	}
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.db")
	blob := `[{"text":"hello","isSentByUser":true,"sentAtEpochMillis":1}]`

	store, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Put(KeyMessageList, blob))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get(KeyMessageList)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, blob, got)
}

func TestSQLiteStore_ConcurrentWrites(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer store.Close()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_ = store.Put(KeyMaxTokens, strings.Repeat("1", n+1))
		}(i)
	}
	wg.Wait()

	_, ok, err := store.Get(KeyMaxTokens)
	require.NoError(t, err)
	require.True(t, ok)
}

// =============================================================================
// SECRET TESTS
// =============================================================================

func TestSecretBox_RoundTrip(t *testing.T) {
	box, err := OpenSecretBox(filepath.Join(t.TempDir(), "master.key"))
	require.NoError(t, err)

	sealed, err := box.Seal("sk-secret")
	require.NoError(t, err)
	require.True(t, IsEncrypted(sealed))
	require.NotContains(t, sealed, "sk-secret")

	plain, err := box.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "sk-secret", plain)

	// Plain values pass through for keys written before encryption.
	plain, err = box.Open("sk-legacy")
	require.NoError(t, err)
	require.Equal(t, "sk-legacy", plain)
}

func TestSecretBox_ReusesKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.key")
	first, err := OpenSecretBox(path)
	require.NoError(t, err)
	sealed, err := first.Seal("value")
	require.NoError(t, err)

	second, err := OpenSecretBox(path)
	require.NoError(t, err)
	plain, err := second.Open(sealed)
	require.NoError(t, err)
	require.Equal(t, "value", plain)
}

func TestSecretBox_Tampered(t *testing.T) {
	box, err := OpenSecretBox(filepath.Join(t.TempDir(), "master.key"))
	require.NoError(t, err)

	_, err = box.Open(EncryptedPrefix + "!!!not-base64")
	require.ErrorIs(t, err, ErrInvalidCiphertext)

	other, err := OpenSecretBox(filepath.Join(t.TempDir(), "other.key"))
	require.NoError(t, err)
	sealed, err := other.Seal("value")
	require.NoError(t, err)
	_, err = box.Open(sealed)
	require.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestSecretBox_InvalidKeyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "master.key")
	require.NoError(t, os.WriteFile(path, []byte("short"), 0600))
	_, err := OpenSecretBox(path)
	require.ErrorIs(t, err, ErrInvalidKeyFile)
}

func TestSecureStore_EncryptsOnlySecretKeys(t *testing.T) {
	box, err := OpenSecretBox(filepath.Join(t.TempDir(), "master.key"))
	require.NoError(t, err)
	inner := NewMemoryStore()
	store := NewSecureStore(inner, box, KeyAPIKey)

	require.NoError(t, store.Put(KeyAPIKey, "sk-abc"))
	require.NoError(t, store.Put(KeyModel, "gpt-3.5-turbo"))

	raw, _, _ := inner.Get(KeyAPIKey)
	require.True(t, IsEncrypted(raw))
	rawModel, _, _ := inner.Get(KeyModel)
	require.Equal(t, "gpt-3.5-turbo", rawModel)

	require.Equal(t, "sk-abc", GetString(store, KeyAPIKey, ""))

	// Clearing the key stores an empty plain value.
	require.NoError(t, store.Put(KeyAPIKey, ""))
	require.Equal(t, "", GetString(store, KeyAPIKey, "x"))
}

// =============================================================================
// LOCK TESTS
// =============================================================================

func TestLockDir_Exclusive(t *testing.T) {
	dir := t.TempDir()

	lock, err := LockDir(dir)
	require.NoError(t, err)

	_, err = LockDir(dir)
	require.ErrorIs(t, err, ErrLocked)

	require.NoError(t, lock.Unlock())

	again, err := LockDir(dir)
	require.NoError(t, err)
	require.NoError(t, again.Unlock())
}
