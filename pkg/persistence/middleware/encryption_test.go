package middleware_test

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mbruna/espalier/pkg/adapters/memory"
	"github.com/mbruna/espalier/pkg/domain"
	"github.com/mbruna/espalier/pkg/persistence/middleware"
	"github.com/mbruna/espalier/pkg/ports"
)

func testKey(b byte) []byte {
	return bytes.Repeat([]byte{b}, 32)
}

func encryptedStore(t *testing.T, config middleware.EncryptionConfig) (ports.StateStore, *memory.Store) {
	t.Helper()
	mw, err := middleware.NewEncryptionMiddleware(config)
	require.NoError(t, err)
	inner := memory.NewStore()
	return mw(inner), inner
}

func TestEncryption_Roundtrip(t *testing.T) {
	store, _ := encryptedStore(t, middleware.EncryptionConfig{ActiveKey: testKey(1)})
	ctx := context.Background()

	state := domain.NewSessionState()
	state.Controls["card_number"] = []byte(`{"value":"4111111111111111"}`)
	require.NoError(t, store.Save(ctx, "s1", state))

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"4111111111111111"}`, string(loaded.Controls["card_number"]))
}

func TestEncryption_HidesControlIDsAtRest(t *testing.T) {
	store, inner := encryptedStore(t, middleware.EncryptionConfig{ActiveKey: testKey(1)})
	ctx := context.Background()

	state := domain.NewSessionState()
	state.Controls["card_number"] = []byte(`{"value":"4111111111111111"}`)
	require.NoError(t, store.Save(ctx, "s1", state))

	stored, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.NotContains(t, stored.Controls, "card_number")
	require.Len(t, stored.Controls, 1)
	assert.NotContains(t, string(stored.Controls["__encrypted__"]), "4111111111111111")
}

func TestEncryption_KeyRotation(t *testing.T) {
	ctx := context.Background()
	oldKey, newKey := testKey(1), testKey(2)

	oldStore, inner := encryptedStore(t, middleware.EncryptionConfig{ActiveKey: oldKey})
	state := domain.NewSessionState()
	state.Controls["pet"] = []byte(`{"value":"cat"}`)
	require.NoError(t, oldStore.Save(ctx, "s1", state))

	// A rotated deployment decrypts old blobs via the fallback list.
	rotated, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)
	store := rotated(inner)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"value":"cat"}`, string(loaded.Controls["pet"]))

	// Without the fallback, the old blob is unreadable.
	fresh, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey})
	require.NoError(t, err)
	_, err = fresh(inner).Load(ctx, "s1")
	assert.ErrorContains(t, err, "decrypt")
}

func TestEncryption_RejectsShortKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey: []byte("too-short"),
	})
	assert.ErrorContains(t, err, "32 bytes")
}

func TestEncryption_RejectsPlaintextBlob(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()

	plain := domain.NewSessionState()
	plain.Controls["pet"] = []byte(`{"value":"cat"}`)
	require.NoError(t, inner.Save(ctx, "s1", plain))

	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: testKey(1)})
	require.NoError(t, err)

	_, err = mw(inner).Load(ctx, "s1")
	assert.ErrorContains(t, err, "envelope")
}
