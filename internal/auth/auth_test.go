package auth

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreAuthenticate(t *testing.T) {
	t.Parallel()

	aStore := NewStore()
	require.NoError(t, aStore.Add("alice", "pw"))

	assert.True(t, aStore.Authenticate("alice", "pw"))
	assert.False(t, aStore.Authenticate("alice", "wrong"))
	assert.False(t, aStore.Authenticate("bob", "pw"))
	assert.False(t, aStore.Authenticate("", ""))
}

func TestStoreAddReplaces(t *testing.T) {
	t.Parallel()

	aStore := NewStore()
	username := gofakeit.Username()
	require.NoError(t, aStore.Add(username, "first"))
	require.NoError(t, aStore.Add(username, "second"))

	assert.False(t, aStore.Authenticate(username, "first"))
	assert.True(t, aStore.Authenticate(username, "second"))
}

func TestStoreAddEmptyUsername(t *testing.T) {
	t.Parallel()

	assert.Error(t, NewStore().Add("", "pw"))
}

func TestAuthenticatorFunc(t *testing.T) {
	t.Parallel()

	allowAll := AuthenticatorFunc(func(username, password string) bool {
		return true
	})
	assert.True(t, allowAll.Authenticate("anyone", "anything"))
}
