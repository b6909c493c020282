package credential_test

import (
	"testing"

	"github.com/99designs/keyring"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/taskflow/internal/credential"
)

func TestVaultSaveLoadClear(t *testing.T) {
	v := credential.NewVault(keyring.NewArrayKeyring(nil))

	blob, err := v.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, blob, "empty vault")

	require.NoError(t, v.SaveSession([]byte(`{"token":"a"}`)))
	require.NoError(t, v.SaveSession([]byte(`{"token":"b"}`)))

	blob, err = v.LoadSession()
	require.NoError(t, err)
	assert.Equal(t, `{"token":"b"}`, string(blob))

	require.NoError(t, v.ClearSession())
	blob, err = v.LoadSession()
	require.NoError(t, err)
	assert.Nil(t, blob)

	assert.NoError(t, v.ClearSession(), "clearing twice")
}
