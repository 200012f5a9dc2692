package job

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIdentityDigest_Deterministic(t *testing.T) {
	identity := map[string]any{
		"command": "describe cluster",
		"account": "123456789012",
		"region":  "eu-west-1",
	}

	first, err := IdentityDigest(identity, DefaultDigestLength)
	require.NoError(t, err)
	second, err := IdentityDigest(identity, DefaultDigestLength)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Len(t, first, DefaultDigestLength)
}

func TestIdentityDigest_MapOrderInsensitive(t *testing.T) {
	// Equal maps built in different insertion order must digest identically.
	a := map[string]string{}
	a["region"] = "eu-west-1"
	a["account"] = "123456789012"
	a["command"] = "version"

	b := map[string]string{}
	b["command"] = "version"
	b["account"] = "123456789012"
	b["region"] = "eu-west-1"

	da, err := IdentityDigest(a, DefaultDigestLength)
	require.NoError(t, err)
	db, err := IdentityDigest(b, DefaultDigestLength)
	require.NoError(t, err)

	assert.Equal(t, da, db)
}

func TestIdentityDigest_StructAndMapEquivalent(t *testing.T) {
	// Canonicalization collapses structs into sorted-key maps, so a struct
	// and the equivalent map hash the same.
	type identity struct {
		Account string `json:"account"`
		Region  string `json:"region"`
	}

	ds, err := IdentityDigest(identity{Account: "a", Region: "r"}, 0)
	require.NoError(t, err)
	dm, err := IdentityDigest(map[string]string{"region": "r", "account": "a"}, 0)
	require.NoError(t, err)

	assert.Equal(t, ds, dm)
}

func TestIdentityDigest_DiffersOnAnyField(t *testing.T) {
	base := map[string]any{"command": "version", "dry_run": false}

	baseDigest, err := IdentityDigest(base, DefaultDigestLength)
	require.NoError(t, err)

	changedCommand, err := IdentityDigest(map[string]any{"command": "upgrade", "dry_run": false}, DefaultDigestLength)
	require.NoError(t, err)
	changedFlag, err := IdentityDigest(map[string]any{"command": "version", "dry_run": true}, DefaultDigestLength)
	require.NoError(t, err)

	assert.NotEqual(t, baseDigest, changedCommand)
	assert.NotEqual(t, baseDigest, changedFlag)
}

func TestIdentityDigest_Length(t *testing.T) {
	identity := "fixed"

	full, err := IdentityDigest(identity, 0)
	require.NoError(t, err)
	assert.Len(t, full, 64) // full hex SHA-256

	short, err := IdentityDigest(identity, 6)
	require.NoError(t, err)
	assert.Len(t, short, 6)
	assert.Equal(t, full[:6], short)

	over, err := IdentityDigest(identity, 1000)
	require.NoError(t, err)
	assert.Equal(t, full, over)
}

func TestIdentityDigest_Unserializable(t *testing.T) {
	_, err := IdentityDigest(make(chan int), DefaultDigestLength)
	assert.Error(t, err)
}
