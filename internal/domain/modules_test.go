package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseModule(t *testing.T) {
	for _, m := range Modules {
		got, err := ParseModule(string(m))
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	_, err := ParseModule("payments")
	assert.Error(t, err)
	_, err = ParseModule("Registrations")
	assert.Error(t, err, "names are case sensitive")
}

func TestParsePermissionType(t *testing.T) {
	for _, p := range PermissionTypes {
		got, err := ParsePermissionType(string(p))
		require.NoError(t, err)
		assert.Equal(t, p, got)
	}
	_, err := ParsePermissionType("manage")
	assert.Error(t, err)
}
