package pdfa_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonaboe98/zugferd-api/internal/model"
	"github.com/jonaboe98/zugferd-api/internal/pdfa"
)

func TestLoadColorProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sRGB.icc")
	require.NoError(t, os.WriteFile(path, []byte("icc-profile-data"), 0o644))

	profile, err := pdfa.LoadColorProfile(path)
	require.NoError(t, err)
	assert.Equal(t, pdfa.DefaultProfileName, profile.Name)
	assert.Equal(t, []byte("icc-profile-data"), profile.Data)
}

func TestLoadColorProfile_Missing(t *testing.T) {
	_, err := pdfa.LoadColorProfile(filepath.Join(t.TempDir(), "nope.icc"))

	var merr *model.MissingResourceError
	require.ErrorAs(t, err, &merr)
	assert.Contains(t, merr.Path, "nope.icc")
}

func TestLoadColorProfile_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.icc")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	var merr *model.MissingResourceError
	_, err := pdfa.LoadColorProfile(path)
	require.ErrorAs(t, err, &merr)
}
