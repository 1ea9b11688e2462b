package gazetteer

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteDirReadDir(t *testing.T) {
	t.Parallel()
	dir := filepath.Join(t.TempDir(), "gaz")

	want := testGazetteer()
	require.NoError(t, WriteDir(dir, want))

	got, err := ReadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, want.Places(), got.Places())
	assert.Equal(t, want.Countries(), got.Countries())
}

func TestReadPlaces_Invalid(t *testing.T) {
	t.Parallel()

	_, err := ReadPlaces(strings.NewReader("Vienna\t\tAT\tEurope/Vienna\n"))
	require.ErrorIs(t, err, ErrInvalidRecord)
	assert.Contains(t, err.Error(), "line 1")

	_, err = ReadPlaces(strings.NewReader("# only a comment\n"))
	require.ErrorIs(t, err, ErrEmptyTable)
}

func TestReadDir_Missing(t *testing.T) {
	t.Parallel()

	_, err := ReadDir(t.TempDir())
	require.Error(t, err)
	assert.True(t, os.IsNotExist(errors.Cause(err)))
}
