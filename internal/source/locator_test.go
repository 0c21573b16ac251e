package source

import (
	"errors"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vvka-141/xmlload/pkg/xmlload"
)

var votesDef = xmlload.TableDefinition{
	Name:   "votes",
	Source: "Votes.xml",
	Columns: []xmlload.ColumnSpec{
		{Name: "Id", Type: xmlload.ColumnInteger, PrimaryKey: true},
	},
}

func TestLocator_PrefersPlainFile(t *testing.T) {
	fsys := fstest.MapFS{
		"Votes.xml":    {Data: []byte("<votes/>")},
		"Votes.xml.gz": {Data: []byte("ignored")},
	}

	name, err := NewLocator(fsys, nil).Resolve(votesDef)
	require.NoError(t, err)
	assert.Equal(t, "Votes.xml", name)
}

func TestLocator_FallsBackToCompressed(t *testing.T) {
	fsys := fstest.MapFS{
		"Votes.xml.zst": {Data: []byte("x")},
		"Votes.xml.xz":  {Data: []byte("x")},
	}

	name, err := NewLocator(fsys, nil).Resolve(votesDef)
	require.NoError(t, err)
	assert.Equal(t, "Votes.xml.zst", name)
}

func TestLocator_NotFound(t *testing.T) {
	_, err := NewLocator(fstest.MapFS{}, nil).Resolve(votesDef)
	require.Error(t, err)
	assert.True(t, errors.Is(err, xmlload.ErrSourceNotFound))
}

func TestLocator_Override(t *testing.T) {
	fsys := fstest.MapFS{
		"2024/Votes-part.xml": {Data: []byte("<votes/>")},
	}
	loc := NewLocator(fsys, map[string]string{"votes": "2024/Votes-part.xml"})

	name, err := loc.Resolve(votesDef)
	require.NoError(t, err)
	assert.Equal(t, "2024/Votes-part.xml", name)
}

func TestLocator_OverrideKeyIgnoresCase(t *testing.T) {
	fsys := fstest.MapFS{
		"Votes.xml":              {Data: []byte("<votes/>")},
		"archive/Votes-2024.xml": {Data: []byte("<votes/>")},
	}
	loc := NewLocator(fsys, map[string]string{"Votes": "archive/Votes-2024.xml"})

	name, err := loc.Resolve(votesDef)
	require.NoError(t, err)
	assert.Equal(t, "archive/Votes-2024.xml", name)
}

func TestLocator_OverrideMissing(t *testing.T) {
	loc := NewLocator(fstest.MapFS{}, map[string]string{"votes": "missing.xml"})
	_, err := loc.Resolve(votesDef)
	assert.True(t, errors.Is(err, xmlload.ErrSourceNotFound))
}

func TestLocator_OverrideMustBeRelative(t *testing.T) {
	loc := NewLocator(fstest.MapFS{}, map[string]string{"votes": "../outside.xml"})
	_, err := loc.Resolve(votesDef)
	assert.True(t, errors.Is(err, xmlload.ErrInvalidConfig))
}

func TestLocator_OpenYieldsRecords(t *testing.T) {
	fsys := fstest.MapFS{
		"Votes.xml": {Data: []byte(`<votes><row Id="1"/><row Id="2"/></votes>`)},
	}

	src, closer, err := NewLocator(fsys, nil).Open(votesDef)
	require.NoError(t, err)
	defer closer.Close()

	records, err := drain(t, src)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}
