package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogValid(t *testing.T) {
	catalog, err := NewCatalog(DefaultGroups())
	require.NoError(t, err)

	var names []string
	for _, group := range catalog.Groups() {
		for _, rule := range group.Rules {
			names = append(names, rule.Build(nil).Name())
		}
	}
	assert.Len(t, names, 28)
	assert.Contains(t, names, ActionCreateFolder)
	assert.Contains(t, names, ActionExportPDF)
}

func TestNewCatalogRejectsCaptureMismatch(t *testing.T) {
	_, err := NewCatalog([]Group{{
		Category: CategoryExcel,
		Rules: []Rule{
			{Pattern: `buka\s+(\w+)`, Build: func(Captures) Action { return OpenExcel{} }},
		},
	}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 capture groups for 0 parameters")

	_, err = NewCatalog([]Group{{
		Category: CategoryFile,
		Rules: []Rule{
			{Pattern: `copy\s+'([^']+)'`, Build: func(c Captures) Action { return CopyFile{Source: c.At(0), Destination: c.At(1)} }},
		},
	}})
	require.Error(t, err)
}

func TestNewCatalogRejectsBadGroups(t *testing.T) {
	_, err := NewCatalog([]Group{
		{Category: "spreadsheet"},
		{Category: CategoryWord, Rules: []Rule{{Pattern: `(`, Build: func(Captures) Action { return OpenWord{} }}}},
		{Category: CategoryWord},
		{Category: CategoryFile, Rules: []Rule{{Pattern: `x`}}},
	})
	require.Error(t, err)
	msg := err.Error()
	assert.Contains(t, msg, "unknown category")
	assert.Contains(t, msg, "declared twice")
	assert.Contains(t, msg, "missing builder")
}

func TestMustCatalogPanics(t *testing.T) {
	assert.Panics(t, func() {
		MustCatalog([]Group{{Category: CategoryExcel, Rules: []Rule{{Pattern: `a(b)`, Build: func(Captures) Action { return InsertChart{} }}}}})
	})
}

func TestNonParticipatingGroupStaysNil(t *testing.T) {
	got := NewParser().Parse("hapus sheet")
	require.Equal(t, ActionDeleteSheet, got.ActionName())
	params := got.Parameters()
	value, present := params["name"]
	assert.True(t, present)
	assert.Nil(t, value)
	_, ok := ParamValue(got.Action, "name")
	assert.False(t, ok)
}

func TestCaptures(t *testing.T) {
	c := Captures{str("a"), nil, str("c")}
	assert.Equal(t, "a", *c.At(0))
	assert.Nil(t, c.At(1))
	assert.Nil(t, c.At(7))
	assert.Nil(t, c.At(-1))
	assert.Equal(t, 2, c.Count())
}
