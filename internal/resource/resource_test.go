package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScopeMatches(t *testing.T) {
	cases := []struct {
		scope   Scope
		prov    Provenance
		matches bool
	}{
		{ScopeAll, Default, true},
		{ScopeAll, Custom, true},
		{ScopeDefault, Default, true},
		{ScopeDefault, Custom, false},
		{ScopeCustom, Custom, true},
		{ScopeCustom, Default, false},
		{Scope("bogus"), Default, false},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.matches, tc.scope.Matches(tc.prov), "%s vs %s", tc.scope, tc.prov)
	}
}

func TestSpecValidation(t *testing.T) {
	valid := []Spec{
		EntitySpec{ID: "e"},
		PrimitiveSpec{ID: "p", Type: "polyline"},
		LayerSpec{ID: "l", URL: "https://tiles"},
		OverlaySpec{ID: "o", Source: "o.geojson"},
	}
	for _, spec := range valid {
		assert.NoError(t, spec.Validate(), "kind %s", spec.Kind())
	}

	invalid := []Spec{
		EntitySpec{},
		PrimitiveSpec{ID: "p"},
		PrimitiveSpec{Type: "polyline"},
		LayerSpec{ID: "l"},
		LayerSpec{URL: "https://tiles"},
		OverlaySpec{ID: "o"},
		OverlaySpec{Source: "o.geojson"},
	}
	for _, spec := range invalid {
		require.ErrorIs(t, spec.Validate(), ErrInvalidSpec, "kind %s", spec.Kind())
	}
}

func TestKindsCoverEveryIdentitySpace(t *testing.T) {
	kinds := Kinds()
	require.Len(t, kinds, 4)

	seen := map[Kind]struct{}{}
	for _, k := range kinds {
		seen[k] = struct{}{}
	}
	assert.Len(t, seen, 4)
}
