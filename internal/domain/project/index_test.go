package project_test

import (
	"testing"

	"github.com/rpggio/statusboard/internal/domain/project"
	"github.com/rpggio/statusboard/internal/slug"
	"github.com/stretchr/testify/require"
)

func indexFixture() map[string]*project.Record {
	return map[string]*project.Record{
		"at-home-diy-project-statistics-status": {
			ID:      "at-home-diy-project-statistics-status",
			Title:   "At Home DIY Project Statistics & Status",
			Aliases: []string{"DIYapp"},
		},
		"business-local-ai": {
			ID:      "business-local-ai",
			Title:   "Business Local AI",
			Aliases: []string{"BusinessLoclAi", "bla"},
		},
		"untitled": {ID: "untitled"},
	}
}

func TestIndexResolve_Order(t *testing.T) {
	idx := project.BuildIndex(indexFixture(), nil)

	cases := []struct {
		query string
		want  string
		ok    bool
	}{
		{"business-local-ai", "business-local-ai", true},
		{"bla", "business-local-ai", true},
		{"Business Local AI", "business-local-ai", true},
		{"  BUSINESS local ai ", "business-local-ai", true},
		{"DIYapp", "at-home-diy-project-statistics-status", true},
		{"diyapp", "", false},
		{"untitled", "", false},
		{"", "", false},
		{"nothing-like-this", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.query, func(t *testing.T) {
			id, ok := idx.Resolve(tc.query)
			require.Equal(t, tc.ok, ok)
			require.Equal(t, tc.want, id)
		})
	}
}

func TestIndexResolve_ExactStepsAreCaseSensitive(t *testing.T) {
	idx := project.BuildIndex(indexFixture(), nil)

	_, ok := idx.Title("business local ai")
	require.False(t, ok)
	_, ok = idx.Alias("BLA")
	require.False(t, ok)
	require.False(t, idx.HasID("Business-Local-AI"))

	// Recovered only through the slug step.
	id, ok := idx.Resolve("Business-Local-AI")
	require.True(t, ok)
	require.Equal(t, "business-local-ai", id)
}

func TestIndexResolve_IDAndSlugRoundTrip(t *testing.T) {
	records := indexFixture()
	idx := project.BuildIndex(records, nil)

	for _, id := range idx.IDs() {
		got, ok := idx.Resolve(id)
		require.True(t, ok)
		require.Equal(t, id, got)

		got, ok = idx.Resolve(slug.Make(id))
		require.True(t, ok)
		require.Equal(t, id, got)
	}
}

func TestBuildIndex_CommonAliasesNeverDangle(t *testing.T) {
	idx := project.BuildIndex(indexFixture(), project.DefaultCommonAliases())

	id, ok := idx.Alias("diyapp")
	require.True(t, ok)
	require.Equal(t, "at-home-diy-project-statistics-status", id)

	_, ok = idx.Alias("businesslocalai")
	require.False(t, ok)

	ids, titles, aliases := idx.Sizes()
	require.Equal(t, 2, ids)
	require.Equal(t, 2, titles)
	require.Equal(t, 4, aliases)
}

func TestBuildIndex_DoesNotMutateRecords(t *testing.T) {
	records := indexFixture()
	before := records["business-local-ai"].Clone()
	project.BuildIndex(records, project.DefaultCommonAliases())
	require.Equal(t, before, records["business-local-ai"].Clone())
}

func TestIndex_NilIsEmpty(t *testing.T) {
	var idx *project.Index
	_, ok := idx.Resolve("x")
	require.False(t, ok)
	require.Empty(t, idx.IDs())
}
