package query

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseIssueFilter_Defaults(t *testing.T) {
	f := ParseIssueFilter(url.Values{})

	require.Equal(t, 1, f.Page)
	require.Equal(t, 20, f.PageSize)
	require.Empty(t, f.Neighborhood)
	require.Empty(t, f.Category)
	require.Empty(t, f.Status)
	require.Empty(t, f.Query)
	require.Empty(t, f.ProjectID)
	require.False(t, f.Unlinked)
}

func TestParseIssueFilter_InvalidPagingFallsBack(t *testing.T) {
	cases := []url.Values{
		{"page": {"0"}, "pageSize": {"0"}},
		{"page": {"-3"}, "pageSize": {"-1"}},
		{"page": {"abc"}, "pageSize": {"xyz"}},
		{"page": {""}, "pageSize": {""}},
	}

	for _, values := range cases {
		f := ParseIssueFilter(values)
		require.Equal(t, 1, f.Page)
		require.Equal(t, 20, f.PageSize)
	}
}

func TestParseIssueFilter_PageSizeUnbounded(t *testing.T) {
	f := ParseIssueFilter(url.Values{"page": {"3"}, "pageSize": {"1000"}})

	require.Equal(t, 3, f.Page)
	require.Equal(t, 1000, f.PageSize)
	require.Equal(t, 2000, f.Offset())
}

func TestWhere_NoConstraints(t *testing.T) {
	where, args := IssueFilter{}.Where()

	require.Empty(t, where)
	require.Empty(t, args)
}

func TestWhere_ExactMatchOnlyForPresentParams(t *testing.T) {
	where, args := IssueFilter{Neighborhood: "Dorchester", Status: "open"}.Where()

	require.Contains(t, where, "neighborhood = $1")
	require.Contains(t, where, "status = $2")
	require.NotContains(t, where, "category")
	require.Equal(t, []any{"Dorchester", "open"}, args)
}

// Adding a parameter may only add clauses, never relax the ones already
// there: the result set can only shrink as filters pile up.
func TestWhere_MonotonicNarrowing(t *testing.T) {
	base := IssueFilter{}
	narrower := []IssueFilter{
		{Neighborhood: "Roxbury"},
		{Neighborhood: "Roxbury", Category: "bike"},
		{Neighborhood: "Roxbury", Category: "bike", Status: "open"},
		{Neighborhood: "Roxbury", Category: "bike", Status: "open", Query: "pothole"},
	}

	prevClauses := 0
	prevWhere, _ := base.Where()
	for _, f := range narrower {
		where, args := f.Where()
		clauses := strings.Count(where, " AND ") + 1
		require.Greater(t, clauses, prevClauses)
		require.Greater(t, len(args), 0)
		if prevWhere != "" {
			// every earlier clause survives verbatim up to arg renumbering
			require.Contains(t, where, "neighborhood = $1")
		}
		prevClauses = clauses
		prevWhere = where
	}
}

func TestWhere_FreeTextSearchSpansFourFields(t *testing.T) {
	where, args := IssueFilter{Query: "Pothole"}.Where()

	require.Contains(t, where, "issue_text ILIKE $1")
	require.Contains(t, where, "neighborhood ILIKE $1")
	require.Contains(t, where, "category ILIKE $1")
	require.Contains(t, where, "reported_by ILIKE $1")
	require.Contains(t, where, " OR ")
	require.Equal(t, []any{"%Pothole%"}, args)
}

func TestWhere_FreeTextSearchEscapesWildcards(t *testing.T) {
	cases := map[string]string{
		"a.b":        `%a.b%`,
		"100%":       `%100\%%`,
		"snake_oil":  `%snake\_oil%`,
		`back\slash`: `%back\\slash%`,
	}

	for input, pattern := range cases {
		_, args := IssueFilter{Query: input}.Where()
		require.Equal(t, []any{pattern}, args, "input %q", input)
	}
}

func TestWhere_ProjectIDTakesPriorityOverUnlinked(t *testing.T) {
	where, args := IssueFilter{ProjectID: "P1", Unlinked: true}.Where()

	require.Contains(t, where, "project_id = $1")
	require.NotContains(t, where, "IS NULL")
	require.Equal(t, []any{"P1"}, args)
}

func TestWhere_UnlinkedMatchesNullAndEmpty(t *testing.T) {
	where, args := IssueFilter{Unlinked: true}.Where()

	require.Contains(t, where, "project_id IS NULL")
	require.Contains(t, where, "project_id = ''")
	require.Empty(t, args)
}

// Successive pages tile the sorted set exactly: no row index is skipped or
// served twice, so concatenating pages 1..N reproduces the whole set.
func TestOffset_PagesTileWithoutGapsOrOverlap(t *testing.T) {
	const pageSize = 7

	covered := map[int]bool{}
	for page := 1; page <= 5; page++ {
		f := IssueFilter{Page: page, PageSize: pageSize}
		start := f.Offset()
		require.Equal(t, (page-1)*pageSize, start)
		for i := start; i < start+pageSize; i++ {
			require.False(t, covered[i], "row index %d served twice", i)
			covered[i] = true
		}
	}
	require.Len(t, covered, 5*pageSize)
}

func TestOffset(t *testing.T) {
	require.Equal(t, 0, IssueFilter{Page: 1, PageSize: 20}.Offset())
	require.Equal(t, 20, IssueFilter{Page: 2, PageSize: 20}.Offset())
	require.Equal(t, 90, IssueFilter{Page: 10, PageSize: 10}.Offset())
}
