// Package query translates raw issue-list request parameters into a SQL
// predicate. Parsing never fails: missing or invalid parameters degrade to
// "no constraint" rather than an error.
package query

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 20
)

type IssueFilter struct {
	Neighborhood string
	Category     string
	Status       string
	Query        string
	ProjectID    string
	Unlinked     bool
	Page         int
	PageSize     int
}

// ParseIssueFilter builds a filter from query-string values. Empty parameters
// add no constraint. Page and pageSize fall back to their defaults when
// missing, non-numeric, or non-positive. pageSize is deliberately unbounded.
func ParseIssueFilter(values url.Values) IssueFilter {
	f := IssueFilter{
		Neighborhood: strings.TrimSpace(values.Get("neighborhood")),
		Category:     strings.TrimSpace(values.Get("category")),
		Status:       strings.TrimSpace(values.Get("status")),
		Query:        strings.TrimSpace(values.Get("query")),
		ProjectID:    strings.TrimSpace(values.Get("projectId")),
		Unlinked:     values.Get("unlinked") == "true",
		Page:         DefaultPage,
		PageSize:     DefaultPageSize,
	}

	if p, err := strconv.Atoi(values.Get("page")); err == nil && p > 0 {
		f.Page = p
	}
	if ps, err := strconv.Atoi(values.Get("pageSize")); err == nil && ps > 0 {
		f.PageSize = ps
	}

	return f
}

// Where renders the filter as a SQL predicate with positional args starting
// at $1. Returns an empty clause when nothing is constrained.
//
// projectId and unlinked are mutually exclusive view selectors: when both are
// supplied, projectId wins and unlinked is ignored.
func (f IssueFilter) Where() (string, []any) {
	var clauses []string
	var args []any

	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Neighborhood != "" {
		clauses = append(clauses, "neighborhood = "+next(f.Neighborhood))
	}
	if f.Category != "" {
		clauses = append(clauses, "category = "+next(f.Category))
	}
	if f.Status != "" {
		clauses = append(clauses, "status = "+next(f.Status))
	}

	if f.Query != "" {
		p := next("%" + escapeLike(f.Query) + "%")
		clauses = append(clauses, fmt.Sprintf(
			"(issue_text ILIKE %[1]s OR neighborhood ILIKE %[1]s OR category ILIKE %[1]s OR reported_by ILIKE %[1]s)", p))
	}

	switch {
	case f.ProjectID != "":
		clauses = append(clauses, "project_id = "+next(f.ProjectID))
	case f.Unlinked:
		clauses = append(clauses, "(project_id IS NULL OR project_id = '')")
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(clauses, " AND "), args
}

// Offset is pageSize*(page-1), the starting row for LIMIT/OFFSET paging.
func (f IssueFilter) Offset() int {
	return f.PageSize * (f.Page - 1)
}

// escapeLike makes a user-supplied substring safe inside an ILIKE pattern so
// it matches literally: "a.b" matches "a.b" only, "100%" matches "100%".
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
