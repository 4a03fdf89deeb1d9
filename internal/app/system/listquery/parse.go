// Package listquery turns a list endpoint's query string into a filtered,
// sorted, projected and paginated aggregation against one collection.
//
// Reserved keys are select, sort, page and limit. Every other key is a
// filter: "field=value" for equality and "field[op]=value" for
// op in gt, gte, lt, lte, in.
package listquery

import (
	"net/url"
	"sort"
	"strings"

	"github.com/purplesmurf1998/crm-api/internal/app/system/apperr"
	"github.com/purplesmurf1998/crm-api/internal/app/system/paging"
)

// Op is a comparison operator in a filter condition.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

var bracketOps = map[string]Op{
	"gt":  OpGt,
	"gte": OpGte,
	"lt":  OpLt,
	"lte": OpLte,
	"in":  OpIn,
}

var reserved = map[string]bool{
	"select": true,
	"sort":   true,
	"page":   true,
	"limit":  true,
}

// Condition is one parsed filter term. Values holds the raw strings from the
// query; they are cast to the field's kind when the filter is built.
type Condition struct {
	Field  string
	Op     Op
	Values []string
}

// Query is a parsed list request.
type Query struct {
	Conditions []Condition
	Select     []string
	Sort       []string
	Page       int
	Limit      int
}

// Parse reads a list request from v. Page and limit fall back to their
// defaults silently; a malformed filter key is a bad request.
func Parse(v url.Values) (Query, error) {
	q := Query{
		Page:  paging.ParsePositive(v.Get("page"), paging.DefaultPage),
		Limit: paging.ParsePositive(v.Get("limit"), paging.DefaultLimit),
	}
	if s, ok := v["select"]; ok {
		q.Select = splitList(s)
	}
	if s, ok := v["sort"]; ok {
		q.Sort = splitList(s)
	}

	// Map iteration order is random; keep conditions stable for callers and tests.
	keys := make([]string, 0, len(v))
	for k := range v {
		if !reserved[k] {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	for _, k := range keys {
		field, op, err := parseKey(k)
		if err != nil {
			return Query{}, err
		}
		vals := v[k]
		if op == OpIn {
			vals = splitCSV(vals)
		}
		q.Conditions = append(q.Conditions, Condition{Field: field, Op: op, Values: vals})
	}
	return q, nil
}

// parseKey splits "a[b][gt]" into the path "a.b" and OpGt. A trailing
// bracket that is not an operator is treated as a path segment. Dotted
// bases such as "a.b" pass through as paths.
func parseKey(key string) (string, Op, error) {
	base, rest, hasBrackets := strings.Cut(key, "[")
	if base == "" {
		return "", "", badKey(key)
	}
	segments := []string{base}
	if hasBrackets {
		rest = "[" + rest
		for rest != "" {
			if rest[0] != '[' {
				return "", "", badKey(key)
			}
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return "", "", badKey(key)
			}
			seg := rest[1:end]
			if strings.ContainsAny(seg, "[") {
				return "", "", badKey(key)
			}
			if seg != "" {
				segments = append(segments, seg)
			}
			rest = rest[end+1:]
		}
	}

	op := OpEq
	if len(segments) > 1 {
		if o, ok := bracketOps[segments[len(segments)-1]]; ok {
			op = o
			segments = segments[:len(segments)-1]
		}
	}
	for _, s := range segments {
		if strings.Contains(s, "]") {
			return "", "", badKey(key)
		}
		for _, part := range strings.Split(s, ".") {
			if part == "" || strings.HasPrefix(part, "$") {
				return "", "", badKey(key)
			}
		}
	}
	return strings.Join(segments, "."), op, nil
}

func badKey(key string) error {
	return apperr.BadRequest("Invalid query parameter: %s", key)
}

// splitList normalizes "a,b c" style lists.
func splitList(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, f := range strings.FieldsFunc(v, func(r rune) bool { return r == ',' || r == ' ' }) {
			out = append(out, f)
		}
	}
	return out
}

func splitCSV(vals []string) []string {
	var out []string
	for _, v := range vals {
		for _, p := range strings.Split(v, ",") {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
