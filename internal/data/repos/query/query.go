// Package query implements the filter/select/sort/paginate grammar shared by every list
// endpoint.
//
//	?average_cost[lte]=10000&careers[in]=Business&select=name,description&sort=-name&page=2&limit=10
//
// Only whitelisted fields are accepted; anything else is a validation error.
package query

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPage  = 1
	DefaultLimit = 25
	MaxLimit     = 100
	DefaultSort  = "-created_at"
)

type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
	OpIn  Op = "in"
)

// ErrInvalid wraps every syntax or whitelist failure so callers can answer 400.
var ErrInvalid = errors.New("invalid query")

func invalidf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalid, fmt.Sprintf(format, args...))
}

var reserved = map[string]bool{"select": true, "sort": true, "page": true, "limit": true}

var fieldExpr = regexp.MustCompile(`^([a-z_]+)(?:\[(gt|gte|lt|lte|in)\])?$`)

type Kind int

const (
	KindString Kind = iota
	KindNumber
	KindBool
	KindTime
	// KindJSONList is a JSON array of strings; eq/in match membership.
	KindJSONList
)

type Column struct {
	Name string
	Kind Kind
}

// Columns maps public field names to database columns.
type Columns map[string]Column

type Filter struct {
	Field  string
	Op     Op
	Values []string
}

type ListQuery struct {
	Select  []string
	Sort    []string
	Page    int
	Limit   int
	Filters []Filter
}

type PageRef struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type Pagination struct {
	Next *PageRef `json:"next,omitempty"`
	Prev *PageRef `json:"prev,omitempty"`
}

// Parse reads a ListQuery from URL parameters. It only checks syntax; column
// whitelisting happens in Apply.
func Parse(values url.Values) (ListQuery, error) {
	q := ListQuery{Page: DefaultPage, Limit: DefaultLimit}
	if raw := strings.TrimSpace(values.Get("select")); raw != "" {
		q.Select = splitList(raw)
	}
	if raw := strings.TrimSpace(values.Get("sort")); raw != "" {
		q.Sort = splitList(raw)
	}
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, invalidf("invalid page %q", raw)
		}
		q.Page = n
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return q, invalidf("invalid limit %q", raw)
		}
		q.Limit = min(n, MaxLimit)
	}
	for key, vals := range values {
		if reserved[key] || len(vals) == 0 {
			continue
		}
		m := fieldExpr.FindStringSubmatch(key)
		if m == nil {
			return q, invalidf("invalid filter %q", key)
		}
		op := OpEq
		if m[2] != "" {
			op = Op(m[2])
		}
		f := Filter{Field: m[1], Op: op}
		for _, v := range vals {
			if op == OpIn {
				f.Values = append(f.Values, splitList(v)...)
			} else {
				f.Values = append(f.Values, strings.TrimSpace(v))
			}
		}
		q.Filters = append(q.Filters, f)
	}
	return q, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func (q ListQuery) Offset() int {
	page := q.Page
	if page < 1 {
		page = DefaultPage
	}
	return (page - 1) * q.limit()
}

func (q ListQuery) limit() int {
	if q.Limit < 1 {
		return DefaultLimit
	}
	return q.Limit
}

// Where applies only the filters. Use it for the count query.
func (q ListQuery) Where(db *gorm.DB, cols Columns) (*gorm.DB, error) {
	for _, f := range q.Filters {
		col, ok := cols[f.Field]
		if !ok {
			return nil, invalidf("unknown filter field %q", f.Field)
		}
		if len(f.Values) == 0 {
			continue
		}
		expr, err := filterExpr(col, f)
		if err != nil {
			return nil, err
		}
		db = db.Where(expr)
	}
	return db, nil
}

// Apply adds filters, projection, ordering and the page window.
func (q ListQuery) Apply(db *gorm.DB, cols Columns) (*gorm.DB, error) {
	db, err := q.Where(db, cols)
	if err != nil {
		return nil, err
	}
	if len(q.Select) > 0 {
		selected := []string{"id"}
		for _, field := range q.Select {
			col, ok := cols[field]
			if !ok {
				return nil, invalidf("unknown select field %q", field)
			}
			if col.Name != "id" {
				selected = append(selected, col.Name)
			}
		}
		db = db.Select(selected)
	}
	sorts := q.Sort
	if len(sorts) == 0 {
		sorts = []string{DefaultSort}
	}
	for _, s := range sorts {
		desc := strings.HasPrefix(s, "-")
		field := strings.TrimPrefix(s, "-")
		col, ok := cols[field]
		if !ok {
			return nil, invalidf("unknown sort field %q", field)
		}
		db = db.Order(clause.OrderByColumn{Column: clause.Column{Name: col.Name}, Desc: desc})
	}
	return db.Offset(q.Offset()).Limit(q.limit()), nil
}

// Paginate reports the neighbouring pages for a result window over total rows.
func (q ListQuery) Paginate(total int64) Pagination {
	var p Pagination
	limit := q.limit()
	start := q.Offset()
	if int64(start+limit) < total {
		p.Next = &PageRef{Page: q.Offset()/limit + 2, Limit: limit}
	}
	if start > 0 {
		p.Prev = &PageRef{Page: q.Offset() / limit, Limit: limit}
	}
	return p
}

func filterExpr(col Column, f Filter) (clause.Expression, error) {
	c := clause.Column{Name: col.Name}
	if col.Kind == KindJSONList {
		if f.Op != OpEq && f.Op != OpIn {
			return nil, invalidf("operator %s not supported on %q", f.Op, f.Field)
		}
		var or []clause.Expression
		for _, v := range f.Values {
			or = append(or, clause.Expr{SQL: "CAST(? AS TEXT) LIKE ?", Vars: []interface{}{c, `%"` + v + `"%`}})
		}
		return clause.Or(or...), nil
	}

	vals := make([]interface{}, 0, len(f.Values))
	for _, raw := range f.Values {
		v, err := coerce(col.Kind, raw)
		if err != nil {
			return nil, invalidf("field %q: %v", f.Field, err)
		}
		vals = append(vals, v)
	}
	switch f.Op {
	case OpIn:
		return clause.IN{Column: c, Values: vals}, nil
	case OpGt:
		return clause.Gt{Column: c, Value: vals[0]}, nil
	case OpGte:
		return clause.Gte{Column: c, Value: vals[0]}, nil
	case OpLt:
		return clause.Lt{Column: c, Value: vals[0]}, nil
	case OpLte:
		return clause.Lte{Column: c, Value: vals[0]}, nil
	default:
		return clause.Eq{Column: c, Value: vals[0]}, nil
	}
}

func coerce(kind Kind, raw string) (interface{}, error) {
	switch kind {
	case KindNumber:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q", raw)
		}
		return f, nil
	case KindBool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid boolean %q", raw)
		}
		return b, nil
	default:
		return raw, nil
	}
}
