// Package query turns request parameters into search, sort and pagination over gorm queries.
package query

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"

	dbutil "github.com/router-for-me/WhitelistAdmin/internal/db"
	"gorm.io/gorm"
)

// Params are the search, sort and paging inputs of a list request.
type Params struct {
	Search string
	Sort   string
	Desc   bool
	Page   int

	path   string     // Absolute URL of the list endpoint without query.
	values url.Values // Original query string, kept on page links.
}

// Column is a searchable and sortable field.
type Column struct {
	Name string // Logical name accepted from clients, e.g. "user.first_name".
	Expr string // Qualified SQL column.
	Join string // Join required to reach Expr, if any.
	Cast bool   // Cast to text before LIKE.
}

// FromRequest reads search, sort, direction and page from r.
func FromRequest(r *http.Request) Params {
	values := r.URL.Query()
	page, errPage := strconv.Atoi(strings.TrimSpace(values.Get("page")))
	if errPage != nil || page < 1 {
		page = 1
	}
	return Params{
		Search: strings.TrimSpace(values.Get("search")),
		Sort:   strings.TrimSpace(values.Get("sort")),
		Desc:   strings.EqualFold(strings.TrimSpace(values.Get("direction")), "desc"),
		Page:   page,
		path:   requestPath(r),
		values: values,
	}
}

func requestPath(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if forwarded := strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")); forwarded != "" {
		scheme = strings.ToLower(forwarded)
	}
	return scheme + "://" + r.Host + r.URL.Path
}

// Apply adds the joins and the search filter described by p to q.
func Apply(conn *gorm.DB, q *gorm.DB, p Params, columns []Column) *gorm.DB {
	joined := map[string]struct{}{}
	join := func(col Column) {
		if col.Join == "" {
			return
		}
		if _, ok := joined[col.Join]; ok {
			return
		}
		joined[col.Join] = struct{}{}
		q = q.Joins(col.Join)
	}

	if sortCol, ok := lookup(columns, p.Sort); ok {
		join(sortCol)
	}
	if p.Search == "" {
		return q
	}

	pattern := dbutil.NormalizeLikePattern(conn, "%"+dbutil.EscapeLike(p.Search)+"%")
	parts := make([]string, 0, len(columns))
	args := make([]any, 0, len(columns))
	for _, col := range columns {
		join(col)
		expr := col.Expr
		if col.Cast {
			expr = dbutil.TextCastExpr(expr)
		}
		parts = append(parts, dbutil.CaseInsensitiveLikeExpr(conn, expr))
		args = append(args, pattern)
	}
	return q.Where("("+strings.Join(parts, " OR ")+")", args...)
}

// OrderBy returns the ORDER BY expression for p, or fallback when the sort field is unknown.
func OrderBy(p Params, columns []Column, fallback string) string {
	col, ok := lookup(columns, p.Sort)
	if !ok {
		return fallback
	}
	if p.Desc {
		return col.Expr + " DESC"
	}
	return col.Expr + " ASC"
}

func lookup(columns []Column, name string) (Column, bool) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Column{}, false
	}
	for _, col := range columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}
