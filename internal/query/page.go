package query

import (
	"fmt"
	"net/url"
	"strconv"

	"gorm.io/gorm"
)

// Page is a length-aware page of rows with navigation links.
type Page[T any] struct {
	CurrentPage  int     `json:"current_page"`
	Data         []T     `json:"data"`
	FirstPageURL string  `json:"first_page_url"`
	From         *int    `json:"from"`
	LastPage     int     `json:"last_page"`
	LastPageURL  string  `json:"last_page_url"`
	NextPageURL  *string `json:"next_page_url"`
	Path         string  `json:"path"`
	PerPage      int     `json:"per_page"`
	PrevPageURL  *string `json:"prev_page_url"`
	To           *int    `json:"to"`
	Total        int64   `json:"total"`
}

// Paginate counts q, loads page p.Page ordered by order and builds links that keep the query string.
// scopes apply to the row query only, e.g. preloads.
func Paginate[T any](q *gorm.DB, p Params, order string, perPage int, scopes ...func(*gorm.DB) *gorm.DB) (Page[T], error) {
	if perPage <= 0 {
		perPage = 10
	}
	base := q.Session(&gorm.Session{})

	var total int64
	if errCount := base.Count(&total).Error; errCount != nil {
		return Page[T]{}, fmt.Errorf("query: count: %w", errCount)
	}

	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}
	// Pages past the end are all empty; capping keeps the offset from overflowing.
	if p.Page > lastPage+1 {
		p.Page = lastPage + 1
	}

	rows := make([]T, 0, perPage)
	offset := (p.Page - 1) * perPage
	find := base.Scopes(scopes...)
	if order != "" {
		find = find.Order(order)
	}
	if errFind := find.Offset(offset).Limit(perPage).Find(&rows).Error; errFind != nil {
		return Page[T]{}, fmt.Errorf("query: find: %w", errFind)
	}

	page := Page[T]{
		CurrentPage:  p.Page,
		Data:         rows,
		FirstPageURL: p.pageURL(1),
		LastPage:     lastPage,
		LastPageURL:  p.pageURL(lastPage),
		Path:         p.path,
		PerPage:      perPage,
		Total:        total,
	}
	if len(rows) > 0 {
		from := offset + 1
		to := offset + len(rows)
		page.From = &from
		page.To = &to
	}
	if p.Page > 1 {
		prev := p.pageURL(p.Page - 1)
		page.PrevPageURL = &prev
	}
	if p.Page < lastPage {
		next := p.pageURL(p.Page + 1)
		page.NextPageURL = &next
	}
	return page, nil
}

// pageURL returns the list URL for page n with the rest of the query string intact.
func (p Params) pageURL(n int) string {
	values := url.Values{}
	for key, vals := range p.values {
		values[key] = append([]string(nil), vals...)
	}
	values.Set("page", strconv.Itoa(n))
	return p.path + "?" + values.Encode()
}
