// Package pagination implements the page/size/sort query interface and the
// page envelope returned by list endpoints.
package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultSize = 10
	MaxSize     = 100
)

// Request describes one requested page. Sort holds the API field name, not a
// database column; repositories translate it through a whitelist.
type Request struct {
	Page int
	Size int
	Sort string
	Desc bool
}

// Default returns the first page sorted by creation time, newest first.
func Default() Request {
	return Request{Page: 0, Size: DefaultSize, Sort: "createdAt", Desc: true}
}

// Parse reads page, size and sort from query parameters, clamping size to
// [1, MaxSize] and page to >= 0. Sort accepts "field" or "field,asc|desc".
func Parse(q url.Values) Request {
	r := Default()

	if v := q.Get("page"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			r.Page = n
		}
	}
	if v := q.Get("size"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			if n > MaxSize {
				n = MaxSize
			}
			r.Size = n
		}
	}
	if v := q.Get("sort"); v != "" {
		field, dir, _ := strings.Cut(v, ",")
		if field != "" {
			r.Sort = field
			r.Desc = !strings.EqualFold(dir, "asc")
		}
	}
	return r
}

// Offset returns the row offset for the page.
func (r Request) Offset() int {
	return r.Page * r.Size
}

// OrderBy translates the sort field through the given whitelist and returns
// an ORDER BY expression. Unknown fields fall back to fallback (a column
// name, assumed whitelisted).
func (r Request) OrderBy(columns map[string]string, fallback string) string {
	col, ok := columns[r.Sort]
	if !ok {
		col = fallback
	}
	dir := "ASC"
	if r.Desc {
		dir = "DESC"
	}
	return col + " " + dir
}

// Page is the response envelope for a single page of results.
type Page[T any] struct {
	Content       []T   `json:"content"`
	Page          int   `json:"page"`
	Size          int   `json:"size"`
	TotalElements int64 `json:"totalElements"`
	TotalPages    int   `json:"totalPages"`
}

// NewPage wraps content in an envelope for the given request and total count.
func NewPage[T any](content []T, req Request, total int64) *Page[T] {
	if content == nil {
		content = []T{}
	}
	pages := 0
	if req.Size > 0 {
		pages = int((total + int64(req.Size) - 1) / int64(req.Size))
	}
	return &Page[T]{
		Content:       content,
		Page:          req.Page,
		Size:          req.Size,
		TotalElements: total,
		TotalPages:    pages,
	}
}

// Map converts a page's content while preserving the envelope.
func Map[T, U any](p *Page[T], fn func(T) U) *Page[U] {
	out := make([]U, len(p.Content))
	for i, v := range p.Content {
		out[i] = fn(v)
	}
	return &Page[U]{
		Content:       out,
		Page:          p.Page,
		Size:          p.Size,
		TotalElements: p.TotalElements,
		TotalPages:    p.TotalPages,
	}
}
