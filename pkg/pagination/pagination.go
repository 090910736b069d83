package pagination

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"
)

const (
	DefaultLimit = 12
	MaxLimit     = 60
	// MaxOffset bounds the rows a page may skip.
	MaxOffset = math.MaxInt32
)

// Params holds pagination parameters extracted from a request.
type Params struct {
	Page  int
	Limit int
}

// FromContext reads ?page= and ?limit= from the echo context. Pages are
// 1-based.
func FromContext(c echo.Context) Params {
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	if maxPage := MaxOffset/limit + 1; page > maxPage {
		page = maxPage
	}

	return Params{Page: page, Limit: limit}
}

// Offset returns the number of rows to skip.
func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

// HasNext returns true if there are more results after the current page.
func (p Params) HasNext(total int) bool {
	return p.Offset()+p.Limit < total
}

// HasPrevious returns true if there are results before the current page.
func (p Params) HasPrevious() bool {
	return p.Page > 1
}

// Page is one page of items plus what a template needs to link its neighbours.
type Page[T any] struct {
	Items    []T
	Total    int
	Number   int
	Limit    int
	Pages    int
	Next     int
	Previous int
}

func NewPage[T any](items []T, total int, p Params) *Page[T] {
	pages := (total + p.Limit - 1) / p.Limit
	if pages == 0 {
		pages = 1
	}
	out := &Page[T]{
		Items:  items,
		Total:  total,
		Number: p.Page,
		Limit:  p.Limit,
		Pages:  pages,
	}
	if p.HasNext(total) {
		out.Next = p.Page + 1
	}
	if p.HasPrevious() {
		out.Previous = p.Page - 1
	}
	return out
}
