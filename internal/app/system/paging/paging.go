// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/query"
)

// PageSize is the default number of rows returned by paged admin lists.
const PageSize = 50

// Page describes one offset-paged window.
type Page struct {
	Number int // 1-based
	Size   int
}

// Parse extracts the 1-based "page" query parameter. Missing, invalid, or
// non-positive values mean page 1.
func Parse(r *http.Request, size int) Page {
	if size <= 0 {
		size = PageSize
	}
	p := Page{Number: 1, Size: size}
	if n, err := strconv.Atoi(query.Get(r, "page")); err == nil && n > 0 {
		p.Number = n
	}
	return p
}

// Offset is the number of rows before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages returns how many pages total rows span. An empty result is
// still one page.
func (p Page) TotalPages(total int) int {
	if total <= 0 || p.Size <= 0 {
		return 1
	}
	return (total + p.Size - 1) / p.Size
}
