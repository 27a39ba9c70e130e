// Package pagination slices ordered sequences into fixed-size pages.
//
// Page requests are deliberately lenient: a missing or malformed page
// parameter means page 1, and out-of-range numbers clamp to the nearest
// valid page instead of failing. Strictness here would turn stale
// pagination links into 404s.
package pagination

import "strconv"

// Page describes one slice of an ordered sequence.
type Page struct {
	Number     int
	Size       int
	TotalItems int64
	TotalPages int
}

// ParsePage maps the raw "page" query parameter to a requested page
// number. Absent or non-numeric input means page 1.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Paginate computes the page metadata for a sequence of total items with
// the given page size. requested clamps into [1, TotalPages]. An empty
// sequence still yields a single empty page.
func Paginate(total int64, size, requested int) Page {
	if size < 1 {
		size = 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		pages = 1
	}
	if requested < 1 {
		requested = 1
	}
	if requested > pages {
		requested = pages
	}
	return Page{
		Number:     requested,
		Size:       size,
		TotalItems: total,
		TotalPages: pages,
	}
}

// Offset is the index of the page's first item in the full sequence.
func (p Page) Offset() int { return (p.Number - 1) * p.Size }

// Limit is the maximum number of items on the page.
func (p Page) Limit() int { return p.Size }

func (p Page) HasPrev() bool { return p.Number > 1 }

func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// PrevNumber and NextNumber are only meaningful when the corresponding
// Has* reports true; templates use them for nav links.
func (p Page) PrevNumber() int { return p.Number - 1 }

func (p Page) NextNumber() int { return p.Number + 1 }
