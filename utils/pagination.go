package utils

import "strconv"

// Page describes one page of a listing
type Page struct {
	Number     int
	Size       int
	TotalItems int64
}

// ParsePage reads a 1-based page number, defaulting to the first page.
func ParsePage(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Offset is the number of rows before this page.
func (p Page) Offset() int {
	return (p.Number - 1) * p.Size
}

// TotalPages is at least 1 so an empty listing still renders one page.
func (p Page) TotalPages() int {
	if p.Size <= 0 || p.TotalItems == 0 {
		return 1
	}
	return int((p.TotalItems + int64(p.Size) - 1) / int64(p.Size))
}

// Clamp moves an out-of-range page number back onto the last page.
func (p Page) Clamp() Page {
	if last := p.TotalPages(); p.Number > last {
		p.Number = last
	}
	return p
}

func (p Page) HasPrev() bool { return p.Number > 1 }
func (p Page) HasNext() bool { return p.Number < p.TotalPages() }
func (p Page) Prev() int     { return p.Number - 1 }
func (p Page) Next() int     { return p.Number + 1 }
