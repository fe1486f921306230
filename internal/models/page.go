package models

// Page is one page of an ordered query result.
// Page numbers start at 1.
type Page[T any] struct {
	Items   []T
	Page    int
	PerPage int
	Total   int64
}

// Pages returns the total number of pages.
func (p *Page[T]) Pages() int {
	if p.PerPage <= 0 || p.Total == 0 {
		return 0
	}
	return int((p.Total + int64(p.PerPage) - 1) / int64(p.PerPage))
}

func (p *Page[T]) HasPrev() bool { return p.Page > 1 }

func (p *Page[T]) HasNext() bool { return p.Page < p.Pages() }

func (p *Page[T]) PrevNum() int {
	if !p.HasPrev() {
		return 0
	}
	return p.Page - 1
}

func (p *Page[T]) NextNum() int {
	if !p.HasNext() {
		return 0
	}
	return p.Page + 1
}

// OutOfRange reports whether the requested page does not exist.
// The first page always exists, even when empty.
func (p *Page[T]) OutOfRange() bool {
	return p.Page < 1 || (p.Page > 1 && len(p.Items) == 0)
}

// IterPages returns the page numbers to show in a pagination widget.
// Skipped ranges are marked with a single 0.
//
// leftEdge and rightEdge pages are always shown at each end, plus
// leftCurrent pages before and rightCurrent pages after the current one
// (the current page included in the right-hand count).
func (p *Page[T]) IterPages(leftEdge, leftCurrent, rightCurrent, rightEdge int) []int {
	pages := p.Pages()
	var out []int
	last := 0
	for num := 1; num <= pages; num++ {
		if num <= leftEdge ||
			(num > p.Page-leftCurrent-1 && num < p.Page+rightCurrent) ||
			num > pages-rightEdge {
			if last+1 != num {
				out = append(out, 0)
			}
			out = append(out, num)
			last = num
		}
	}
	return out
}
