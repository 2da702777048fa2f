package news

// DefaultPageSize is the number of items per news page.
const DefaultPageSize = 12

// Page is one slice of the news archive.
type Page struct {
	Items      []Item
	Number     int // 1-based, clamped to [1, TotalPages]
	TotalPages int // at least 1, even for an empty feed
	First      int // 1-based index of the first item, 0 when empty
	Last       int // 1-based index of the last item, 0 when empty
	Total      int
}

// HasPrevious reports whether a page precedes p.
func (p Page) HasPrevious() bool { return p.Number > 1 }

// HasNext reports whether a page follows p.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// Paginate returns page number of items. Out-of-range page numbers are
// clamped; size <= 0 uses DefaultPageSize.
func Paginate(items []Item, number, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}

	total := len(items)
	totalPages := (total + size - 1) / size
	if totalPages < 1 {
		totalPages = 1
	}

	if number < 1 {
		number = 1
	}
	if number > totalPages {
		number = totalPages
	}

	start := (number - 1) * size
	end := start + size
	if end > total {
		end = total
	}

	p := Page{
		Items:      items[start:end],
		Number:     number,
		TotalPages: totalPages,
		Total:      total,
	}
	if end > start {
		p.First = start + 1
		p.Last = end
	}
	return p
}

// Pages splits items into every page, in order.
func Pages(items []Item, size int) []Page {
	first := Paginate(items, 1, size)
	pages := []Page{first}
	for n := 2; n <= first.TotalPages; n++ {
		pages = append(pages, Paginate(items, n, size))
	}
	return pages
}
