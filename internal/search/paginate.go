package search

// Paginate returns the 1-indexed page of items. Pages past the end, a page
// number below 1 and a non-positive page size all yield an empty page.
func Paginate[T any](items []T, pageSize, page int) []T {
	if pageSize <= 0 || page < 1 {
		return []T{}
	}
	start := (page - 1) * pageSize
	if start >= len(items) {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

// TotalPages is ceil(n / pageSize); zero items means zero pages.
func TotalPages(n, pageSize int) int {
	if pageSize <= 0 || n <= 0 {
		return 0
	}
	return (n + pageSize - 1) / pageSize
}

// ClampPage keeps page within [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}
