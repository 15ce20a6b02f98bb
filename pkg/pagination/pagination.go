package pagination

const (
	// MaxPageSize caps how many rows any page query can request.
	MaxPageSize = 100
)

// Page is a normalized page request. Size 0 means unpaged.
type Page struct {
	Number int
	Size   int
}

// Normalize clamps page to >= 1 and size to 1..maxSize, substituting defaultSize for non-positive input.
// A defaultSize of 0 keeps an unset size unpaged.
func Normalize(page, size, defaultSize, maxSize int) Page {
	if page < 1 {
		page = 1
	}
	if maxSize <= 0 {
		maxSize = MaxPageSize
	}
	if size <= 0 {
		size = defaultSize
	}
	if size > maxSize {
		size = maxSize
	}
	return Page{Number: page, Size: size}
}

// Paged reports whether a size limit applies.
func (p Page) Paged() bool {
	return p.Size > 0
}

// Offset returns the number of rows to skip.
func (p Page) Offset() int {
	if !p.Paged() {
		return 0
	}
	return (p.Number - 1) * p.Size
}

// TotalPages is ceil(total/size) with a floor of 1, so an empty result still reports one page.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	pages := int((total + int64(size) - 1) / int64(size))
	if pages < 1 {
		return 1
	}
	return pages
}
