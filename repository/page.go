package repository

const (
	// MaxPageSize is the largest page size the API accepts.
	MaxPageSize = 100
	// DefaultPageSize is used when a page carries no size.
	DefaultPageSize = 20
)

// Page is a 1-indexed page request.
type Page struct {
	Number int
	Size   int
}

// limitOffset returns SQL LIMIT/OFFSET values. Zero fields take their defaults; the
// size is used as given otherwise.
func (p Page) limitOffset() (int, int) {
	size := p.Size
	if size <= 0 {
		size = DefaultPageSize
	}
	num := p.Number
	if num < 1 {
		num = 1
	}
	return size, (num - 1) * size
}
