package pagination

const (
	// DefaultPageSize is used when a caller does not ask for a size.
	DefaultPageSize = 50
	// MinPageSize and MaxPageSize bound the sizes the command line offers.
	MinPageSize = 10
	MaxPageSize = 200
)

// Params holds offset pagination inputs from the command layer.
type Params struct {
	PageIndex int
	PageSize  int
}

// Normalize floors the index at zero and substitutes the default for a
// missing size. The requested size is otherwise kept as is.
func (p Params) Normalize() Params {
	if p.PageIndex < 0 {
		p.PageIndex = 0
	}
	if p.PageSize <= 0 {
		p.PageSize = DefaultPageSize
	}
	return p
}

// Offset is the number of rows skipped before the page.
func (p Params) Offset() int {
	return p.PageIndex * p.PageSize
}

// NormalizePageSize applies the default and clamps to [MinPageSize, MaxPageSize].
func NormalizePageSize(size int) int {
	if size <= 0 {
		return DefaultPageSize
	}
	return ClampPageSize(size)
}

// ClampPageSize clamps without substituting a default.
func ClampPageSize(size int) int {
	if size < MinPageSize {
		return MinPageSize
	}
	if size > MaxPageSize {
		return MaxPageSize
	}
	return size
}

// TotalPages returns how many pages of size hold total rows; at least one.
func TotalPages(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 1
	}
	return int((total + int64(size) - 1) / int64(size))
}

// Chunk splits values into consecutive slices of at most size elements.
func Chunk[T any](values []T, size int) [][]T {
	if len(values) == 0 {
		return nil
	}
	if size <= 0 {
		return [][]T{values}
	}
	chunks := make([][]T, 0, (len(values)+size-1)/size)
	for start := 0; start < len(values); start += size {
		end := min(start+size, len(values))
		chunks = append(chunks, values[start:end])
	}
	return chunks
}
