// model/query.go
package model

const (
	DefaultPageSize = 50
	MaxPageSize     = 200
)

type RequestFilter struct {
	Status         RequestStatus
	ProjectID      string
	RequesterEmail string
	Limit          int
	Offset         int
}

type GrantFilter struct {
	Status    GrantStatus
	ProjectID string
	UserEmail string
	Limit     int
	Offset    int
}

// ClampPage normalises pagination to the supported window.
func ClampPage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// Paginate slices an already-ordered result set.
func Paginate[T any](items []T, limit, offset int) []T {
	limit, offset = ClampPage(limit, offset)
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
