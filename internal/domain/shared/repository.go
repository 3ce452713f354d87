package shared

import "context"

// Paginated represents a paginated result
type Paginated[T any] struct {
	Items      []T   `json:"items"`
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// NewPaginated creates a new paginated result
func NewPaginated[T any](items []T, total int64, page, pageSize int) Paginated[T] {
	totalPages := 0
	if pageSize > 0 {
		totalPages = int(total) / pageSize
		if int(total)%pageSize > 0 {
			totalPages++
		}
	}
	return Paginated[T]{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}
}

// Paginate slices one page out of items. Pages past the end are empty.
func Paginate[T any](items []T, page, pageSize int) Paginated[T] {
	if page < 1 {
		page = 1
	}
	total := int64(len(items))
	if pageSize <= 0 {
		return NewPaginated(items, total, 1, len(items))
	}
	start := (page - 1) * pageSize
	if start > len(items) {
		start = len(items)
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return NewPaginated(items[start:end], total, page, pageSize)
}

// SnapshotRepository stores the latest serialized collection of a record module.
type SnapshotRepository interface {
	// Load returns the stored payload and false when the module has never been saved.
	Load(ctx context.Context, module string) ([]byte, bool, error)
	Save(ctx context.Context, module string, payload []byte) error
}
