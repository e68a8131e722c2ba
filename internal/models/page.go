package models

// Page is one offset-paginated slice of a listing.
type Page[T any] struct {
	Data         []T `json:"data"`
	TotalRecords int `json:"total_records"`
	TotalPages   int `json:"total_pages"`
	CurrentPage  int `json:"current_page"`
}

func NewPage[T any](data []T, total, page, pageSize int) Page[T] {
	pages := 0
	if pageSize > 0 {
		pages = (total + pageSize - 1) / pageSize
	}
	if data == nil {
		data = []T{}
	}
	return Page[T]{Data: data, TotalRecords: total, TotalPages: pages, CurrentPage: page}
}
