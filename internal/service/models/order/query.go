package order

import "time"

// Query paging defaults.
const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// QueryOrdersModel represents filter parameters for querying orders.
type QueryOrdersModel struct {
	Status       *Status    `json:"status,omitempty"`
	CustomerName string     `json:"customerName,omitempty"`
	StartDate    *time.Time `json:"startDate,omitempty"`
	EndDate      *time.Time `json:"endDate,omitempty"`
	SortBy       string     `json:"sortBy,omitempty"`
	SortDesc     bool       `json:"sortDesc,omitempty"`
	Page         int        `json:"page,omitempty"`
	PageSize     int        `json:"pageSize,omitempty"`
}

// Normalize applies paging defaults in place.
func (q *QueryOrdersModel) Normalize() {
	if q.Page <= 0 {
		q.Page = DefaultPage
	}
	if q.PageSize <= 0 {
		q.PageSize = DefaultPageSize
	}
}

// PagedOrders is a page of orders with the total match count.
type PagedOrders struct {
	Items      []Order `json:"items"`
	TotalCount int64   `json:"totalCount"`
	Page       int     `json:"page"`
	PageSize   int     `json:"pageSize"`
}
