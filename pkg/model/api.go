package model

import "time"

// Page sizes of the history listing.
const (
	DefaultPageSize = 20
	MaxPageSize     = 500
)

// Response is the JSON envelope of every viewer API reply.
type Response struct {
	Status     string      `json:"status"`
	RequestID  string      `json:"request_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Data       any         `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
	Error      *APIError   `json:"error"`
}

// Pagination describes one page of a history listing.
type Pagination struct {
	Total   int  `json:"total"`
	Limit   int  `json:"limit"`
	Offset  int  `json:"offset"`
	HasMore bool `json:"has_more"`
}

// ListOptions selects a page of invocation history.
type ListOptions struct {
	Limit  int
	Offset int
	Action string // Only invocations of this action when set
}

// DefaultListOptions returns the first page.
func DefaultListOptions() ListOptions {
	return ListOptions{Limit: DefaultPageSize}
}

// Clamp keeps Limit within 1..MaxPageSize and Offset non-negative.
func (o *ListOptions) Clamp() {
	if o.Limit <= 0 {
		o.Limit = DefaultPageSize
	}
	o.Limit = min(o.Limit, MaxPageSize)
	o.Offset = max(o.Offset, 0)
}

// Page describes the page of o that returned n of total records.
func (o ListOptions) Page(n, total int) *Pagination {
	return &Pagination{
		Total:   total,
		Limit:   o.Limit,
		Offset:  o.Offset,
		HasMore: o.Offset+n < total,
	}
}
