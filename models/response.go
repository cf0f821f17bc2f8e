package models

// PageMeta describes a result set's total size independent of the
// currently returned page.
type PageMeta struct {
	PageCount  int64 `json:"pageCount" example:"5"`
	TotalCount int64 `json:"totalCount" example:"483"`
}

// ListMeta wraps the pagination metadata of a list response.
type ListMeta struct {
	Page PageMeta `json:"page"`
}

// APIError is one error object of an error response envelope.
type APIError struct {
	Status string       `json:"status" example:"400"`
	Title  string       `json:"title" example:"Invalid Attribute"`
	Detail string       `json:"detail,omitempty" example:"\"query.page.limit\" must be less than or equal to 100"`
	Source *ErrorSource `json:"source,omitempty"`
}

// ErrorSource points at the request element an error refers to.
type ErrorSource struct {
	Pointer string `json:"pointer" example:"/query/page/limit"`
}

// ErrorResponse is the error envelope returned by every failing endpoint.
type ErrorResponse struct {
	Errors []APIError `json:"errors"`
}
