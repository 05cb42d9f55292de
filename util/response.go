package util

// Response is the envelope every endpoint responds with.
type Response struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Message string `json:"message"`
}

func SuccessResponse(data any) Response {
	return Response{Success: true, Data: data, Message: SUCCESS}
}

func SuccessMessage(message string, data any) Response {
	return Response{Success: true, Data: data, Message: message}
}

func FailedResponse(err error) Response {
	return Response{Success: false, Message: PublicMessage(err)}
}

// Page wraps a list result with its pagination metadata.
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int64 `json:"page"`
	Limit int64 `json:"limit"`
}

func NewPage[T any](items []T, total, page, limit int64) Page[T] {
	if items == nil {
		items = []T{}
	}
	return Page[T]{Items: items, Total: total, Page: page, Limit: limit}
}
