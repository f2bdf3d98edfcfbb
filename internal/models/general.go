package models

// ErrorResponse defines API error response format
type ErrorResponse struct {
	Code  string `json:"code"`
	Error string `json:"error"`
}

// MessageResponse defines API success response format
type MessageResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}
