package errors

// body of every error response, REST and websocket
type ErrorResponse struct {
	// code, e.g. "bad_request" or "server_error"
	Error   string `json:"error"`
	Message string `json:"message"`
	// sanitized in production
	Details string `json:"details,omitempty"`
}

type ErrorInfo struct {
	category  string
	sanitized string
}
