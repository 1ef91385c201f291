package errors

const (
	HttpInternalError          = "internal_error"
	HttpInvalidJsonError       = "invalid_json"
	HttpInvalidDataPointError  = "invalid_datapoint"
	HttpInvalidQueryError      = "invalid_query"
	HttpUnknownAggregatorError = "unknown_aggregator"
)

// ErrorResponse is the error response body for API errors.
type ErrorResponse struct {
	ErrorType string      `json:"error_type"`
	Message   string      `json:"message"`
	Details   interface{} `json:"details,omitempty"`
}
