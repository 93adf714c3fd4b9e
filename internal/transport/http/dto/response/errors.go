package response

var (
	ErrInvalidRequestFormat = ErrorResponse{
		Error:   "invalid_request",
		Message: "Invalid request format",
	}

	ErrItemNotFound = ErrorResponse{
		Error:   "not_found",
		Message: "Item not found",
	}

	ErrInternal = ErrorResponse{
		Error:   "internal_error",
		Message: "Internal server error",
	}
)
