package response

import "showcase/internal/domain/models"

type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
}

type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// ListResponse keeps the listing shape {data, pagination}.
type ListResponse struct {
	Data       []models.GalleryItem `json:"data"`
	Pagination models.PageInfo      `json:"pagination"`
}

func SuccessResponse(data interface{}) Response {
	return Response{
		Success: true,
		Data:    data,
	}
}

func ErrorResponseWithDetails(err, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error:   err,
		Message: message,
	}
}
