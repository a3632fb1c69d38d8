package models

const (
	APIName    = "Events API"
	APIVersion = "1.0.0"

	DetailValidation = "Validation error"
	DetailUnexpected = "An unexpected error occurred"
	MessageRetry     = "Please try again later or contact support"
)

type ErrorResponse struct {
	Detail string `json:"detail"`
}

type ValidationErrorResponse struct {
	Detail string           `json:"detail"`
	Errors ValidationErrors `json:"errors"`
}

type UnexpectedErrorResponse struct {
	Detail  string `json:"detail"`
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Timestamp string `json:"timestamp"`
}

type RootResponse struct {
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

func NewValidationErrorResponse(errs ValidationErrors) ValidationErrorResponse {
	if errs == nil {
		errs = ValidationErrors{}
	}
	return ValidationErrorResponse{Detail: DetailValidation, Errors: errs}
}

func NewUnexpectedErrorResponse() UnexpectedErrorResponse {
	return UnexpectedErrorResponse{Detail: DetailUnexpected, Message: MessageRetry}
}
