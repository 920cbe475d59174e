package handlers

const (
	ErrInvalidBody         = "Invalid request body."
	ErrUnauthorized        = "Unauthorized."
	ErrMealNotFound        = "Meal not found."
	ErrTooManyRequests     = "Too many requests."
	ErrInternalServerError = "Internal server error"

	maxRequestBodyBytes = 1 << 20
)
