package handlers

const (
	// Default and upper bound for GET /api/quiz/questions
	DefaultQuestionCount = 10
	MaxQuestionCount     = 100

	// Multipart form field carrying an uploaded image
	ImageFormField = "image"

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidUpload       = "Invalid image upload"
	ErrSettingsIncomplete  = "Set an image for every emotion before starting a quiz"
	ErrStorageUnavailable  = "Could not access saved data"
	ErrTooManyRequests     = "Too many requests"
	ErrInternalServerError = "Internal server error"
)
