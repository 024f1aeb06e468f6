package handlers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"emotionquest/internal/utils"
)

// multipartOverhead allows for boundaries and headers around the file part
const multipartOverhead = 64 * 1024

// readUploadedImage reads the image form field of a multipart request.
// Size and content checks are left to the caller.
func readUploadedImage(w http.ResponseWriter, r *http.Request, maxSize int64) ([]byte, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	file, _, err := r.FormFile(ImageFormField)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, utils.ValidationError{Field: ImageFormField, Message: fmt.Sprintf("image exceeds %d bytes", maxSize)}
		}
		return nil, utils.ValidationError{Field: ImageFormField, Message: "image file is required"}
	}
	defer file.Close()

	// Read one byte past the limit so oversized files are detected
	data, err := io.ReadAll(io.LimitReader(file, maxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	return data, nil
}
