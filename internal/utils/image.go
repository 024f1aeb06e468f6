package utils

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// SniffImage detects the content type of raw image bytes and rejects
// anything that is not an image
func SniffImage(data []byte, maxSize int64) (string, error) {
	if len(data) == 0 {
		return "", ValidationError{Field: "image", Message: "image is required"}
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return "", ValidationError{Field: "image", Message: fmt.Sprintf("image exceeds %d bytes", maxSize)}
	}

	mtype := mimetype.Detect(data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return "", ValidationError{Field: "image", Message: "unsupported file type " + mtype.String()}
	}
	// Drop parameters such as "; charset=utf-8" on svg
	contentType, _, _ := strings.Cut(mtype.String(), ";")
	return contentType, nil
}

// EncodeDataURI renders data as a base64 data URI
func EncodeDataURI(contentType string, data []byte) string {
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data)
}

// MaxDataURILength is the longest data URI produced by EncodeDataURI for an
// image of at most maxBytes
func MaxDataURILength(maxBytes int64) int64 {
	if maxBytes <= 0 {
		return 0
	}
	return int64(base64.StdEncoding.EncodedLen(int(maxBytes))) + int64(len("data:image/svg+xml;base64,"))
}
