package storage

import (
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
)

// Sentinel errors for storage operations.
var (
	ErrInvalidConfig = errors.New("storage: invalid configuration")
	ErrInvalidKey    = errors.New("storage: invalid key")

	ErrNotFound     = errors.New("storage: file not found")
	ErrAccessDenied = errors.New("storage: access denied")
	ErrUploadFailed = errors.New("storage: upload failed")
	ErrDeleteFailed = errors.New("storage: delete failed")
)

// wrapS3Error maps an S3 failure on key to a sentinel. The AWS error is
// formatted with %v so callers match sentinels, not SDK types.
func wrapS3Error(key string, err, fallback error) error {
	sentinel := fallback

	var apiErr smithy.APIError
	var noSuchKey *types.NoSuchKey
	switch {
	case errors.As(err, &noSuchKey):
		sentinel = ErrNotFound
	case errors.As(err, &apiErr):
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound":
			sentinel = ErrNotFound
		case "AccessDenied", "Forbidden":
			sentinel = ErrAccessDenied
		}
	}
	return fmt.Errorf("%w: %s: %v", sentinel, key, err)
}
