// Package storage writes build artifacts to a local directory or to
// S3-compatible object storage.
//
// Both backends implement [Storage] with caller-chosen keys. Keys are
// slash-separated relative paths such as "blog/hello/index.html".
//
// # Local
//
//	out, err := storage.NewLocal("dist")
//	_, err = storage.PutBytes(ctx, out, "snapshot.json", data)
//
// Local writes are atomic: data is written to a temporary file in the target
// directory and renamed into place.
//
// # S3
//
//	bucket, err := storage.New(storage.Config{
//		Bucket:    "my-site",
//		AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
//		SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
//		Prefix:    "preview/",
//	})
//	err = storage.Publish(ctx, os.DirFS("dist"), bucket)
//
// Content types are derived from the key extension unless set with
// [WithContentType].
//
// # Errors
//
// S3 errors are normalized to sentinels ([ErrNotFound], [ErrAccessDenied],
// [ErrUploadFailed], [ErrDeleteFailed]); use errors.Is to check them.
package storage
