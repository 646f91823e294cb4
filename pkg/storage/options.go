package storage

// Option configures Put operations.
type Option func(*putOptions)

type putOptions struct {
	contentType  string // overrides the extension-based type
	cacheControl string
	acl          ACL // overrides the default ACL (S3 only)
}

func newPutOptions(key string, opts []Option) *putOptions {
	o := &putOptions{}
	for _, opt := range opts {
		opt(o)
	}
	if o.contentType == "" {
		o.contentType = ContentTypeFor(key)
	}
	return o
}

// WithContentType overrides the content type derived from the key extension.
func WithContentType(ct string) Option {
	return func(o *putOptions) {
		o.contentType = ct
	}
}

// WithCacheControl sets the Cache-Control metadata of the object.
func WithCacheControl(cc string) Option {
	return func(o *putOptions) {
		o.cacheControl = cc
	}
}

// WithACL overrides the default ACL for this upload.
func WithACL(acl ACL) Option {
	return func(o *putOptions) {
		o.acl = acl
	}
}
