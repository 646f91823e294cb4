package storage

import (
	"context"
	"io"
	"path"
	"strings"
)

// Storage stores build artifacts under caller-chosen keys.
type Storage interface {
	// Put writes size bytes from r under key, replacing any existing object.
	Put(ctx context.Context, key string, r io.Reader, size int64, opts ...Option) (*FileInfo, error)

	// Get opens the object stored under key.
	// The caller is responsible for closing the returned reader.
	// Returns ErrNotFound if nothing is stored under key.
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes the object stored under key.
	Delete(ctx context.Context, key string) error
}

// FileInfo describes a stored object.
type FileInfo struct {
	Key          string
	ContentType  string
	CacheControl string
	Size         int64
}

// ACL represents access control levels for stored objects.
type ACL string

const (
	// ACLPrivate makes the object accessible only with credentials.
	ACLPrivate ACL = "private"

	// ACLPublicRead makes the object publicly readable.
	ACLPublicRead ACL = "public-read"
)

// Config holds S3-compatible storage configuration.
type Config struct {
	// Bucket is the S3 bucket name (required).
	Bucket string `yaml:"bucket" env:"S3_BUCKET"`

	// AccessKey is the AWS access key ID (required).
	AccessKey string `yaml:"access_key" env:"S3_ACCESS_KEY"`

	// SecretKey is the AWS secret access key (required).
	SecretKey string `yaml:"secret_key" env:"S3_SECRET_KEY"`

	// Endpoint is the custom S3 endpoint URL (optional, for MinIO or other S3-compatible services).
	Endpoint string `yaml:"endpoint" env:"S3_ENDPOINT"`

	// Region is the AWS region (default: us-east-1).
	Region string `yaml:"region" env:"S3_REGION"`

	// Prefix is prepended to every key, e.g. "preview/".
	Prefix string `yaml:"prefix" env:"S3_PREFIX"`

	// PublicURL is the CDN or public URL prefix of the bucket (optional).
	PublicURL string `yaml:"public_url" env:"S3_PUBLIC_URL"`

	// DefaultACL is the default ACL for uploaded objects (default: public-read).
	DefaultACL ACL `yaml:"acl" env:"S3_ACL"`

	// PathStyle enables path-style URLs (required for MinIO).
	PathStyle bool `yaml:"path_style" env:"S3_PATH_STYLE"`
}

// DefaultRegion is used when Config.Region is empty.
const DefaultRegion = "us-east-1"

func (c *Config) applyDefaults() {
	if c.Region == "" {
		c.Region = DefaultRegion
	}
	if c.DefaultACL == "" {
		c.DefaultACL = ACLPublicRead
	}
	if c.Prefix != "" {
		c.Prefix = strings.Trim(c.Prefix, "/") + "/"
	}
}

func (c *Config) validate() error {
	if c.Bucket == "" || c.AccessKey == "" || c.SecretKey == "" {
		return ErrInvalidConfig
	}
	return nil
}

// CleanKey validates a key and returns it in canonical form.
// Keys must be relative, slash-separated and must not escape the root.
func CleanKey(key string) (string, error) {
	if key == "" || strings.HasPrefix(key, "/") || strings.Contains(key, "\\") {
		return "", ErrInvalidKey
	}
	clean := path.Clean(key)
	if clean == "." || clean == ".." || strings.HasPrefix(clean, "../") {
		return "", ErrInvalidKey
	}
	return clean, nil
}
