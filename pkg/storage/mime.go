package storage

import (
	"mime"
	"path"
	"strings"
)

// MIMEOctetStream is used for keys without a known extension.
const MIMEOctetStream = "application/octet-stream"

// siteTypes pins the types of common site assets so they do not depend on the
// host's mime database.
var siteTypes = map[string]string{
	".html":  "text/html; charset=utf-8",
	".htm":   "text/html; charset=utf-8",
	".json":  "application/json",
	".css":   "text/css; charset=utf-8",
	".js":    "text/javascript; charset=utf-8",
	".mjs":   "text/javascript; charset=utf-8",
	".xml":   "application/xml",
	".txt":   "text/plain; charset=utf-8",
	".md":    "text/markdown; charset=utf-8",
	".svg":   "image/svg+xml",
	".png":   "image/png",
	".jpg":   "image/jpeg",
	".jpeg":  "image/jpeg",
	".gif":   "image/gif",
	".webp":  "image/webp",
	".ico":   "image/x-icon",
	".woff2": "font/woff2",
}

// ContentTypeFor returns the content type for a key based on its extension.
func ContentTypeFor(key string) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == "" {
		return MIMEOctetStream
	}
	if ct, ok := siteTypes[ext]; ok {
		return ct
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return MIMEOctetStream
}
