// Package media enumerates the video files a user can play.
package media

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"time"
)

// Record describes one playable video.
type Record struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	SizeBytes   int64     `json:"size_bytes"`
	MimeType    string    `json:"mime_type"`
	AddedAt     time.Time `json:"added_at"`
	Path        string    `json:"path"`
}

// URI returns the playable file URI of the record.
func (r Record) URI() string {
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(r.Path)}).String()
}

// String returns the display name.
func (r Record) String() string {
	return r.DisplayName
}

// Resolve turns a playable URI back into a local path. Plain paths are returned cleaned.
func Resolve(uri string) (string, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return "", fmt.Errorf("empty uri")
	}

	if !strings.Contains(uri, "://") {
		return filepath.Clean(uri), nil
	}

	u, err := url.Parse(uri)
	if err != nil {
		return "", fmt.Errorf("parse uri: %w", err)
	}
	if u.Scheme != "file" {
		return "", fmt.Errorf("unsupported uri scheme %q", u.Scheme)
	}
	return filepath.Clean(filepath.FromSlash(u.Path)), nil
}

// stableID derives an identifier that survives rescans from the file path.
func stableID(path string) string {
	h := sha1.Sum([]byte(path))
	return hex.EncodeToString(h[:])
}

var mimeTypes = map[string]string{
	".avi":  "video/x-msvideo",
	".m2ts": "video/mp2t",
	".m4v":  "video/x-m4v",
	".mkv":  "video/x-matroska",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".mpeg": "video/mpeg",
	".mpg":  "video/mpeg",
	".ogv":  "video/ogg",
	".ts":   "video/mp2t",
	".webm": "video/webm",
	".wmv":  "video/x-ms-wmv",
	".3gp":  "video/3gpp",
}

// MimeType returns the video mime type for a file name, or "" when it is not a video.
func MimeType(name string) string {
	return mimeTypes[strings.ToLower(filepath.Ext(name))]
}
