package model

import (
	"fmt"
	"strings"
)

// UploadRequest is one incoming file, alive only for the HTTP request.
type UploadRequest struct {
	Data        []byte
	FileName    string
	ContentType string
	Size        int64
}

// StoredObjectRef identifies a written object. It is never mutated after the
// upload that created it.
type StoredObjectRef struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

// GCSScheme is the URI scheme for objects in Google Cloud Storage.
const GCSScheme = "gs://"

// URI returns the canonical gs:// URI of the object.
func (r StoredObjectRef) URI() string {
	return fmt.Sprintf("%s%s/%s", GCSScheme, r.Bucket, r.Key)
}

// ParseStoredObjectURI splits a gs://<bucket>/<key> URI. It reports false when
// the scheme is wrong or the bucket or key is empty.
func ParseStoredObjectURI(uri string) (StoredObjectRef, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(uri), GCSScheme)
	if !ok {
		return StoredObjectRef{}, false
	}
	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" {
		return StoredObjectRef{}, false
	}
	return StoredObjectRef{Bucket: bucket, Key: key}, true
}
