// Package storage is the content-addressable blob store collaborator.
// Document bytes live in an S3-compatible backend under keys derived from the
// content hash, so identical bytes always share one object and a key pins an
// exact byte version forever. Validation only ever reads blobs; upload and
// promotion are the only writers.
package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"time"
)

// PutObjectOptions define optional parameters for uploading objects.
// Size should be the exact number of bytes if known; if unknown, set to -1
// and the implementation will buffer/chunk as supported by the backend.
type PutObjectOptions struct {
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// ObjectInfo contains basic information about an object in storage.
type ObjectInfo struct {
	Key          string
	Size         int64
	ETag         string
	ContentType  string
	LastModified time.Time
	Metadata     map[string]string
}

// Storage is a reusable, S3-compatible object storage client interface.
// Methods use context and streaming readers; no local disk is used.
// There is no Delete: content-addressed keys may be shared by any number of
// documents, so removal is a garbage-collection problem, not a client call.
type Storage interface {
	// Put uploads an object under the given key using the provided reader and options.
	Put(ctx context.Context, key string, r io.Reader, opt PutObjectOptions) (ObjectInfo, error)
	// Get retrieves an object's content as a streaming reader alongside its info.
	Get(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error)
	// PresignGet returns a time-limited URL that can be used to download the object without credentials.
	PresignGet(ctx context.Context, key string, expiry time.Duration) (string, error)
}

// ContentKey derives the content-addressed object key for the given bytes.
// Writing the same content twice is a no-op at the store level.
func ContentKey(content []byte) string {
	sum := sha256.Sum256(content)
	return "blobs/" + hex.EncodeToString(sum[:])
}
