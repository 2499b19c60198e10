package da

import (
	"context"
	"errors"
)

// DA defines the interface for interaction with Data Availability layers.
//
// Implementations publish opaque blobs and hand back a self-contained
// reference key. The key is the only artifact a caller needs to keep in
// order to verify the blob later, possibly from another process.
type DA interface {
	// Publish submits the blob and blocks until the DA layer reports it
	// durable. It returns the serialized reference key.
	Publish(ctx context.Context, blob Blob) (string, error)

	// Verify performs a single status lookup for a previously published
	// reference key and classifies the result.
	Verify(ctx context.Context, key string) (VerificationStatus, error)
}

// Retriever is implemented by DA layers that can return the published bytes
// for a reference key.
type Retriever interface {
	Retrieve(ctx context.Context, key string) (Blob, error)
}

// BlobStore is a DA layer that publishes, verifies and returns blobs.
type BlobStore interface {
	DA
	Retriever
}

// Blob is the data submitted/received from DA interface.
type Blob = []byte

// VerificationStatus is the tri-state outcome of a verification query.
type VerificationStatus uint8

const (
	// StatusRejected is returned for any state that is not known to lead to
	// durability, including ambiguous or unreadable responses.
	StatusRejected VerificationStatus = iota
	// StatusPending means the DA layer is still processing the blob.
	StatusPending
	// StatusVerified means the DA layer reports the blob confirmed or finalized.
	StatusVerified
)

func (s VerificationStatus) String() string {
	switch s {
	case StatusVerified:
		return "verified"
	case StatusPending:
		return "pending"
	default:
		return "rejected"
	}
}

// Errors
var (
	// ErrMalformedReferenceKey is returned when a reference key cannot be decoded.
	ErrMalformedReferenceKey = errors.New("malformed reference key")
	// ErrProtocolInvariant is returned when the DA layer accepted a blob but
	// its replies lack the fields needed to build a reference key.
	ErrProtocolInvariant = errors.New("protocol invariant violated")
	// ErrSubmissionRejected is returned when the DA layer refuses a blob with
	// a well-formed, non-transient error.
	ErrSubmissionRejected = errors.New("submission rejected by DA layer")
	// ErrBlobSizeOverLimit is returned when a blob exceeds the configured size limit.
	ErrBlobSizeOverLimit = errors.New("blob: over size limit")
	// ErrBlobNotFound is returned when the DA layer holds no blob for a key.
	ErrBlobNotFound = errors.New("blob: not found")
	// ErrClientClosed is returned by operations on a closed client.
	ErrClientClosed = errors.New("da client closed")
)
