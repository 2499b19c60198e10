package da

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"
)

var _ BlobStore = (*DummyDA)(nil)

// DummyDA is a simple in-memory implementation of the DA interface for testing purposes.
//
// Keys have the form "<height>/<hex sha256>". A blob is reported pending until
// the simulated height moves past the height it was published at; with a zero
// block time blobs are verified immediately.
type DummyDA struct {
	mu          sync.RWMutex
	blobs       map[string]Blob
	heights     map[string]uint64
	maxBlobSize uint64

	// DA height simulation
	currentHeight uint64
	blockTime     time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once

	// Simulated failure support
	publishShouldFail bool
}

// NewDummyDA creates a new instance of DummyDA with the specified maximum blob size and block time.
func NewDummyDA(maxBlobSize uint64, blockTime time.Duration) *DummyDA {
	return &DummyDA{
		blobs:       make(map[string]Blob),
		heights:     make(map[string]uint64),
		maxBlobSize: maxBlobSize,
		blockTime:   blockTime,
		stopCh:      make(chan struct{}),
	}
}

// StartHeightTicker starts a goroutine that increments currentHeight every
// blockTime. It does nothing when blockTime is not positive.
func (d *DummyDA) StartHeightTicker() {
	if d.blockTime <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(d.blockTime)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				d.mu.Lock()
				d.currentHeight++
				d.mu.Unlock()
			case <-d.stopCh:
				return
			}
		}
	}()
}

// StopHeightTicker stops the height ticker goroutine. It is safe to call more
// than once.
func (d *DummyDA) StopHeightTicker() {
	d.stopOnce.Do(func() { close(d.stopCh) })
}

// AdvanceHeight moves the simulated height forward by one.
func (d *DummyDA) AdvanceHeight() {
	d.mu.Lock()
	d.currentHeight++
	d.mu.Unlock()
}

// SetPublishFailure simulates the DA layer refusing every publish.
func (d *DummyDA) SetPublishFailure(shouldFail bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.publishShouldFail = shouldFail
}

// Publish stores the blob and returns its key.
func (d *DummyDA) Publish(ctx context.Context, blob Blob) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.publishShouldFail {
		return "", fmt.Errorf("%w: simulated failure", ErrSubmissionRejected)
	}
	if d.maxBlobSize > 0 && uint64(len(blob)) > d.maxBlobSize {
		return "", ErrBlobSizeOverLimit
	}

	sum := sha256.Sum256(blob)
	key := strconv.FormatUint(d.currentHeight, 10) + "/" + hex.EncodeToString(sum[:])
	d.blobs[key] = append(Blob(nil), blob...)
	d.heights[key] = d.currentHeight
	return key, nil
}

// Verify reports whether the blob behind key is known and past its publish height.
func (d *DummyDA) Verify(ctx context.Context, key string) (VerificationStatus, error) {
	if err := parseDummyKey(key); err != nil {
		return StatusRejected, err
	}
	if err := ctx.Err(); err != nil {
		return StatusRejected, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	height, ok := d.heights[key]
	switch {
	case !ok:
		return StatusRejected, nil
	case d.blockTime > 0 && height >= d.currentHeight:
		return StatusPending, nil
	default:
		return StatusVerified, nil
	}
}

// Retrieve returns the blob stored under key.
func (d *DummyDA) Retrieve(ctx context.Context, key string) (Blob, error) {
	if err := parseDummyKey(key); err != nil {
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	blob, ok := d.blobs[key]
	if !ok {
		return nil, ErrBlobNotFound
	}
	return append(Blob(nil), blob...), nil
}

func parseDummyKey(key string) error {
	height, digest, ok := strings.Cut(key, "/")
	if !ok {
		return fmt.Errorf("%w: missing separator", ErrMalformedReferenceKey)
	}
	if _, err := strconv.ParseUint(height, 10, 64); err != nil {
		return fmt.Errorf("%w: height: %v", ErrMalformedReferenceKey, err)
	}
	raw, err := hex.DecodeString(digest)
	if err != nil {
		return fmt.Errorf("%w: digest: %v", ErrMalformedReferenceKey, err)
	}
	if len(raw) != sha256.Size {
		return fmt.Errorf("%w: digest length %d", ErrMalformedReferenceKey, len(raw))
	}
	return nil
}
