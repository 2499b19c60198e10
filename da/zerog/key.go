package zerog

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/evstack/zerog-da/da"
)

// ReferenceKey is the receipt of a confirmed blob. It carries everything needed
// to query the blob's status later, in any process.
type ReferenceKey struct {
	RequestID []byte
	DataRoot  []byte
	Epoch     uint32
	QuorumID  uint32
}

// referenceKeyJSON is the serialized form. Byte strings are arrays of
// integers, so keys minted by other 0G clients decode unchanged.
type referenceKeyJSON struct {
	ID       byteArray `json:"id"`
	DataRoot byteArray `json:"data_root"`
	Epoch    uint32    `json:"epoch"`
	QuorumID uint32    `json:"quorum_id"`
}

var errEmptyRequestID = fmt.Errorf("%w: empty request id", da.ErrMalformedReferenceKey)

// Encode serializes k.
func (k ReferenceKey) Encode() (string, error) {
	if len(k.RequestID) == 0 {
		return "", errEmptyRequestID
	}
	bz, err := json.Marshal(referenceKeyJSON{
		ID:       k.RequestID,
		DataRoot: k.DataRoot,
		Epoch:    k.Epoch,
		QuorumID: k.QuorumID,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode reference key: %w", err)
	}
	return string(bz), nil
}

// DecodeReferenceKey parses a key produced by Encode. Field names must match
// exactly. On failure it returns the zero key and an error wrapping
// da.ErrMalformedReferenceKey.
func DecodeReferenceKey(s string) (ReferenceKey, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(s), &fields); err != nil {
		return ReferenceKey{}, fmt.Errorf("%w: %v", da.ErrMalformedReferenceKey, err)
	}

	var (
		id, root        byteArray
		epoch, quorumID uint32
		errs            []error
	)
	for _, f := range []struct {
		name string
		dst  any
	}{
		{"id", &id},
		{"data_root", &root},
		{"epoch", &epoch},
		{"quorum_id", &quorumID},
	} {
		raw, ok := fields[f.name]
		if !ok || string(raw) == "null" {
			errs = append(errs, fmt.Errorf("missing field %s", f.name))
			continue
		}
		if err := json.Unmarshal(raw, f.dst); err != nil {
			errs = append(errs, fmt.Errorf("field %s: %w", f.name, err))
		}
	}
	if len(errs) > 0 {
		return ReferenceKey{}, fmt.Errorf("%w: %v", da.ErrMalformedReferenceKey, errors.Join(errs...))
	}
	if len(id) == 0 {
		return ReferenceKey{}, errEmptyRequestID
	}

	return ReferenceKey{
		RequestID: []byte(id),
		DataRoot:  []byte(root),
		Epoch:     epoch,
		QuorumID:  quorumID,
	}, nil
}

// byteArray marshals as a JSON array of integers instead of base64.
type byteArray []byte

func (b byteArray) MarshalJSON() ([]byte, error) {
	out := make([]byte, 0, 2+4*len(b))
	out = append(out, '[')
	for i, v := range b {
		if i > 0 {
			out = append(out, ',')
		}
		out = strconv.AppendUint(out, uint64(v), 10)
	}
	return append(out, ']'), nil
}

func (b *byteArray) UnmarshalJSON(data []byte) error {
	var ints []int64
	if err := json.Unmarshal(data, &ints); err != nil {
		return err
	}
	out := make([]byte, len(ints))
	for i, v := range ints {
		if v < 0 || v > 255 {
			return fmt.Errorf("byte %d out of range: %d", i, v)
		}
		out[i] = byte(v)
	}
	*b = out
	return nil
}
