// Package disperser contains the wire types and gRPC bindings of the 0G
// disperser service.
//
// Messages are encoded in protobuf wire format by hand so this package does
// not require a protoc/codegen toolchain. Field numbers follow disperser.proto.
package disperser

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"
)

// BlobStatus is the dispersal state reported by the disperser.
type BlobStatus int32

const (
	BlobStatusUnknown                BlobStatus = 0
	BlobStatusProcessing             BlobStatus = 1
	BlobStatusConfirmed              BlobStatus = 2
	BlobStatusFailed                 BlobStatus = 3
	BlobStatusFinalized              BlobStatus = 4
	BlobStatusInsufficientSignatures BlobStatus = 5
)

var blobStatusNames = map[BlobStatus]string{
	BlobStatusUnknown:                "UNKNOWN",
	BlobStatusProcessing:             "PROCESSING",
	BlobStatusConfirmed:              "CONFIRMED",
	BlobStatusFailed:                 "FAILED",
	BlobStatusFinalized:              "FINALIZED",
	BlobStatusInsufficientSignatures: "INSUFFICIENT_SIGNATURES",
}

func (s BlobStatus) String() string {
	if name, ok := blobStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("BlobStatus(%d)", int32(s))
}

// Known reports whether s is one of the statuses defined by the protocol.
func (s BlobStatus) Known() bool {
	_, ok := blobStatusNames[s]
	return ok
}

// Message is implemented by every disperser wire type.
type Message interface {
	Marshal() ([]byte, error)
	Unmarshal([]byte) error
}

// SecurityParams is carried for wire compatibility; the client always sends none.
type SecurityParams struct {
	QuorumID           uint32
	AdversaryThreshold uint32
	QuorumThreshold    uint32
}

// DisperseBlobRequest submits a blob for dispersal.
type DisperseBlobRequest struct {
	Data           []byte
	SecurityParams []*SecurityParams
	TargetRowNum   uint32
}

// DisperseBlobReply carries the request id assigned by the disperser.
type DisperseBlobReply struct {
	Result    BlobStatus
	RequestID []byte
}

// BlobStatusRequest asks for the status of a dispersal request.
type BlobStatusRequest struct {
	RequestID []byte
}

// BlobStatusReply is the disperser's view of a dispersal request.
type BlobStatusReply struct {
	Status BlobStatus
	Info   *BlobInfo
}

// GetInfo returns r.Info, tolerating a nil receiver.
func (r *BlobStatusReply) GetInfo() *BlobInfo {
	if r == nil {
		return nil
	}
	return r.Info
}

// BlobInfo groups the blob header and its verification proof.
type BlobInfo struct {
	BlobHeader            *BlobHeader
	BlobVerificationProof *BlobVerificationProof
}

// GetBlobHeader returns i.BlobHeader, tolerating a nil receiver.
func (i *BlobInfo) GetBlobHeader() *BlobHeader {
	if i == nil {
		return nil
	}
	return i.BlobHeader
}

// BlobHeader carries the routing metadata assigned by the disperser.
type BlobHeader struct {
	DataRoot []byte
	Epoch    uint32
	QuorumID uint32
}

// BlobVerificationProof locates the blob inside a dispersed batch.
type BlobVerificationProof struct {
	BatchID   uint32
	BlobIndex uint32
}

// RetrieveBlobRequest fetches a confirmed blob by its header fields.
type RetrieveBlobRequest struct {
	DataRoot []byte
	Epoch    uint32
	QuorumID uint32
}

// RetrieveBlobReply carries the blob bytes.
type RetrieveBlobReply struct {
	Data []byte
}

func (m *SecurityParams) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint32(b, 1, m.QuorumID)
	b = appendUint32(b, 2, m.AdversaryThreshold)
	b = appendUint32(b, 3, m.QuorumThreshold)
	return b, nil
}

func (m *SecurityParams) Unmarshal(b []byte) error {
	*m = SecurityParams{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint32(typ, b, &m.QuorumID), nil
		case 2:
			return consumeUint32(typ, b, &m.AdversaryThreshold), nil
		case 3:
			return consumeUint32(typ, b, &m.QuorumThreshold), nil
		}
		return 0, nil
	})
}

func (m *DisperseBlobRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.Data)
	for _, p := range m.SecurityParams {
		var err error
		if b, err = appendMessage(b, 2, p); err != nil {
			return nil, err
		}
	}
	b = appendUint32(b, 3, m.TargetRowNum)
	return b, nil
}

func (m *DisperseBlobRequest) Unmarshal(b []byte) error {
	*m = DisperseBlobRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBytes(typ, b, &m.Data), nil
		case 2:
			p := new(SecurityParams)
			n, err := consumeMessage(typ, b, p)
			if n > 0 && err == nil {
				m.SecurityParams = append(m.SecurityParams, p)
			}
			return n, err
		case 3:
			return consumeUint32(typ, b, &m.TargetRowNum), nil
		}
		return 0, nil
	})
}

func (m *DisperseBlobReply) Marshal() ([]byte, error) {
	var b []byte
	b = appendStatus(b, 1, m.Result)
	b = appendBytes(b, 2, m.RequestID)
	return b, nil
}

func (m *DisperseBlobReply) Unmarshal(b []byte) error {
	*m = DisperseBlobReply{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStatus(typ, b, &m.Result), nil
		case 2:
			return consumeBytes(typ, b, &m.RequestID), nil
		}
		return 0, nil
	})
}

func (m *BlobStatusRequest) Marshal() ([]byte, error) {
	return appendBytes(nil, 1, m.RequestID), nil
}

func (m *BlobStatusRequest) Unmarshal(b []byte) error {
	*m = BlobStatusRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeBytes(typ, b, &m.RequestID), nil
		}
		return 0, nil
	})
}

func (m *BlobStatusReply) Marshal() ([]byte, error) {
	b := appendStatus(nil, 1, m.Status)
	if m.Info != nil {
		return appendMessage(b, 2, m.Info)
	}
	return b, nil
}

func (m *BlobStatusReply) Unmarshal(b []byte) error {
	*m = BlobStatusReply{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeStatus(typ, b, &m.Status), nil
		case 2:
			return consumeOptional(typ, b, &m.Info)
		}
		return 0, nil
	})
}

func (m *BlobInfo) Marshal() ([]byte, error) {
	var (
		b   []byte
		err error
	)
	if m.BlobHeader != nil {
		if b, err = appendMessage(b, 1, m.BlobHeader); err != nil {
			return nil, err
		}
	}
	if m.BlobVerificationProof != nil {
		if b, err = appendMessage(b, 2, m.BlobVerificationProof); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (m *BlobInfo) Unmarshal(b []byte) error {
	*m = BlobInfo{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeOptional(typ, b, &m.BlobHeader)
		case 2:
			return consumeOptional(typ, b, &m.BlobVerificationProof)
		}
		return 0, nil
	})
}

func (m *BlobHeader) Marshal() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.DataRoot)
	b = appendUint32(b, 2, m.Epoch)
	b = appendUint32(b, 3, m.QuorumID)
	return b, nil
}

func (m *BlobHeader) Unmarshal(b []byte) error {
	*m = BlobHeader{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBytes(typ, b, &m.DataRoot), nil
		case 2:
			return consumeUint32(typ, b, &m.Epoch), nil
		case 3:
			return consumeUint32(typ, b, &m.QuorumID), nil
		}
		return 0, nil
	})
}

func (m *BlobVerificationProof) Marshal() ([]byte, error) {
	var b []byte
	b = appendUint32(b, 1, m.BatchID)
	b = appendUint32(b, 2, m.BlobIndex)
	return b, nil
}

func (m *BlobVerificationProof) Unmarshal(b []byte) error {
	*m = BlobVerificationProof{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeUint32(typ, b, &m.BatchID), nil
		case 2:
			return consumeUint32(typ, b, &m.BlobIndex), nil
		}
		return 0, nil
	})
}

func (m *RetrieveBlobRequest) Marshal() ([]byte, error) {
	var b []byte
	b = appendBytes(b, 1, m.DataRoot)
	b = appendUint32(b, 2, m.Epoch)
	b = appendUint32(b, 3, m.QuorumID)
	return b, nil
}

func (m *RetrieveBlobRequest) Unmarshal(b []byte) error {
	*m = RetrieveBlobRequest{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		switch num {
		case 1:
			return consumeBytes(typ, b, &m.DataRoot), nil
		case 2:
			return consumeUint32(typ, b, &m.Epoch), nil
		case 3:
			return consumeUint32(typ, b, &m.QuorumID), nil
		}
		return 0, nil
	})
}

func (m *RetrieveBlobReply) Marshal() ([]byte, error) {
	return appendBytes(nil, 1, m.Data), nil
}

func (m *RetrieveBlobReply) Unmarshal(b []byte) error {
	*m = RetrieveBlobReply{}
	return decodeFields(b, func(num protowire.Number, typ protowire.Type, b []byte) (int, error) {
		if num == 1 {
			return consumeBytes(typ, b, &m.Data), nil
		}
		return 0, nil
	})
}
