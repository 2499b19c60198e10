package disperser

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	"google.golang.org/protobuf/encoding/protowire"
)

// codecName is reported as the gRPC content-subtype. Disperser messages are
// plain protobuf on the wire, so a protobuf server accepts them as-is.
const codecName = "proto"

type codec struct{}

// Codec returns the gRPC codec for disperser messages. Clients pass it with
// grpc.ForceCodec, servers with grpc.ForceServerCodec.
func Codec() encoding.Codec { return codec{} }

func (codec) Marshal(v any) ([]byte, error) {
	m, ok := v.(Message)
	if !ok {
		return nil, fmt.Errorf("disperser codec: cannot marshal %T", v)
	}
	return m.Marshal()
}

func (codec) Unmarshal(data []byte, v any) error {
	m, ok := v.(Message)
	if !ok {
		return fmt.Errorf("disperser codec: cannot unmarshal into %T", v)
	}
	return m.Unmarshal(data)
}

func (codec) Name() string { return codecName }

// fieldDecoder consumes the value of one field and reports how many bytes it
// used. Returning 0 leaves the field to be skipped as unknown.
type fieldDecoder func(num protowire.Number, typ protowire.Type, b []byte) (int, error)

func decodeFields(b []byte, fn fieldDecoder) error {
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]

		n, err := fn(num, typ, b)
		if err != nil {
			return err
		}
		if n == 0 {
			n = protowire.ConsumeFieldValue(num, typ, b)
		}
		if n < 0 {
			return protowire.ParseError(n)
		}
		b = b[n:]
	}
	return nil
}

func appendBytes(b []byte, num protowire.Number, v []byte) []byte {
	if len(v) == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v)
}

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

func appendStatus(b []byte, num protowire.Number, v BlobStatus) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	// enums are int32 on the wire; negative values sign-extend to 64 bits
	return protowire.AppendVarint(b, uint64(int64(v)))
}

func appendMessage(b []byte, num protowire.Number, m Message) ([]byte, error) {
	v, err := m.Marshal()
	if err != nil {
		return nil, err
	}
	b = protowire.AppendTag(b, num, protowire.BytesType)
	return protowire.AppendBytes(b, v), nil
}

func consumeBytes(typ protowire.Type, b []byte, dst *[]byte) int {
	if typ != protowire.BytesType {
		return 0
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n
	}
	// gRPC may reuse the receive buffer
	*dst = append([]byte(nil), v...)
	return n
}

func consumeUint32(typ protowire.Type, b []byte, dst *uint32) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n
	}
	*dst = uint32(v)
	return n
}

func consumeStatus(typ protowire.Type, b []byte, dst *BlobStatus) int {
	if typ != protowire.VarintType {
		return 0
	}
	v, n := protowire.ConsumeVarint(b)
	if n < 0 {
		return n
	}
	*dst = BlobStatus(int32(v))
	return n
}

func consumeMessage(typ protowire.Type, b []byte, m Message) (int, error) {
	if typ != protowire.BytesType {
		return 0, nil
	}
	v, n := protowire.ConsumeBytes(b)
	if n < 0 {
		return n, nil
	}
	if err := m.Unmarshal(v); err != nil {
		return n, err
	}
	return n, nil
}

// consumeOptional decodes a singular embedded message and stores it in dst
// only when the field was well formed.
func consumeOptional[T any, P interface {
	*T
	Message
}](typ protowire.Type, b []byte, dst *P) (int, error) {
	msg := P(new(T))
	n, err := consumeMessage(typ, b, msg)
	if n > 0 && err == nil {
		*dst = msg
	}
	return n, err
}
