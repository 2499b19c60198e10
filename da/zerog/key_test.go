package zerog

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evstack/zerog-da/da"
)

func TestReferenceKey_RoundTrip(t *testing.T) {
	allBytes := make([]byte, 256)
	for i := range allBytes {
		allBytes[i] = byte(i)
	}

	cases := map[string]ReferenceKey{
		"typical":       {RequestID: []byte("request-1"), DataRoot: []byte{1, 2, 3}, Epoch: 5, QuorumID: 1},
		"zero numbers":  {RequestID: []byte{0}, DataRoot: []byte{0}, Epoch: 0, QuorumID: 0},
		"max numbers":   {RequestID: []byte{255}, DataRoot: []byte{255}, Epoch: math.MaxUint32, QuorumID: math.MaxUint32},
		"every byte":    {RequestID: allBytes, DataRoot: allBytes, Epoch: 1, QuorumID: 2},
		"empty root":    {RequestID: []byte("id"), DataRoot: []byte{}, Epoch: 9, QuorumID: 3},
		"32 byte root":  {RequestID: []byte("id"), DataRoot: []byte(strings.Repeat("r", 32)), Epoch: 1, QuorumID: 0},
		"long id bytes": {RequestID: []byte(strings.Repeat("x", 1024)), DataRoot: []byte{7}, Epoch: 2, QuorumID: 4},
	}

	for name, want := range cases {
		t.Run(name, func(t *testing.T) {
			s, err := want.Encode()
			require.NoError(t, err)

			got, err := DecodeReferenceKey(s)
			require.NoError(t, err)
			assert.Equal(t, want, got)
		})
	}
}

func TestReferenceKey_EncodingFormat(t *testing.T) {
	k := ReferenceKey{RequestID: []byte{1, 2}, DataRoot: []byte{255, 0}, Epoch: 10, QuorumID: 3}

	s, err := k.Encode()
	require.NoError(t, err)
	assert.Equal(t, `{"id":[1,2],"data_root":[255,0],"epoch":10,"quorum_id":3}`, s)
}

func TestDecodeReferenceKey_Compatible(t *testing.T) {
	// pretty printed, reordered and carrying a field this client does not know
	s := `{
		"quorum_id": 0,
		"epoch": 4294967295,
		"data_root": [ 9, 8 ],
		"id": [ 104, 105 ],
		"extra": true
	}`

	got, err := DecodeReferenceKey(s)
	require.NoError(t, err)
	assert.Equal(t, ReferenceKey{RequestID: []byte("hi"), DataRoot: []byte{9, 8}, Epoch: math.MaxUint32, QuorumID: 0}, got)
}

func TestDecodeReferenceKey_Malformed(t *testing.T) {
	cases := map[string]string{
		"not a key":         "not-a-key",
		"empty":             "",
		"null":              "null",
		"array":             `[1,2,3]`,
		"string":            `"key"`,
		"missing id":        `{"data_root":[1],"epoch":1,"quorum_id":1}`,
		"missing root":      `{"id":[1],"epoch":1,"quorum_id":1}`,
		"missing epoch":     `{"id":[1],"data_root":[1],"quorum_id":1}`,
		"missing quorum":    `{"id":[1],"data_root":[1],"epoch":1}`,
		"null id":           `{"id":null,"data_root":[1],"epoch":1,"quorum_id":1}`,
		"empty id":          `{"id":[],"data_root":[1],"epoch":1,"quorum_id":1}`,
		"base64 id":         `{"id":"AQI=","data_root":[1],"epoch":1,"quorum_id":1}`,
		"byte too large":    `{"id":[256],"data_root":[1],"epoch":1,"quorum_id":1}`,
		"negative byte":     `{"id":[1],"data_root":[-1],"epoch":1,"quorum_id":1}`,
		"fractional byte":   `{"id":[1.5],"data_root":[1],"epoch":1,"quorum_id":1}`,
		"negative epoch":    `{"id":[1],"data_root":[1],"epoch":-1,"quorum_id":1}`,
		"epoch overflow":    `{"id":[1],"data_root":[1],"epoch":4294967296,"quorum_id":1}`,
		"string quorum":     `{"id":[1],"data_root":[1],"epoch":1,"quorum_id":"1"}`,
		"trailing data":     `{"id":[1],"data_root":[1],"epoch":1,"quorum_id":1}{}`,
		"truncated":         `{"id":[1],"data_root":[1],"epoch":1,`,
		"nested byte array": `{"id":[[1]],"data_root":[1],"epoch":1,"quorum_id":1}`,
		"mixed case names":  `{"ID":[1],"Data_Root":[2],"EPOCH":3,"Quorum_Id":4}`,
		"upper case id":     `{"Id":[1],"data_root":[2],"epoch":3,"quorum_id":4}`,
		"null root":         `{"id":[1],"data_root":null,"epoch":1,"quorum_id":1}`,
		"null epoch":        `{"id":[1],"data_root":[1],"epoch":null,"quorum_id":1}`,
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := DecodeReferenceKey(input)
			require.ErrorIs(t, err, da.ErrMalformedReferenceKey)
			assert.Equal(t, ReferenceKey{}, got, "decode must not partially succeed")
		})
	}
}

func TestReferenceKey_EncodeRequiresRequestID(t *testing.T) {
	_, err := ReferenceKey{DataRoot: []byte{1}}.Encode()
	require.ErrorIs(t, err, da.ErrMalformedReferenceKey)
}
