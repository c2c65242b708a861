package mqtt5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeVarInt(t *testing.T) {
	tests := []struct {
		name     string
		input    uint32
		expected []byte
		wantErr  error
	}{
		{name: "zero", input: 0, expected: []byte{0x00}},
		{name: "max_single_byte", input: 127, expected: []byte{0x7F}},
		{name: "min_two_byte", input: 128, expected: []byte{0x80, 0x01}},
		{name: "max_two_byte", input: 16383, expected: []byte{0xFF, 0x7F}},
		{name: "min_three_byte", input: 16384, expected: []byte{0x80, 0x80, 0x01}},
		{name: "max_three_byte", input: 2097151, expected: []byte{0xFF, 0xFF, 0x7F}},
		{name: "min_four_byte", input: 2097152, expected: []byte{0x80, 0x80, 0x80, 0x01}},
		{name: "max_four_byte", input: 268435455, expected: []byte{0xFF, 0xFF, 0xFF, 0x7F}},
		{name: "exceeds_maximum", input: 268435456, wantErr: ErrVariableByteIntegerTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := encodeVarInt(tt.input)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
			assert.Equal(t, len(tt.expected), sizeVarInt(tt.input))
		})
	}
}

func TestDecodeVarInt(t *testing.T) {
	tests := []struct {
		name       string
		input      []byte
		expected   uint32
		wantN      int
		wantTrunc  bool
		wantMalform bool
	}{
		{name: "zero", input: []byte{0x00}, expected: 0, wantN: 1},
		{name: "two_bytes_128", input: []byte{0x80, 0x01}, expected: 128, wantN: 2},
		{name: "four_bytes_max", input: []byte{0xFF, 0xFF, 0xFF, 0x7F}, expected: 268435455, wantN: 4},
		{name: "trailing_data_ignored", input: []byte{0x7F, 0xFF, 0xFF}, expected: 127, wantN: 1},
		{name: "empty_input", input: []byte{}, wantTrunc: true},
		{name: "incomplete_two_bytes", input: []byte{0x80}, wantTrunc: true},
		{name: "five_bytes_malformed", input: []byte{0x80, 0x80, 0x80, 0x80, 0x01}, wantMalform: true},
		{name: "overlong_two_byte_zero", input: []byte{0x80, 0x00}, wantMalform: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, n, err := decodeVarInt(tt.input)
			switch {
			case tt.wantTrunc:
				var te *TruncatedError
				require.ErrorAs(t, err, &te)
			case tt.wantMalform:
				var me *MalformedError
				require.ErrorAs(t, err, &me)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.expected, value)
				assert.Equal(t, tt.wantN, n)
			}
		})
	}
}

func TestVarIntRoundtrip(t *testing.T) {
	for _, v := range []uint32{0, 1, 127, 128, 16383, 16384, 2097151, 2097152, 268435455} {
		encoded, err := encodeVarInt(v)
		require.NoError(t, err)

		decoded, n, err := decodeVarInt(encoded)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
		assert.Equal(t, len(encoded), n)
	}
}
