package mqtt5

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUTF8String(t *testing.T) {
	tests := []struct {
		name    string
		input   []byte
		wantErr bool
	}{
		{name: "empty", input: []byte{}},
		{name: "ascii", input: []byte("hello/world")},
		{name: "multibyte", input: []byte("caf\xc3\xa9")},
		{name: "null_byte", input: []byte{'a', 0x00, 'b'}, wantErr: true},
		{name: "invalid_utf8", input: []byte{0xFF, 0xFE}, wantErr: true},
		{name: "surrogate", input: []byte{0xED, 0xA0, 0x80}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateUTF8String(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				var me *MalformedError
				assert.ErrorAs(t, err, &me)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestReadUTF8String(t *testing.T) {
	data, err := appendUTF8String(nil, "hello")
	require.NoError(t, err)
	s, n, err := readUTF8String(data)
	require.NoError(t, err)
	assert.Equal(t, "hello", s)
	assert.Equal(t, len(data), n)
}

func TestReadUTF8StringTruncated(t *testing.T) {
	_, _, err := readUTF8String([]byte{0x00, 0x05, 'h', 'i'})
	var te *TruncatedError
	require.ErrorAs(t, err, &te)
}
