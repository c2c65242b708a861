package mqtt5

import "io"

// Primitive readers/writers for the MQTT 5.0 wire types used by the fixed
// and variable headers, properties, and payloads: one byte, two-byte and
// four-byte big-endian integers, length-prefixed UTF-8 strings, raw
// binary data, and UTF-8 string pairs.

func readU8(data []byte) (byte, int, error) {
	if len(data) < 1 {
		return 0, 0, newTruncatedError(1, io.ErrUnexpectedEOF)
	}
	return data[0], 1, nil
}

func readU16(data []byte) (uint16, int, error) {
	if len(data) < 2 {
		return 0, 0, newTruncatedError(2-len(data), io.ErrUnexpectedEOF)
	}
	return uint16(data[0])<<8 | uint16(data[1]), 2, nil
}

func readU32(data []byte) (uint32, int, error) {
	if len(data) < 4 {
		return 0, 0, newTruncatedError(4-len(data), io.ErrUnexpectedEOF)
	}
	return uint32(data[0])<<24 | uint32(data[1])<<16 | uint32(data[2])<<8 | uint32(data[3]), 4, nil
}

// readBinary reads a u16-length-prefixed blob of raw bytes (MQTT "Binary
// Data"). The returned slice is a copy; data is never aliased past the
// call since callers may reuse their input buffer.
func readBinary(data []byte) ([]byte, int, error) {
	length, n, err := readU16(data)
	if err != nil {
		return nil, 0, err
	}
	offset := n
	if len(data[offset:]) < int(length) {
		return nil, 0, newTruncatedError(int(length)-len(data[offset:]), io.ErrUnexpectedEOF)
	}
	if length == 0 {
		return []byte{}, offset, nil
	}
	buf := make([]byte, length)
	copy(buf, data[offset:offset+int(length)])
	return buf, offset + int(length), nil
}

// readUTF8String reads a u16-length-prefixed UTF-8 string and validates it
// per spec.md §3.1 / §4.A: valid UTF-8, no embedded null, no unpaired
// surrogate code points.
func readUTF8String(data []byte) (string, int, error) {
	length, n, err := readU16(data)
	if err != nil {
		return "", 0, err
	}
	offset := n
	if len(data[offset:]) < int(length) {
		return "", 0, newTruncatedError(int(length)-len(data[offset:]), io.ErrUnexpectedEOF)
	}
	if length == 0 {
		return "", offset, nil
	}
	raw := data[offset : offset+int(length)]
	if err := validateUTF8String(raw); err != nil {
		return "", 0, err
	}
	return string(raw), offset + int(length), nil
}

// readStringPair reads two back-to-back UTF-8 strings (a "UTF-8 String
// Pair"), used for user properties.
func readStringPair(data []byte) (UserProperty, int, error) {
	key, n, err := readUTF8String(data)
	if err != nil {
		return UserProperty{}, 0, err
	}
	offset := n
	value, n2, err := readUTF8String(data[offset:])
	if err != nil {
		return UserProperty{}, 0, err
	}
	offset += n2
	return UserProperty{Key: key, Value: value}, offset, nil
}

func appendU8(buf []byte, v byte) []byte {
	return append(buf, v)
}

func appendU16(buf []byte, v uint16) []byte {
	return append(buf, byte(v>>8), byte(v))
}

func appendU32(buf []byte, v uint32) []byte {
	return append(buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// maxBinaryLength is the largest length a u16-BE length prefix can carry
// (spec.md §3.1: "length ≤ 65535"). appendBinary/appendUTF8String are the
// single choke point every string/binary field passes through on the way
// to the wire, so the check belongs here rather than repeated in every
// packet constructor.
const maxBinaryLength = 65535

func appendBinary(buf []byte, v []byte) ([]byte, error) {
	if len(v) > maxBinaryLength {
		return nil, ErrFieldTooLong
	}
	buf = appendU16(buf, uint16(len(v)))
	return append(buf, v...), nil
}

func appendUTF8String(buf []byte, v string) ([]byte, error) {
	if len(v) > maxBinaryLength {
		return nil, ErrFieldTooLong
	}
	buf = appendU16(buf, uint16(len(v)))
	return append(buf, v...), nil
}

func appendStringPair(buf []byte, p UserProperty) ([]byte, error) {
	buf, err := appendUTF8String(buf, p.Key)
	if err != nil {
		return nil, err
	}
	return appendUTF8String(buf, p.Value)
}

func sizeUTF8String(s string) int  { return 2 + len(s) }
func sizeBinary(b []byte) int      { return 2 + len(b) }
func sizeStringPair(p UserProperty) int {
	return sizeUTF8String(p.Key) + sizeUTF8String(p.Value)
}
