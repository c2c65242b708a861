package mqtt5

import "testing"

// FuzzRead seeds the corpus with the fixed-header byte patterns from
// spec.md §8's literal test vectors plus the malformed-encoding cases
// original_source/tests/test_errors.py exercises (overlong VBI, 5th
// continuation byte, unsupported protocol version). Read must never
// panic and must always classify failures as either TruncatedError or
// MalformedError.
func FuzzRead(f *testing.F) {
	seeds := [][]byte{
		{0x10, 0x00},
		{0x20, 0x02, 0x00, 0x00},
		{0x30, 0x00},
		{0x3D, 0x08},
		{0x40, 0x02, 0x00, 0x01},
		{0x50, 0x02, 0x00, 0x01},
		{0x62, 0x02, 0x00, 0x01},
		{0x70, 0x02, 0x00, 0x01},
		{0x82, 0x05, 0x00, 0x01, 0x00, 0x02, 0x00},
		{0x90, 0x03, 0x00, 0x01, 0x00},
		{0xA2, 0x04, 0x00, 0x01, 0x00, 0x00},
		{0xB0, 0x02, 0x00, 0x01},
		{0xC0, 0x00},
		{0xD0, 0x00},
		{0xE0, 0x00},
		{0xF0, 0x02, 0x00, 0x00},
		{0x00, 0x00},                                           // reserved packet type
		{0x10, 0x80, 0x80, 0x80, 0x80, 0x01},                   // 5th continuation byte
		{0x10, 0x80, 0x00},                                      // overlong remaining-length VBI
		{0x36, 0x02, 0x00, 0x00},                                // PUBLISH QoS 3 bits (reserved combination)
		{0x10, 0x07, 0x00, 0x04, 'M', 'Q', 'T', 'T', 0x04},      // unsupported protocol version
	}
	for _, s := range seeds {
		f.Add(s)
	}

	f.Fuzz(func(t *testing.T, data []byte) {
		defer func() {
			if r := recover(); r != nil {
				t.Fatalf("Read panicked on input %x: %v", data, r)
			}
		}()

		pkt, n, err := Read(data)
		if err != nil {
			switch err.(type) {
			case *TruncatedError, *MalformedError:
			default:
				t.Fatalf("Read returned an unclassified error type %T: %v", err, err)
			}
			return
		}
		if n <= 0 || n > len(data) {
			t.Fatalf("Read reported consuming %d bytes out of %d", n, len(data))
		}
		if pkt == nil {
			t.Fatalf("Read returned a nil packet with no error")
		}

		reencoded, err := Write(pkt)
		if err != nil {
			t.Fatalf("Write failed on a packet Read just accepted: %v", err)
		}
		if string(reencoded) != string(data[:n]) {
			t.Fatalf("Write(Read(data)) != data[:n]: got %x, want %x", reencoded, data[:n])
		}
	})
}
