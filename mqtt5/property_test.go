package mqtt5

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

// genTopic produces topic names that are legal UTF-8 Encoded Strings:
// no null byte, no surrogate, short enough to keep generated packets
// small.
func genTopic(t *rapid.T) string {
	return rapid.StringMatching(`[a-zA-Z0-9/_-]{1,32}`).Draw(t, "topic")
}

func genPayload(t *rapid.T) []byte {
	return rapid.SliceOfN(rapid.Byte(), 0, 64).Draw(t, "payload")
}

func genPacketID(t *rapid.T) uint16 {
	return uint16(rapid.IntRange(1, 65535).Draw(t, "packetID"))
}

func genReasonCode(t *rapid.T, legal []ReasonCode) ReasonCode {
	return legal[rapid.IntRange(0, len(legal)-1).Draw(t, "reasonCode")]
}

func genConnectPacket(t *rapid.T) *ConnectPacket {
	clientID := rapid.StringMatching(`[a-zA-Z0-9]{0,23}`).Draw(t, "clientID")
	cleanStart := clientID == "" || rapid.Bool().Draw(t, "cleanStart")
	keepAlive := uint16(rapid.IntRange(0, 65535).Draw(t, "keepAlive"))
	p, err := NewConnectPacket(clientID, cleanStart, keepAlive)
	if err != nil {
		t.Fatalf("NewConnectPacket: %v", err)
	}
	return p
}

func genConnAckPacket(t *rapid.T) *ConnAckPacket {
	code := genReasonCode(t, []ReasonCode{ReasonSuccess, ReasonUnspecifiedError, ReasonBanned, ReasonServerBusy})
	sessionPresent := code == ReasonSuccess && rapid.Bool().Draw(t, "sessionPresent")
	p, err := NewConnAckPacket(sessionPresent, code)
	if err != nil {
		t.Fatalf("NewConnAckPacket: %v", err)
	}
	return p
}

func genPublishPacket(t *rapid.T) *PublishPacket {
	qos := QoS(rapid.IntRange(0, 2).Draw(t, "qos"))
	var packetID uint16
	if qos > AtMostOnce {
		packetID = genPacketID(t)
	}
	p, err := NewPublishPacket(genTopic(t), qos, packetID, genPayload(t))
	if err != nil {
		t.Fatalf("NewPublishPacket: %v", err)
	}
	p.Dup = rapid.Bool().Draw(t, "dup") && qos > AtMostOnce
	p.Retain = rapid.Bool().Draw(t, "retain")
	return p
}

func genPubAckPacket(t *rapid.T) *PubAckPacket {
	code := genReasonCode(t, []ReasonCode{ReasonSuccess, ReasonNoMatchingSubscribers, ReasonUnspecifiedError})
	p, err := NewPubAckPacket(genPacketID(t), code)
	if err != nil {
		t.Fatalf("NewPubAckPacket: %v", err)
	}
	return p
}

func genPubRecPacket(t *rapid.T) *PubRecPacket {
	code := genReasonCode(t, []ReasonCode{ReasonSuccess, ReasonNoMatchingSubscribers, ReasonUnspecifiedError})
	p, err := NewPubRecPacket(genPacketID(t), code)
	if err != nil {
		t.Fatalf("NewPubRecPacket: %v", err)
	}
	return p
}

func genPubRelPacket(t *rapid.T) *PubRelPacket {
	code := genReasonCode(t, []ReasonCode{ReasonSuccess, ReasonPacketIdentifierNotFound})
	p, err := NewPubRelPacket(genPacketID(t), code)
	if err != nil {
		t.Fatalf("NewPubRelPacket: %v", err)
	}
	return p
}

func genPubCompPacket(t *rapid.T) *PubCompPacket {
	code := genReasonCode(t, []ReasonCode{ReasonSuccess, ReasonPacketIdentifierNotFound})
	p, err := NewPubCompPacket(genPacketID(t), code)
	if err != nil {
		t.Fatalf("NewPubCompPacket: %v", err)
	}
	return p
}

func genSubscribePacket(t *rapid.T) *SubscribePacket {
	n := rapid.IntRange(1, 4).Draw(t, "numSubs")
	subs := make([]Subscription, n)
	for i := range subs {
		subs[i] = Subscription{
			TopicFilter:       genTopic(t),
			QoS:               QoS(rapid.IntRange(0, 2).Draw(t, "subQoS")),
			NoLocal:           rapid.Bool().Draw(t, "noLocal"),
			RetainAsPublished: rapid.Bool().Draw(t, "retainAsPublished"),
			RetainHandling:    RetainHandling(rapid.IntRange(0, 2).Draw(t, "retainHandling")),
		}
	}
	p, err := NewSubscribePacket(genPacketID(t), subs)
	if err != nil {
		t.Fatalf("NewSubscribePacket: %v", err)
	}
	return p
}

func genSubAckPacket(t *rapid.T) *SubAckPacket {
	legal := []ReasonCode{ReasonGrantedQoS0, ReasonGrantedQoS1, ReasonGrantedQoS2, ReasonUnspecifiedError}
	n := rapid.IntRange(1, 4).Draw(t, "numCodes")
	codes := make([]ReasonCode, n)
	for i := range codes {
		codes[i] = genReasonCode(t, legal)
	}
	p, err := NewSubAckPacket(genPacketID(t), codes)
	if err != nil {
		t.Fatalf("NewSubAckPacket: %v", err)
	}
	return p
}

func genUnsubscribePacket(t *rapid.T) *UnsubscribePacket {
	n := rapid.IntRange(1, 4).Draw(t, "numFilters")
	filters := make([]string, n)
	for i := range filters {
		filters[i] = genTopic(t)
	}
	p, err := NewUnsubscribePacket(genPacketID(t), filters)
	if err != nil {
		t.Fatalf("NewUnsubscribePacket: %v", err)
	}
	return p
}

func genUnsubAckPacket(t *rapid.T) *UnsubAckPacket {
	legal := []ReasonCode{ReasonSuccess, ReasonNoSubscriptionExisted, ReasonUnspecifiedError}
	n := rapid.IntRange(1, 4).Draw(t, "numCodes")
	codes := make([]ReasonCode, n)
	for i := range codes {
		codes[i] = genReasonCode(t, legal)
	}
	p, err := NewUnsubAckPacket(genPacketID(t), codes)
	if err != nil {
		t.Fatalf("NewUnsubAckPacket: %v", err)
	}
	return p
}

func genPingReqPacket(t *rapid.T) *PingReqPacket { return NewPingReqPacket() }

func genPingRespPacket(t *rapid.T) *PingRespPacket { return NewPingRespPacket() }

func genDisconnectPacket(t *rapid.T) *DisconnectPacket {
	legal := []ReasonCode{ReasonNormalDisconnection, ReasonDisconnectWithWillMessage, ReasonUnspecifiedError, ReasonServerBusy}
	p, err := NewDisconnectPacket(genReasonCode(t, legal))
	if err != nil {
		t.Fatalf("NewDisconnectPacket: %v", err)
	}
	return p
}

func genAuthPacket(t *rapid.T) *AuthPacket {
	legal := []ReasonCode{ReasonSuccess, ReasonContinueAuthentication, ReasonReAuthenticate}
	p, err := NewAuthPacket(genReasonCode(t, legal))
	if err != nil {
		t.Fatalf("NewAuthPacket: %v", err)
	}
	return p
}

// genPacket draws one of all fifteen packet types, uniformly at random.
func genPacket(t *rapid.T) Packet {
	switch rapid.IntRange(0, 14).Draw(t, "packetType") {
	case 0:
		return genConnectPacket(t)
	case 1:
		return genConnAckPacket(t)
	case 2:
		return genPublishPacket(t)
	case 3:
		return genPubAckPacket(t)
	case 4:
		return genPubRecPacket(t)
	case 5:
		return genPubRelPacket(t)
	case 6:
		return genPubCompPacket(t)
	case 7:
		return genSubscribePacket(t)
	case 8:
		return genSubAckPacket(t)
	case 9:
		return genUnsubscribePacket(t)
	case 10:
		return genUnsubAckPacket(t)
	case 11:
		return genPingReqPacket(t)
	case 12:
		return genPingRespPacket(t)
	case 13:
		return genDisconnectPacket(t)
	default:
		return genAuthPacket(t)
	}
}

// cmpUnexported lists every type carrying unexported fields that can
// appear inside a generated Packet, so cmp.Diff can see through them.
// Kept in sync with packet_test.go's roundtrip helper.
var cmpUnexported = cmp.AllowUnexported(ackPacket{}, Optional[byte]{}, Optional[uint16]{}, Optional[uint32]{}, Optional[string]{}, Optional[[]byte]{}, Optional[Will]{})

// TestPropertyRoundtrip is spec.md §8 P1 (Roundtrip): decode(encode(p)) == p,
// checked across all fifteen packet types.
func TestPropertyRoundtrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPacket(t)

		encoded, err := Write(p)
		if err != nil {
			t.Fatalf("Write: %v", err)
		}

		decoded, n, err := Read(encoded)
		if err != nil {
			t.Fatalf("Read: %v", err)
		}
		if n != len(encoded) {
			t.Fatalf("Read consumed %d of %d bytes", n, len(encoded))
		}
		if diff := cmp.Diff(p, decoded, cmpUnexported); diff != "" {
			t.Fatalf("roundtrip mismatch (-want +got):\n%s", diff)
		}
	})
}

// TestPropertyDeterminism is spec.md §8 P2: write(p) always produces the
// same bytes, and write(p) == write_into(buf, p) regardless of the
// buffer's pre-existing contents.
func TestPropertyDeterminism(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPacket(t)

		a, err := Write(p)
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		b, err := Write(p)
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if string(a) != string(b) {
			t.Fatalf("Write is not deterministic: %x != %x", a, b)
		}

		prefix := rapid.SliceOfN(rapid.Byte(), 0, 16).Draw(t, "prefix")
		buf := append([]byte{}, prefix...)
		out, n, err := WriteInto(p, buf)
		if err != nil {
			t.Fatalf("WriteInto: %v", err)
		}
		if n != len(a) {
			t.Fatalf("WriteInto appended %d bytes, Write produced %d", n, len(a))
		}
		if string(out[len(prefix):]) != string(a) {
			t.Fatalf("WriteInto diverged from Write: %x != %x", out[len(prefix):], a)
		}
	})
}

// TestPropertyTruncationDetected is spec.md §8 P3: any strict prefix of
// an encoded packet's bytes is reported as truncated, never malformed
// or silently wrong.
func TestPropertyTruncationDetected(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPacket(t)
		full, err := Write(p)
		if err != nil {
			t.Fatalf("Write: %v", err)
		}
		if len(full) < 2 {
			return
		}

		cut := rapid.IntRange(1, len(full)-1).Draw(t, "cut")
		_, _, err = Read(full[:cut])
		if err == nil {
			t.Fatalf("Read(truncated to %d/%d bytes) unexpectedly succeeded", cut, len(full))
		}
		var te *TruncatedError
		if !isTruncated(err, &te) {
			t.Fatalf("Read(truncated) returned %T, want *TruncatedError: %v", err, err)
		}
	})
}

func isTruncated(err error, target **TruncatedError) bool {
	for err != nil {
		if te, ok := err.(*TruncatedError); ok {
			*target = te
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// TestPropertyNoTrailingGarbage checks the framing side of spec.md §8 P4:
// bytes appended after an encoded packet are never consumed — n always
// accounts for exactly the fixed header plus remaining length. Leftover
// bytes inside the declared boundary are not exercised here.
func TestPropertyNoTrailingGarbage(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := genPacket(t)
		encoded, err := Write(p)
		require.NoError(t, err)

		extra := rapid.SliceOfN(rapid.Byte(), 0, 8).Draw(t, "extra")
		padded := append(append([]byte{}, encoded...), extra...)

		_, n, err := Read(padded)
		require.NoError(t, err)
		require.Equal(t, len(encoded), n)
	})
}
