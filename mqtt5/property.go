package mqtt5

import "strconv"

// PropertyID identifies one of the MQTT 5.0 properties that can appear in
// a packet's property block.
type PropertyID byte

const (
	PropPayloadFormatIndicator          PropertyID = 0x01
	PropMessageExpiryInterval           PropertyID = 0x02
	PropContentType                     PropertyID = 0x03
	PropResponseTopic                   PropertyID = 0x08
	PropCorrelationData                 PropertyID = 0x09
	PropSubscriptionIdentifier          PropertyID = 0x0B
	PropSessionExpiryInterval           PropertyID = 0x11
	PropAssignedClientIdentifier        PropertyID = 0x12
	PropServerKeepAlive                 PropertyID = 0x13
	PropAuthenticationMethod            PropertyID = 0x15
	PropAuthenticationData              PropertyID = 0x16
	PropRequestProblemInformation       PropertyID = 0x17
	PropWillDelayInterval                PropertyID = 0x18
	PropRequestResponseInformation      PropertyID = 0x19
	PropResponseInformation              PropertyID = 0x1A
	PropServerReference                  PropertyID = 0x1C
	PropReasonString                     PropertyID = 0x1F
	PropReceiveMaximum                   PropertyID = 0x21
	PropTopicAliasMaximum                PropertyID = 0x22
	PropTopicAlias                        PropertyID = 0x23
	PropMaximumQoS                        PropertyID = 0x24
	PropRetainAvailable                   PropertyID = 0x25
	PropUserProperty                       PropertyID = 0x26
	PropMaximumPacketSize                  PropertyID = 0x27
	PropWildcardSubscriptionAvailable      PropertyID = 0x28
	PropSubscriptionIdentifierAvailable    PropertyID = 0x29
	PropSharedSubscriptionAvailable        PropertyID = 0x2A
)

// PropertyType is the wire encoding of a property's value.
type PropertyType byte

const (
	propertyTypeByte        PropertyType = 1
	propertyTypeTwoByteInt  PropertyType = 2
	propertyTypeFourByteInt PropertyType = 3
	propertyTypeVarInt      PropertyType = 4
	propertyTypeUTF8String  PropertyType = 5
	propertyTypeUTF8Pair    PropertyType = 6
	propertyTypeBinaryData  PropertyType = 7
)

// UserProperty is a single MQTT User Property: an ordered, repeatable
// name/value pair. Order and duplicates are preserved (spec.md §4.B) —
// unlike every other property except Subscription Identifier, which is
// collapsed to at most one value.
type UserProperty struct {
	Key   string
	Value string
}

// propertySpec describes one property's wire type, whether it may repeat,
// and which packet types may legally carry it. The ValidIn dimension is
// the real fix over the teacher's propertySpecs table, which had no
// per-packet-type legality at all — the teacher accepted any known
// property in any packet.
type propertySpec struct {
	Type     PropertyType
	Multiple bool
	ValidIn  map[PacketType]bool
}

func validIn(types ...PacketType) map[PacketType]bool {
	m := make(map[PacketType]bool, len(types))
	for _, t := range types {
		m[t] = true
	}
	return m
}

var propertySpecs = map[PropertyID]propertySpec{
	PropPayloadFormatIndicator: {
		Type: propertyTypeByte,
		ValidIn: validIn(TypePublish, TypeConnect),
	},
	PropMessageExpiryInterval: {
		Type: propertyTypeFourByteInt,
		ValidIn: validIn(TypePublish, TypeConnect),
	},
	PropContentType: {
		Type: propertyTypeUTF8String,
		ValidIn: validIn(TypePublish, TypeConnect),
	},
	PropResponseTopic: {
		Type: propertyTypeUTF8String,
		ValidIn: validIn(TypePublish, TypeConnect),
	},
	PropCorrelationData: {
		Type: propertyTypeBinaryData,
		ValidIn: validIn(TypePublish, TypeConnect),
	},
	PropSubscriptionIdentifier: {
		Type:     propertyTypeVarInt,
		Multiple: true,
		ValidIn:  validIn(TypePublish, TypeSubscribe),
	},
	PropSessionExpiryInterval: {
		Type:    propertyTypeFourByteInt,
		ValidIn: validIn(TypeConnect, TypeConnAck, TypeDisconnect),
	},
	PropAssignedClientIdentifier: {
		Type:    propertyTypeUTF8String,
		ValidIn: validIn(TypeConnAck),
	},
	PropServerKeepAlive: {
		Type:    propertyTypeTwoByteInt,
		ValidIn: validIn(TypeConnAck),
	},
	PropAuthenticationMethod: {
		Type:    propertyTypeUTF8String,
		ValidIn: validIn(TypeConnect, TypeConnAck, TypeAuth),
	},
	PropAuthenticationData: {
		Type:    propertyTypeBinaryData,
		ValidIn: validIn(TypeConnect, TypeConnAck, TypeAuth),
	},
	PropRequestProblemInformation: {
		Type:    propertyTypeByte,
		ValidIn: validIn(TypeConnect),
	},
	PropWillDelayInterval: {
		Type:    propertyTypeFourByteInt,
		ValidIn: validIn(TypeConnect),
	},
	PropRequestResponseInformation: {
		Type:    propertyTypeByte,
		ValidIn: validIn(TypeConnect),
	},
	PropResponseInformation: {
		Type:    propertyTypeUTF8String,
		ValidIn: validIn(TypeConnAck),
	},
	PropServerReference: {
		Type:    propertyTypeUTF8String,
		ValidIn: validIn(TypeConnAck, TypeDisconnect),
	},
	PropReasonString: {
		Type: propertyTypeUTF8String,
		ValidIn: validIn(TypeConnAck, TypePubAck, TypePubRec, TypePubRel, TypePubComp,
			TypeSubAck, TypeUnsubAck, TypeDisconnect, TypeAuth),
	},
	PropReceiveMaximum: {
		Type:    propertyTypeTwoByteInt,
		ValidIn: validIn(TypeConnect, TypeConnAck),
	},
	PropTopicAliasMaximum: {
		Type:    propertyTypeTwoByteInt,
		ValidIn: validIn(TypeConnect, TypeConnAck),
	},
	PropTopicAlias: {
		Type:    propertyTypeTwoByteInt,
		ValidIn: validIn(TypePublish),
	},
	PropMaximumQoS: {
		Type:    propertyTypeByte,
		ValidIn: validIn(TypeConnAck),
	},
	PropRetainAvailable: {
		Type:    propertyTypeByte,
		ValidIn: validIn(TypeConnAck),
	},
	PropUserProperty: {
		Type:     propertyTypeUTF8Pair,
		Multiple: true,
		ValidIn: validIn(TypeConnect, TypeConnAck, TypePublish, TypePubAck, TypePubRec,
			TypePubRel, TypePubComp, TypeSubscribe, TypeSubAck, TypeUnsubscribe,
			TypeUnsubAck, TypeDisconnect, TypeAuth),
	},
	PropMaximumPacketSize: {
		Type:    propertyTypeFourByteInt,
		ValidIn: validIn(TypeConnect, TypeConnAck),
	},
	PropWildcardSubscriptionAvailable: {
		Type:    propertyTypeByte,
		ValidIn: validIn(TypeConnAck),
	},
	PropSubscriptionIdentifierAvailable: {
		Type:    propertyTypeByte,
		ValidIn: validIn(TypeConnAck),
	},
	PropSharedSubscriptionAvailable: {
		Type:    propertyTypeByte,
		ValidIn: validIn(TypeConnAck),
	},
}

// rawProperty is one decoded (ID, value) pair before it is distributed
// into a packet's typed fields. Value holds byte, uint16, uint32,
// string, []byte, or UserProperty depending on the property's type.
type rawProperty struct {
	ID    PropertyID
	Value any
}

// wrapPropertyValueError adds which property identifier failed to decode
// to a string/binary-valued property's MalformedError, preserving its
// original ReasonCode and underlying cause. A *TruncatedError passes
// through unchanged: it is recoverable and must not be turned into a
// terminal malformed error.
func wrapPropertyValueError(id PropertyID, err error) error {
	if err == nil {
		return nil
	}
	me, ok := err.(*MalformedError)
	if !ok {
		return err
	}
	return malformedWrap(me.ReasonCode, "decoding value of property 0x"+strconv.FormatInt(int64(id), 16), me)
}

// decodePropertyBlock decodes a VBI-length-prefixed property block from
// the front of data, validating each property's legality for owner. Each
// violation is a MalformedError: an unknown property ID carries
// ReasonMalformedPacket; a property illegal for this packet type or a
// disallowed repeat carries ReasonProtocolError.
func decodePropertyBlock(data []byte, owner PacketType) ([]rawProperty, int, error) {
	length, n, err := decodeVarInt(data)
	if err != nil {
		return nil, 0, err
	}
	offset := n
	if len(data[offset:]) < int(length) {
		return nil, 0, newTruncatedError(int(length)-len(data[offset:]), nil)
	}

	end := offset + int(length)
	seen := make(map[PropertyID]bool)
	var props []rawProperty

	for offset < end {
		idByte, n, err := readU8(data[offset:])
		if err != nil {
			return nil, 0, err
		}
		offset += n

		id := PropertyID(idByte)
		spec, ok := propertySpecs[id]
		if !ok {
			return nil, 0, malformed(ReasonMalformedPacket, "unknown property identifier")
		}
		if !spec.ValidIn[owner] {
			return nil, 0, malformed(ReasonProtocolError, "property not valid for "+owner.String())
		}
		if seen[id] && !spec.Multiple {
			return nil, 0, malformed(ReasonProtocolError, "property must not appear more than once")
		}
		seen[id] = true

		var value any
		switch spec.Type {
		case propertyTypeByte:
			var b byte
			b, n, err = readU8(data[offset:])
			value = b
		case propertyTypeTwoByteInt:
			var v uint16
			v, n, err = readU16(data[offset:])
			value = v
		case propertyTypeFourByteInt:
			var v uint32
			v, n, err = readU32(data[offset:])
			value = v
		case propertyTypeVarInt:
			var v uint32
			v, n, err = decodeVarInt(data[offset:])
			value = v
		case propertyTypeUTF8String:
			var s string
			s, n, err = readUTF8String(data[offset:])
			err = wrapPropertyValueError(id, err)
			value = s
		case propertyTypeBinaryData:
			var b []byte
			b, n, err = readBinary(data[offset:])
			err = wrapPropertyValueError(id, err)
			value = b
		case propertyTypeUTF8Pair:
			var up UserProperty
			up, n, err = readStringPair(data[offset:])
			err = wrapPropertyValueError(id, err)
			value = up
		}
		if err != nil {
			return nil, 0, err
		}
		offset += n

		props = append(props, rawProperty{ID: id, Value: value})
	}
	if offset != end {
		return nil, 0, malformed(ReasonMalformedPacket, "property length does not match contained properties")
	}

	return props, offset, nil
}

func sizePropertyValue(spec propertySpec, value any) int {
	switch spec.Type {
	case propertyTypeByte:
		return 1
	case propertyTypeTwoByteInt:
		return 2
	case propertyTypeFourByteInt:
		return 4
	case propertyTypeVarInt:
		return sizeVarInt(value.(uint32))
	case propertyTypeUTF8String:
		return sizeUTF8String(value.(string))
	case propertyTypeBinaryData:
		return sizeBinary(value.([]byte))
	case propertyTypeUTF8Pair:
		return sizeStringPair(value.(UserProperty))
	}
	return 0
}

// sizePropertyBlock returns the total encoded size of props, including
// its own VBI length prefix.
func sizePropertyBlock(props []rawProperty) int {
	var body int
	for _, p := range props {
		body += 1 + sizePropertyValue(propertySpecs[p.ID], p.Value)
	}
	return sizeVarInt(uint32(body)) + body
}

func appendPropertyBlock(buf []byte, props []rawProperty) ([]byte, error) {
	var body int
	for _, p := range props {
		body += 1 + sizePropertyValue(propertySpecs[p.ID], p.Value)
	}
	buf, err := appendVarInt(buf, uint32(body))
	if err != nil {
		return nil, err
	}
	for _, p := range props {
		buf = appendU8(buf, byte(p.ID))
		switch propertySpecs[p.ID].Type {
		case propertyTypeByte:
			buf = appendU8(buf, p.Value.(byte))
		case propertyTypeTwoByteInt:
			buf = appendU16(buf, p.Value.(uint16))
		case propertyTypeFourByteInt:
			buf = appendU32(buf, p.Value.(uint32))
		case propertyTypeVarInt:
			buf, err = appendVarInt(buf, p.Value.(uint32))
			if err != nil {
				return nil, err
			}
		case propertyTypeUTF8String:
			buf, err = appendUTF8String(buf, p.Value.(string))
		case propertyTypeBinaryData:
			buf, err = appendBinary(buf, p.Value.([]byte))
		case propertyTypeUTF8Pair:
			buf, err = appendStringPair(buf, p.Value.(UserProperty))
		}
		if err != nil {
			return nil, err
		}
	}
	return buf, nil
}

// propertyGetters: convenience accessors used by per-packet decode logic
// to pull typed values back out of a decoded []rawProperty, collapsing
// the non-repeatable properties to their single value and leaving
// repeatable ones (user properties, subscription identifiers) as slices.

func getByteProp(props []rawProperty, id PropertyID) Optional[byte] {
	for _, p := range props {
		if p.ID == id {
			return Some(p.Value.(byte))
		}
	}
	return None[byte]()
}

func getU16Prop(props []rawProperty, id PropertyID) Optional[uint16] {
	for _, p := range props {
		if p.ID == id {
			return Some(p.Value.(uint16))
		}
	}
	return None[uint16]()
}

func getU32Prop(props []rawProperty, id PropertyID) Optional[uint32] {
	for _, p := range props {
		if p.ID == id {
			return Some(p.Value.(uint32))
		}
	}
	return None[uint32]()
}

func getStringProp(props []rawProperty, id PropertyID) Optional[string] {
	for _, p := range props {
		if p.ID == id {
			return Some(p.Value.(string))
		}
	}
	return None[string]()
}

func getBinaryProp(props []rawProperty, id PropertyID) Optional[[]byte] {
	for _, p := range props {
		if p.ID == id {
			return Some(p.Value.([]byte))
		}
	}
	return None[[]byte]()
}

func getVarIntProps(props []rawProperty, id PropertyID) []uint32 {
	var out []uint32
	for _, p := range props {
		if p.ID == id {
			out = append(out, p.Value.(uint32))
		}
	}
	return out
}

func getUserProperties(props []rawProperty) []UserProperty {
	var out []UserProperty
	for _, p := range props {
		if p.ID == PropUserProperty {
			out = append(out, p.Value.(UserProperty))
		}
	}
	return out
}

func appendByteProp(props []rawProperty, id PropertyID, v Optional[byte]) []rawProperty {
	if val, ok := v.Get(); ok {
		props = append(props, rawProperty{ID: id, Value: val})
	}
	return props
}

func appendU16Prop(props []rawProperty, id PropertyID, v Optional[uint16]) []rawProperty {
	if val, ok := v.Get(); ok {
		props = append(props, rawProperty{ID: id, Value: val})
	}
	return props
}

func appendU32Prop(props []rawProperty, id PropertyID, v Optional[uint32]) []rawProperty {
	if val, ok := v.Get(); ok {
		props = append(props, rawProperty{ID: id, Value: val})
	}
	return props
}

func appendStringProp(props []rawProperty, id PropertyID, v Optional[string]) []rawProperty {
	if val, ok := v.Get(); ok {
		props = append(props, rawProperty{ID: id, Value: val})
	}
	return props
}

func appendBinaryProp(props []rawProperty, id PropertyID, v Optional[[]byte]) []rawProperty {
	if val, ok := v.Get(); ok {
		props = append(props, rawProperty{ID: id, Value: val})
	}
	return props
}

func appendVarIntProps(props []rawProperty, id PropertyID, values []uint32) []rawProperty {
	for _, v := range values {
		props = append(props, rawProperty{ID: id, Value: v})
	}
	return props
}

func appendUserProperties(props []rawProperty, ups []UserProperty) []rawProperty {
	for _, up := range ups {
		props = append(props, rawProperty{ID: PropUserProperty, Value: up})
	}
	return props
}
