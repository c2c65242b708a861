package mqtt5

// ackPacket is the shared shape of PUBACK, PUBREC, PUBREL and PUBCOMP:
// a packet identifier, a reason code, and an optional property block.
// All four support the short-form encoding (spec.md §4.D): when the
// reason code is Success/0x00 and there are no properties, the packet
// may be just the 2-byte packet identifier with remaining length 2.
type ackPacket struct {
	PacketID      uint16
	ReasonCode    ReasonCode
	ReasonString  Optional[string]
	UserProperties []UserProperty
}

func newAckPacket(t PacketType, packetID uint16, code ReasonCode) (ackPacket, error) {
	if packetID == 0 {
		return ackPacket{}, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if err := validateReasonCode(t, code); err != nil {
		return ackPacket{}, err
	}
	return ackPacket{PacketID: packetID, ReasonCode: code}, nil
}

func decodeAckPacket(t PacketType, data []byte, fh FixedHeader) (ackPacket, error) {
	packetID, n, err := readU16(data)
	if err != nil {
		return ackPacket{}, err
	}
	if packetID == 0 {
		return ackPacket{}, malformed(ReasonMalformedPacket, "packet identifier must be non-zero")
	}
	offset := n

	if fh.RemainingLength == 2 {
		return ackPacket{PacketID: packetID, ReasonCode: ReasonSuccess}, nil
	}

	code, n, err := readU8(data[offset:])
	if err != nil {
		return ackPacket{}, err
	}
	offset += n
	reasonCode := ReasonCode(code)
	if err := validateReasonCode(t, reasonCode); err != nil {
		return ackPacket{}, err
	}

	if fh.RemainingLength == 3 {
		return ackPacket{PacketID: packetID, ReasonCode: reasonCode}, nil
	}

	props, n, err := decodePropertyBlock(data[offset:], t)
	if err != nil {
		return ackPacket{}, err
	}
	offset += n
	if offset != len(data) {
		return ackPacket{}, malformed(ReasonMalformedPacket, "trailing bytes in "+t.String()+" payload")
	}

	return ackPacket{
		PacketID:       packetID,
		ReasonCode:     reasonCode,
		ReasonString:   getStringProp(props, PropReasonString),
		UserProperties: getUserProperties(props),
	}, nil
}

func (a ackPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendStringProp(props, PropReasonString, a.ReasonString)
	props = appendUserProperties(props, a.UserProperties)
	return props
}

// shortFormEligible reports whether a may be encoded using the 2-byte
// short form: success reason code and no properties at all.
func (a ackPacket) shortFormEligible() bool {
	_, hasReasonString := a.ReasonString.Get()
	return a.ReasonCode == ReasonSuccess && !hasReasonString && len(a.UserProperties) == 0
}

func (a ackPacket) write(buf []byte, t PacketType, flags byte) ([]byte, error) {
	if a.PacketID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}

	var body []byte
	body = appendU16(body, a.PacketID)

	if a.shortFormEligible() {
		var err error
		buf, err = encodeFixedHeader(buf, t, flags, uint32(len(body)))
		if err != nil {
			return nil, err
		}
		return append(buf, body...), nil
	}

	body = appendU8(body, byte(a.ReasonCode))
	var err error
	body, err = appendPropertyBlock(body, a.properties())
	if err != nil {
		return nil, err
	}

	buf, err = encodeFixedHeader(buf, t, flags, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}

// PubAckPacket is the MQTT 5.0 PUBACK packet.
type PubAckPacket struct{ ackPacket }

func (*PubAckPacket) isPacket()        {}
func (*PubAckPacket) Type() PacketType { return TypePubAck }

// NewPubAckPacket constructs a PUBACK packet.
func NewPubAckPacket(packetID uint16, code ReasonCode) (*PubAckPacket, error) {
	a, err := newAckPacket(TypePubAck, packetID, code)
	if err != nil {
		return nil, err
	}
	return &PubAckPacket{a}, nil
}

func decodePubAckPacket(data []byte, fh FixedHeader) (*PubAckPacket, error) {
	a, err := decodeAckPacket(TypePubAck, data, fh)
	if err != nil {
		return nil, err
	}
	return &PubAckPacket{a}, nil
}

func (p *PubAckPacket) write(buf []byte) ([]byte, error) { return p.ackPacket.write(buf, TypePubAck, 0) }

// PubRecPacket is the MQTT 5.0 PUBREC packet.
type PubRecPacket struct{ ackPacket }

func (*PubRecPacket) isPacket()        {}
func (*PubRecPacket) Type() PacketType { return TypePubRec }

// NewPubRecPacket constructs a PUBREC packet.
func NewPubRecPacket(packetID uint16, code ReasonCode) (*PubRecPacket, error) {
	a, err := newAckPacket(TypePubRec, packetID, code)
	if err != nil {
		return nil, err
	}
	return &PubRecPacket{a}, nil
}

func decodePubRecPacket(data []byte, fh FixedHeader) (*PubRecPacket, error) {
	a, err := decodeAckPacket(TypePubRec, data, fh)
	if err != nil {
		return nil, err
	}
	return &PubRecPacket{a}, nil
}

func (p *PubRecPacket) write(buf []byte) ([]byte, error) { return p.ackPacket.write(buf, TypePubRec, 0) }

// PubRelPacket is the MQTT 5.0 PUBREL packet. Its fixed-header flags are
// fixed at 0b0010 (spec.md I4).
type PubRelPacket struct{ ackPacket }

func (*PubRelPacket) isPacket()        {}
func (*PubRelPacket) Type() PacketType { return TypePubRel }

// NewPubRelPacket constructs a PUBREL packet.
func NewPubRelPacket(packetID uint16, code ReasonCode) (*PubRelPacket, error) {
	a, err := newAckPacket(TypePubRel, packetID, code)
	if err != nil {
		return nil, err
	}
	return &PubRelPacket{a}, nil
}

func decodePubRelPacket(data []byte, fh FixedHeader) (*PubRelPacket, error) {
	a, err := decodeAckPacket(TypePubRel, data, fh)
	if err != nil {
		return nil, err
	}
	return &PubRelPacket{a}, nil
}

func (p *PubRelPacket) write(buf []byte) ([]byte, error) { return p.ackPacket.write(buf, TypePubRel, 0x02) }

// PubCompPacket is the MQTT 5.0 PUBCOMP packet.
type PubCompPacket struct{ ackPacket }

func (*PubCompPacket) isPacket()        {}
func (*PubCompPacket) Type() PacketType { return TypePubComp }

// NewPubCompPacket constructs a PUBCOMP packet.
func NewPubCompPacket(packetID uint16, code ReasonCode) (*PubCompPacket, error) {
	a, err := newAckPacket(TypePubComp, packetID, code)
	if err != nil {
		return nil, err
	}
	return &PubCompPacket{a}, nil
}

func decodePubCompPacket(data []byte, fh FixedHeader) (*PubCompPacket, error) {
	a, err := decodeAckPacket(TypePubComp, data, fh)
	if err != nil {
		return nil, err
	}
	return &PubCompPacket{a}, nil
}

func (p *PubCompPacket) write(buf []byte) ([]byte, error) { return p.ackPacket.write(buf, TypePubComp, 0) }
