package mqtt5

// UnsubAckPacket is the MQTT 5.0 UNSUBACK packet.
type UnsubAckPacket struct {
	PacketID    uint16
	ReasonCodes []ReasonCode

	ReasonString   Optional[string]
	UserProperties []UserProperty
}

func (*UnsubAckPacket) isPacket()        {}
func (*UnsubAckPacket) Type() PacketType { return TypeUnsubAck }

// NewUnsubAckPacket constructs an UNSUBACK packet, validating every
// reason code against the set an UNSUBACK may legally carry.
func NewUnsubAckPacket(packetID uint16, codes []ReasonCode) (*UnsubAckPacket, error) {
	if packetID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if len(codes) == 0 {
		return nil, newConstructionError("ReasonCodes", "must contain at least one reason code", nil)
	}
	for _, c := range codes {
		if err := validateReasonCode(TypeUnsubAck, c); err != nil {
			return nil, err
		}
	}
	return &UnsubAckPacket{PacketID: packetID, ReasonCodes: codes}, nil
}

func decodeUnsubAckPacket(data []byte, fh FixedHeader) (*UnsubAckPacket, error) {
	packetID, n, err := readU16(data)
	if err != nil {
		return nil, err
	}
	if packetID == 0 {
		return nil, malformed(ReasonMalformedPacket, "packet identifier must be non-zero")
	}
	offset := n

	props, n, err := decodePropertyBlock(data[offset:], TypeUnsubAck)
	if err != nil {
		return nil, err
	}
	offset += n

	var codes []ReasonCode
	for offset < len(data) {
		b, n, err := readU8(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		code := ReasonCode(b)
		if err := validateReasonCode(TypeUnsubAck, code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, malformed(ReasonProtocolError, "UNSUBACK must contain at least one reason code")
	}

	return &UnsubAckPacket{
		PacketID:       packetID,
		ReasonCodes:    codes,
		ReasonString:   getStringProp(props, PropReasonString),
		UserProperties: getUserProperties(props),
	}, nil
}

func (p *UnsubAckPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendStringProp(props, PropReasonString, p.ReasonString)
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func (p *UnsubAckPacket) write(buf []byte) ([]byte, error) {
	if p.PacketID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if len(p.ReasonCodes) == 0 {
		return nil, newConstructionError("ReasonCodes", "must contain at least one reason code", nil)
	}

	var body []byte
	body = appendU16(body, p.PacketID)

	var err error
	body, err = appendPropertyBlock(body, p.properties())
	if err != nil {
		return nil, err
	}
	for _, c := range p.ReasonCodes {
		body = appendU8(body, byte(c))
	}

	if uint32(len(body)) > MaxVariableByteInteger {
		return nil, ErrPacketTooLarge
	}

	buf, err = encodeFixedHeader(buf, TypeUnsubAck, 0, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
