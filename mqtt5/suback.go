package mqtt5

// SubAckPacket is the MQTT 5.0 SUBACK packet: the server's per-filter
// response to a SUBSCRIBE.
type SubAckPacket struct {
	PacketID    uint16
	ReasonCodes []ReasonCode

	ReasonString   Optional[string]
	UserProperties []UserProperty
}

func (*SubAckPacket) isPacket()        {}
func (*SubAckPacket) Type() PacketType { return TypeSubAck }

// NewSubAckPacket constructs a SUBACK packet, validating every reason
// code against the set a SUBACK may legally carry.
func NewSubAckPacket(packetID uint16, codes []ReasonCode) (*SubAckPacket, error) {
	if packetID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if len(codes) == 0 {
		return nil, newConstructionError("ReasonCodes", "must contain at least one reason code", nil)
	}
	for _, c := range codes {
		if err := validateReasonCode(TypeSubAck, c); err != nil {
			return nil, err
		}
	}
	return &SubAckPacket{PacketID: packetID, ReasonCodes: codes}, nil
}

func decodeSubAckPacket(data []byte, fh FixedHeader) (*SubAckPacket, error) {
	packetID, n, err := readU16(data)
	if err != nil {
		return nil, err
	}
	if packetID == 0 {
		return nil, malformed(ReasonMalformedPacket, "packet identifier must be non-zero")
	}
	offset := n

	props, n, err := decodePropertyBlock(data[offset:], TypeSubAck)
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
		if err := validateReasonCode(TypeSubAck, code); err != nil {
			return nil, err
		}
		codes = append(codes, code)
	}
	if len(codes) == 0 {
		return nil, malformed(ReasonProtocolError, "SUBACK must contain at least one reason code")
	}

	return &SubAckPacket{
		PacketID:       packetID,
		ReasonCodes:    codes,
		ReasonString:   getStringProp(props, PropReasonString),
		UserProperties: getUserProperties(props),
	}, nil
}

func (p *SubAckPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendStringProp(props, PropReasonString, p.ReasonString)
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func (p *SubAckPacket) write(buf []byte) ([]byte, error) {
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

	buf, err = encodeFixedHeader(buf, TypeSubAck, 0, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
