package mqtt5

// UnsubscribePacket is the MQTT 5.0 UNSUBSCRIBE packet.
type UnsubscribePacket struct {
	PacketID     uint16
	TopicFilters []string

	UserProperties []UserProperty
}

func (*UnsubscribePacket) isPacket()        {}
func (*UnsubscribePacket) Type() PacketType { return TypeUnsubscribe }

// NewUnsubscribePacket constructs an UNSUBSCRIBE packet. spec.md I6: the
// topic filter list must not be empty.
func NewUnsubscribePacket(packetID uint16, filters []string) (*UnsubscribePacket, error) {
	if packetID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if len(filters) == 0 {
		return nil, newConstructionError("TopicFilters", "must contain at least one topic filter", nil)
	}
	return &UnsubscribePacket{PacketID: packetID, TopicFilters: filters}, nil
}

func decodeUnsubscribePacket(data []byte, fh FixedHeader) (*UnsubscribePacket, error) {
	packetID, n, err := readU16(data)
	if err != nil {
		return nil, err
	}
	if packetID == 0 {
		return nil, malformed(ReasonMalformedPacket, "packet identifier must be non-zero")
	}
	offset := n

	props, n, err := decodePropertyBlock(data[offset:], TypeUnsubscribe)
	if err != nil {
		return nil, err
	}
	offset += n

	var filters []string
	for offset < len(data) {
		filter, n, err := readUTF8String(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		filters = append(filters, filter)
	}
	if len(filters) == 0 {
		return nil, malformed(ReasonProtocolError, "UNSUBSCRIBE must contain at least one topic filter")
	}

	return &UnsubscribePacket{
		PacketID:       packetID,
		TopicFilters:   filters,
		UserProperties: getUserProperties(props),
	}, nil
}

func (p *UnsubscribePacket) write(buf []byte) ([]byte, error) {
	if p.PacketID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if len(p.TopicFilters) == 0 {
		return nil, newConstructionError("TopicFilters", "must contain at least one topic filter", nil)
	}

	var body []byte
	body = appendU16(body, p.PacketID)

	var props []rawProperty
	props = appendUserProperties(props, p.UserProperties)
	var err error
	body, err = appendPropertyBlock(body, props)
	if err != nil {
		return nil, err
	}

	for _, f := range p.TopicFilters {
		body, err = appendUTF8String(body, f)
		if err != nil {
			return nil, err
		}
	}

	if uint32(len(body)) > MaxVariableByteInteger {
		return nil, ErrPacketTooLarge
	}

	buf, err = encodeFixedHeader(buf, TypeUnsubscribe, 0x02, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
