package mqtt5

// RetainHandling controls whether the server sends retained messages
// when a subscription is established.
type RetainHandling byte

const (
	SendRetainedAlways           RetainHandling = 0
	SendRetainedOnNewSubscribe   RetainHandling = 1
	DoNotSendRetained            RetainHandling = 2
)

// Subscription is one topic filter entry within a SUBSCRIBE packet,
// including its per-filter options.
type Subscription struct {
	TopicFilter       string
	QoS               QoS
	NoLocal           bool
	RetainAsPublished bool
	RetainHandling    RetainHandling
}

func (s Subscription) optionsByte() byte {
	var b byte
	b |= byte(s.QoS)
	if s.NoLocal {
		b |= 0x04
	}
	if s.RetainAsPublished {
		b |= 0x08
	}
	b |= byte(s.RetainHandling) << 4
	return b
}

func decodeSubscriptionOptions(b byte) (Subscription, error) {
	if b&0xC0 != 0 {
		return Subscription{}, malformed(ReasonMalformedPacket, "reserved subscription option bits must be 0")
	}
	qos := QoS(b & 0x03)
	if !qos.IsValid() {
		return Subscription{}, malformed(ReasonMalformedPacket, "invalid subscription QoS")
	}
	rh := RetainHandling((b & 0x30) >> 4)
	if rh > DoNotSendRetained {
		return Subscription{}, malformed(ReasonMalformedPacket, "invalid retain handling value")
	}
	return Subscription{
		QoS:               qos,
		NoLocal:           b&0x04 != 0,
		RetainAsPublished: b&0x08 != 0,
		RetainHandling:    rh,
	}, nil
}

// SubscribePacket is the MQTT 5.0 SUBSCRIBE packet.
type SubscribePacket struct {
	PacketID      uint16
	Subscriptions []Subscription

	SubscriptionIdentifier Optional[uint32]
	UserProperties         []UserProperty
}

func (*SubscribePacket) isPacket()        {}
func (*SubscribePacket) Type() PacketType { return TypeSubscribe }

// NewSubscribePacket constructs a SUBSCRIBE packet. spec.md I5: the
// subscription list must not be empty.
func NewSubscribePacket(packetID uint16, subs []Subscription) (*SubscribePacket, error) {
	if packetID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if len(subs) == 0 {
		return nil, newConstructionError("Subscriptions", "must contain at least one subscription", nil)
	}
	return &SubscribePacket{PacketID: packetID, Subscriptions: subs}, nil
}

func decodeSubscribePacket(data []byte, fh FixedHeader) (*SubscribePacket, error) {
	packetID, n, err := readU16(data)
	if err != nil {
		return nil, err
	}
	if packetID == 0 {
		return nil, malformed(ReasonMalformedPacket, "packet identifier must be non-zero")
	}
	offset := n

	props, n, err := decodePropertyBlock(data[offset:], TypeSubscribe)
	if err != nil {
		return nil, err
	}
	offset += n

	var subs []Subscription
	for offset < len(data) {
		filter, n, err := readUTF8String(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n

		optByte, n, err := readU8(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n

		sub, err := decodeSubscriptionOptions(optByte)
		if err != nil {
			return nil, err
		}
		sub.TopicFilter = filter
		subs = append(subs, sub)
	}
	if len(subs) == 0 {
		return nil, malformed(ReasonProtocolError, "SUBSCRIBE must contain at least one subscription")
	}

	var subID Optional[uint32]
	if ids := getVarIntProps(props, PropSubscriptionIdentifier); len(ids) > 0 {
		subID = Some(ids[0])
	}

	return &SubscribePacket{
		PacketID:                packetID,
		Subscriptions:           subs,
		SubscriptionIdentifier:  subID,
		UserProperties:          getUserProperties(props),
	}, nil
}

func (p *SubscribePacket) properties() []rawProperty {
	var props []rawProperty
	if id, ok := p.SubscriptionIdentifier.Get(); ok {
		props = appendVarIntProps(props, PropSubscriptionIdentifier, []uint32{id})
	}
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func (p *SubscribePacket) write(buf []byte) ([]byte, error) {
	if p.PacketID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero", nil)
	}
	if len(p.Subscriptions) == 0 {
		return nil, newConstructionError("Subscriptions", "must contain at least one subscription", nil)
	}

	var body []byte
	body = appendU16(body, p.PacketID)

	var err error
	body, err = appendPropertyBlock(body, p.properties())
	if err != nil {
		return nil, err
	}

	for _, sub := range p.Subscriptions {
		body, err = appendUTF8String(body, sub.TopicFilter)
		if err != nil {
			return nil, err
		}
		body = appendU8(body, sub.optionsByte())
	}

	if uint32(len(body)) > MaxVariableByteInteger {
		return nil, ErrPacketTooLarge
	}

	buf, err = encodeFixedHeader(buf, TypeSubscribe, 0x02, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
