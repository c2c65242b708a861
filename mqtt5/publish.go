package mqtt5

// PublishPacket is the MQTT 5.0 PUBLISH packet, carrying application
// message data on a topic.
type PublishPacket struct {
	Dup       bool
	QoS       QoS
	Retain    bool
	TopicName string
	PacketID  uint16 // only meaningful when QoS > AtMostOnce

	PayloadFormatIndicator Optional[byte]
	MessageExpiryInterval  Optional[uint32]
	TopicAlias             Optional[uint16]
	ResponseTopic          Optional[string]
	CorrelationData        Optional[[]byte]
	SubscriptionIdentifiers []uint32
	ContentType             Optional[string]
	UserProperties          []UserProperty

	Payload []byte
}

func (*PublishPacket) isPacket()        {}
func (*PublishPacket) Type() PacketType { return TypePublish }

// NewPublishPacket constructs a PUBLISH packet, enforcing spec.md I2: a
// non-zero PacketID is required for QoS 1/2 and forbidden for QoS 0.
func NewPublishPacket(topic string, qos QoS, packetID uint16, payload []byte) (*PublishPacket, error) {
	if !qos.IsValid() {
		return nil, newConstructionError("QoS", "must be 0, 1, or 2", nil)
	}
	if qos == AtMostOnce && packetID != 0 {
		return nil, newConstructionError("PacketID", "must be 0 when QoS is AtMostOnce", nil)
	}
	if qos != AtMostOnce && packetID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero when QoS is AtLeastOnce or ExactlyOnce", nil)
	}
	return &PublishPacket{TopicName: topic, QoS: qos, PacketID: packetID, Payload: payload}, nil
}

func decodePublishPacket(data []byte, fh FixedHeader) (*PublishPacket, error) {
	topic, n, err := readUTF8String(data)
	if err != nil {
		return nil, err
	}
	offset := n

	var packetID uint16
	if fh.QoS > AtMostOnce {
		packetID, n, err = readU16(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		if packetID == 0 {
			return nil, malformed(ReasonMalformedPacket, "PUBLISH packet identifier must be non-zero for QoS > 0")
		}
	}

	props, n, err := decodePropertyBlock(data[offset:], TypePublish)
	if err != nil {
		return nil, err
	}
	offset += n

	if alias := getU16Prop(props, PropTopicAlias); alias.IsSet() {
		if alias.MustGet() == 0 {
			return nil, malformed(ReasonTopicAliasInvalid, "topic alias must not be 0")
		}
	}

	// The payload is always a fresh, non-nil slice (empty when the packet
	// carries no payload bytes), matching readBinary's convention.
	payload := make([]byte, len(data)-offset)
	copy(payload, data[offset:])

	return &PublishPacket{
		Dup:                     fh.Dup,
		QoS:                     fh.QoS,
		Retain:                  fh.Retain,
		TopicName:               topic,
		PacketID:                packetID,
		PayloadFormatIndicator:  getByteProp(props, PropPayloadFormatIndicator),
		MessageExpiryInterval:   getU32Prop(props, PropMessageExpiryInterval),
		TopicAlias:              getU16Prop(props, PropTopicAlias),
		ResponseTopic:           getStringProp(props, PropResponseTopic),
		CorrelationData:         getBinaryProp(props, PropCorrelationData),
		SubscriptionIdentifiers: getVarIntProps(props, PropSubscriptionIdentifier),
		ContentType:             getStringProp(props, PropContentType),
		UserProperties:          getUserProperties(props),
		Payload:                 payload,
	}, nil
}

func (p *PublishPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendByteProp(props, PropPayloadFormatIndicator, p.PayloadFormatIndicator)
	props = appendU32Prop(props, PropMessageExpiryInterval, p.MessageExpiryInterval)
	props = appendU16Prop(props, PropTopicAlias, p.TopicAlias)
	props = appendStringProp(props, PropResponseTopic, p.ResponseTopic)
	props = appendBinaryProp(props, PropCorrelationData, p.CorrelationData)
	props = appendVarIntProps(props, PropSubscriptionIdentifier, p.SubscriptionIdentifiers)
	props = appendStringProp(props, PropContentType, p.ContentType)
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func (p *PublishPacket) write(buf []byte) ([]byte, error) {
	if !p.QoS.IsValid() {
		return nil, newConstructionError("QoS", "must be 0, 1, or 2", nil)
	}
	if p.QoS == AtMostOnce && p.PacketID != 0 {
		return nil, newConstructionError("PacketID", "must be 0 when QoS is AtMostOnce", nil)
	}
	if p.QoS != AtMostOnce && p.PacketID == 0 {
		return nil, newConstructionError("PacketID", "must be non-zero when QoS is AtLeastOnce or ExactlyOnce", nil)
	}

	var body []byte
	body, err := appendUTF8String(body, p.TopicName)
	if err != nil {
		return nil, err
	}
	if p.QoS > AtMostOnce {
		body = appendU16(body, p.PacketID)
	}

	body, err = appendPropertyBlock(body, p.properties())
	if err != nil {
		return nil, err
	}
	body = append(body, p.Payload...)

	if uint32(len(body)) > MaxVariableByteInteger {
		return nil, ErrPacketTooLarge
	}

	fh := FixedHeader{Dup: p.Dup, QoS: p.QoS, Retain: p.Retain}
	buf, err = encodeFixedHeader(buf, TypePublish, fh.publishFlags(), uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
