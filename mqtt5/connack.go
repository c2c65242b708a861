package mqtt5

// ConnAckPacket is the MQTT 5.0 CONNACK packet: the server's response to
// a CONNECT.
type ConnAckPacket struct {
	SessionPresent bool
	ReasonCode     ReasonCode

	SessionExpiryInterval         Optional[uint32]
	ReceiveMaximum                Optional[uint16]
	MaximumQoS                    Optional[byte]
	RetainAvailable               Optional[byte]
	MaximumPacketSize             Optional[uint32]
	AssignedClientIdentifier      Optional[string]
	TopicAliasMaximum             Optional[uint16]
	ReasonString                  Optional[string]
	WildcardSubscriptionAvailable Optional[byte]
	SubscriptionIdentifiersAvailable Optional[byte]
	SharedSubscriptionAvailable   Optional[byte]
	ServerKeepAlive               Optional[uint16]
	ResponseInformation           Optional[string]
	ServerReference                Optional[string]
	AuthenticationMethod           Optional[string]
	AuthenticationData             Optional[[]byte]
	UserProperties                  []UserProperty
}

func (*ConnAckPacket) isPacket()        {}
func (*ConnAckPacket) Type() PacketType { return TypeConnAck }

// NewConnAckPacket constructs a CONNACK packet, validating that code is
// one of the reason codes a CONNACK may legally carry.
func NewConnAckPacket(sessionPresent bool, code ReasonCode) (*ConnAckPacket, error) {
	if err := validateReasonCode(TypeConnAck, code); err != nil {
		return nil, err
	}
	if code.IsError() && sessionPresent {
		return nil, newConstructionError("SessionPresent", "must be false when the reason code is an error", nil)
	}
	return &ConnAckPacket{SessionPresent: sessionPresent, ReasonCode: code}, nil
}

func decodeConnAckPacket(data []byte, fh FixedHeader) (*ConnAckPacket, error) {
	flags, n, err := readU8(data)
	if err != nil {
		return nil, err
	}
	offset := n
	if flags&0xFE != 0 {
		return nil, malformed(ReasonMalformedPacket, "CONNACK reserved bits must be 0")
	}

	code, n, err := readU8(data[offset:])
	if err != nil {
		return nil, err
	}
	offset += n
	reasonCode := ReasonCode(code)
	if err := validateReasonCode(TypeConnAck, reasonCode); err != nil {
		return nil, err
	}

	props, n, err := decodePropertyBlock(data[offset:], TypeConnAck)
	if err != nil {
		return nil, err
	}
	offset += n
	if offset != len(data) {
		return nil, malformed(ReasonMalformedPacket, "trailing bytes in CONNACK payload")
	}

	if mps := getU32Prop(props, PropMaximumPacketSize); mps.IsSet() {
		if mps.MustGet() == 0 {
			return nil, malformed(ReasonProtocolError, "maximum packet size must not be 0")
		}
	}

	return &ConnAckPacket{
		SessionPresent:                    flags&0x01 != 0,
		ReasonCode:                        reasonCode,
		SessionExpiryInterval:             getU32Prop(props, PropSessionExpiryInterval),
		ReceiveMaximum:                    getU16Prop(props, PropReceiveMaximum),
		MaximumQoS:                        getByteProp(props, PropMaximumQoS),
		RetainAvailable:                   getByteProp(props, PropRetainAvailable),
		MaximumPacketSize:                 getU32Prop(props, PropMaximumPacketSize),
		AssignedClientIdentifier:          getStringProp(props, PropAssignedClientIdentifier),
		TopicAliasMaximum:                 getU16Prop(props, PropTopicAliasMaximum),
		ReasonString:                      getStringProp(props, PropReasonString),
		WildcardSubscriptionAvailable:     getByteProp(props, PropWildcardSubscriptionAvailable),
		SubscriptionIdentifiersAvailable:  getByteProp(props, PropSubscriptionIdentifierAvailable),
		SharedSubscriptionAvailable:       getByteProp(props, PropSharedSubscriptionAvailable),
		ServerKeepAlive:                   getU16Prop(props, PropServerKeepAlive),
		ResponseInformation:               getStringProp(props, PropResponseInformation),
		ServerReference:                   getStringProp(props, PropServerReference),
		AuthenticationMethod:              getStringProp(props, PropAuthenticationMethod),
		AuthenticationData:                getBinaryProp(props, PropAuthenticationData),
		UserProperties:                    getUserProperties(props),
	}, nil
}

func (p *ConnAckPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendU32Prop(props, PropSessionExpiryInterval, p.SessionExpiryInterval)
	props = appendU16Prop(props, PropReceiveMaximum, p.ReceiveMaximum)
	props = appendByteProp(props, PropMaximumQoS, p.MaximumQoS)
	props = appendByteProp(props, PropRetainAvailable, p.RetainAvailable)
	props = appendU32Prop(props, PropMaximumPacketSize, p.MaximumPacketSize)
	props = appendStringProp(props, PropAssignedClientIdentifier, p.AssignedClientIdentifier)
	props = appendU16Prop(props, PropTopicAliasMaximum, p.TopicAliasMaximum)
	props = appendStringProp(props, PropReasonString, p.ReasonString)
	props = appendByteProp(props, PropWildcardSubscriptionAvailable, p.WildcardSubscriptionAvailable)
	props = appendByteProp(props, PropSubscriptionIdentifierAvailable, p.SubscriptionIdentifiersAvailable)
	props = appendByteProp(props, PropSharedSubscriptionAvailable, p.SharedSubscriptionAvailable)
	props = appendU16Prop(props, PropServerKeepAlive, p.ServerKeepAlive)
	props = appendStringProp(props, PropResponseInformation, p.ResponseInformation)
	props = appendStringProp(props, PropServerReference, p.ServerReference)
	props = appendStringProp(props, PropAuthenticationMethod, p.AuthenticationMethod)
	props = appendBinaryProp(props, PropAuthenticationData, p.AuthenticationData)
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func (p *ConnAckPacket) write(buf []byte) ([]byte, error) {
	if v, ok := p.MaximumPacketSize.Get(); ok && v == 0 {
		return nil, newConstructionError("MaximumPacketSize", "must be > 0 if present", nil)
	}

	var flags byte
	if p.SessionPresent {
		flags = 0x01
	}
	body := appendU8(nil, flags)
	body = appendU8(body, byte(p.ReasonCode))

	var err error
	body, err = appendPropertyBlock(body, p.properties())
	if err != nil {
		return nil, err
	}

	buf, err = encodeFixedHeader(buf, TypeConnAck, 0, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
