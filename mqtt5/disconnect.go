package mqtt5

// DisconnectPacket is the MQTT 5.0 DISCONNECT packet, sent by either
// side to close the connection cleanly and announce why.
type DisconnectPacket struct {
	ReasonCode ReasonCode

	SessionExpiryInterval Optional[uint32]
	ReasonString          Optional[string]
	ServerReference        Optional[string]
	UserProperties         []UserProperty
}

func (*DisconnectPacket) isPacket()        {}
func (*DisconnectPacket) Type() PacketType { return TypeDisconnect }

// NewDisconnectPacket constructs a DISCONNECT packet.
func NewDisconnectPacket(code ReasonCode) (*DisconnectPacket, error) {
	if err := validateReasonCode(TypeDisconnect, code); err != nil {
		return nil, err
	}
	return &DisconnectPacket{ReasonCode: code}, nil
}

func decodeDisconnectPacket(data []byte, fh FixedHeader) (*DisconnectPacket, error) {
	if fh.RemainingLength == 0 {
		return &DisconnectPacket{ReasonCode: ReasonNormalDisconnection}, nil
	}

	code, n, err := readU8(data)
	if err != nil {
		return nil, err
	}
	offset := n
	reasonCode := ReasonCode(code)
	if err := validateReasonCode(TypeDisconnect, reasonCode); err != nil {
		return nil, err
	}

	if fh.RemainingLength == 1 {
		return &DisconnectPacket{ReasonCode: reasonCode}, nil
	}

	props, n, err := decodePropertyBlock(data[offset:], TypeDisconnect)
	if err != nil {
		return nil, err
	}
	offset += n
	if offset != len(data) {
		return nil, malformed(ReasonMalformedPacket, "trailing bytes in DISCONNECT payload")
	}

	return &DisconnectPacket{
		ReasonCode:             reasonCode,
		SessionExpiryInterval:  getU32Prop(props, PropSessionExpiryInterval),
		ReasonString:           getStringProp(props, PropReasonString),
		ServerReference:        getStringProp(props, PropServerReference),
		UserProperties:         getUserProperties(props),
	}, nil
}

func (p *DisconnectPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendU32Prop(props, PropSessionExpiryInterval, p.SessionExpiryInterval)
	props = appendStringProp(props, PropReasonString, p.ReasonString)
	props = appendStringProp(props, PropServerReference, p.ServerReference)
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func (p *DisconnectPacket) hasNoProperties() bool {
	_, a := p.SessionExpiryInterval.Get()
	_, b := p.ReasonString.Get()
	_, c := p.ServerReference.Get()
	return !a && !b && !c && len(p.UserProperties) == 0
}

func (p *DisconnectPacket) write(buf []byte) ([]byte, error) {
	if p.ReasonCode == ReasonNormalDisconnection && p.hasNoProperties() {
		return encodeFixedHeader(buf, TypeDisconnect, 0, 0)
	}

	body := appendU8(nil, byte(p.ReasonCode))
	if p.hasNoProperties() {
		var err error
		buf, err = encodeFixedHeader(buf, TypeDisconnect, 0, uint32(len(body)))
		if err != nil {
			return nil, err
		}
		return append(buf, body...), nil
	}

	var err error
	body, err = appendPropertyBlock(body, p.properties())
	if err != nil {
		return nil, err
	}

	if uint32(len(body)) > MaxVariableByteInteger {
		return nil, ErrPacketTooLarge
	}

	buf, err = encodeFixedHeader(buf, TypeDisconnect, 0, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
