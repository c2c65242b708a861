package mqtt5

// AuthPacket is the MQTT 5.0 AUTH packet, used for extended
// (challenge/response) authentication exchanges. Like DISCONNECT, a
// zero-length AUTH is legal shorthand for Success with no properties.
type AuthPacket struct {
	ReasonCode ReasonCode

	AuthenticationMethod Optional[string]
	AuthenticationData   Optional[[]byte]
	ReasonString         Optional[string]
	UserProperties       []UserProperty
}

func (*AuthPacket) isPacket()        {}
func (*AuthPacket) Type() PacketType { return TypeAuth }

// NewAuthPacket constructs an AUTH packet.
func NewAuthPacket(code ReasonCode) (*AuthPacket, error) {
	if err := validateReasonCode(TypeAuth, code); err != nil {
		return nil, err
	}
	return &AuthPacket{ReasonCode: code}, nil
}

func decodeAuthPacket(data []byte, fh FixedHeader) (*AuthPacket, error) {
	if fh.RemainingLength == 0 {
		return &AuthPacket{ReasonCode: ReasonSuccess}, nil
	}

	code, n, err := readU8(data)
	if err != nil {
		return nil, err
	}
	offset := n
	reasonCode := ReasonCode(code)
	if err := validateReasonCode(TypeAuth, reasonCode); err != nil {
		return nil, err
	}

	if fh.RemainingLength == 1 {
		return &AuthPacket{ReasonCode: reasonCode}, nil
	}

	props, n, err := decodePropertyBlock(data[offset:], TypeAuth)
	if err != nil {
		return nil, err
	}
	offset += n
	if offset != len(data) {
		return nil, malformed(ReasonMalformedPacket, "trailing bytes in AUTH payload")
	}

	return &AuthPacket{
		ReasonCode:            reasonCode,
		AuthenticationMethod:  getStringProp(props, PropAuthenticationMethod),
		AuthenticationData:    getBinaryProp(props, PropAuthenticationData),
		ReasonString:          getStringProp(props, PropReasonString),
		UserProperties:        getUserProperties(props),
	}, nil
}

func (p *AuthPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendStringProp(props, PropAuthenticationMethod, p.AuthenticationMethod)
	props = appendBinaryProp(props, PropAuthenticationData, p.AuthenticationData)
	props = appendStringProp(props, PropReasonString, p.ReasonString)
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func (p *AuthPacket) hasNoProperties() bool {
	_, a := p.AuthenticationMethod.Get()
	_, b := p.AuthenticationData.Get()
	_, c := p.ReasonString.Get()
	return !a && !b && !c && len(p.UserProperties) == 0
}

func (p *AuthPacket) write(buf []byte) ([]byte, error) {
	if p.ReasonCode == ReasonSuccess && p.hasNoProperties() {
		return encodeFixedHeader(buf, TypeAuth, 0, 0)
	}

	body := appendU8(nil, byte(p.ReasonCode))
	if p.hasNoProperties() {
		var err error
		buf, err = encodeFixedHeader(buf, TypeAuth, 0, uint32(len(body)))
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

	buf, err = encodeFixedHeader(buf, TypeAuth, 0, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
