package mqtt5

const protocolName = "MQTT"

// ProtocolVersion5 is the only protocol version value this package
// accepts (spec.md §6.2: MQTT 3.1.1 is out of scope).
const ProtocolVersion5 byte = 5

// Will carries the optional last-will message a CONNECT packet may
// register, published by the server if the client disconnects
// ungracefully.
type Will struct {
	QoS                   QoS
	Retain                bool
	Topic                 string
	Payload               []byte
	DelayInterval         Optional[uint32]
	PayloadFormatIndicator Optional[byte]
	MessageExpiryInterval Optional[uint32]
	ContentType           Optional[string]
	ResponseTopic         Optional[string]
	CorrelationData       Optional[[]byte]
	UserProperties        []UserProperty
}

// ConnectPacket is the MQTT 5.0 CONNECT packet: a client's request to
// open a session.
type ConnectPacket struct {
	CleanStart   bool
	KeepAlive    uint16
	ClientID     string
	Will         Optional[Will]
	Username     Optional[string]
	Password     Optional[[]byte]

	SessionExpiryInterval  Optional[uint32]
	ReceiveMaximum         Optional[uint16]
	MaximumPacketSize      Optional[uint32]
	TopicAliasMaximum      Optional[uint16]
	RequestResponseInfo    Optional[byte]
	RequestProblemInfo     Optional[byte]
	AuthenticationMethod   Optional[string]
	AuthenticationData     Optional[[]byte]
	UserProperties         []UserProperty
}

func (*ConnectPacket) isPacket()         {}
func (*ConnectPacket) Type() PacketType  { return TypeConnect }

// NewConnectPacket constructs a CONNECT packet, enforcing that a
// zero-length ClientID is legal only when CleanStart is true (the server
// is expected to assign one). The Will, Username, Password and
// MaximumPacketSize fields are set afterwards and checked by validate when
// the packet is written.
func NewConnectPacket(clientID string, cleanStart bool, keepAlive uint16) (*ConnectPacket, error) {
	if clientID == "" && !cleanStart {
		return nil, newConstructionError("ClientID", "empty client identifier requires CleanStart", nil)
	}
	return &ConnectPacket{ClientID: clientID, CleanStart: cleanStart, KeepAlive: keepAlive}, nil
}

func (p *ConnectPacket) validate() error {
	if w, ok := p.Will.Get(); ok && !w.QoS.IsValid() {
		return newConstructionError("Will.QoS", "must be 0, 1, or 2", nil)
	}
	if _, ok := p.Password.Get(); ok {
		if _, ok := p.Username.Get(); !ok {
			return newConstructionError("Password", "password without username is not permitted by this encoder", nil)
		}
	}
	if v, ok := p.MaximumPacketSize.Get(); ok && v == 0 {
		return newConstructionError("MaximumPacketSize", "must be > 0 if present", nil)
	}
	return nil
}

func decodeConnectPacket(data []byte, fh FixedHeader) (*ConnectPacket, error) {
	name, n, err := readUTF8String(data)
	if err != nil {
		return nil, err
	}
	offset := n
	if name != protocolName {
		return nil, malformed(ReasonUnsupportedProtocolVersion, "protocol name must be \"MQTT\"")
	}

	version, n, err := readU8(data[offset:])
	if err != nil {
		return nil, err
	}
	offset += n
	if version != ProtocolVersion5 {
		return nil, malformed(ReasonUnsupportedProtocolVersion, "unsupported protocol version")
	}

	flags, n, err := readU8(data[offset:])
	if err != nil {
		return nil, err
	}
	offset += n
	if flags&0x01 != 0 {
		return nil, malformed(ReasonMalformedPacket, "CONNECT reserved flag bit must be 0")
	}

	cleanStart := flags&0x02 != 0
	willFlag := flags&0x04 != 0
	willQoS := QoS((flags & 0x18) >> 3)
	willRetain := flags&0x20 != 0
	passwordFlag := flags&0x40 != 0
	usernameFlag := flags&0x80 != 0

	if !willFlag && (willQoS != AtMostOnce || willRetain) {
		return nil, malformed(ReasonMalformedPacket, "will QoS/retain set without will flag")
	}
	if !willQoS.IsValid() {
		return nil, malformed(ReasonMalformedPacket, "invalid will QoS")
	}

	keepAlive, n, err := readU16(data[offset:])
	if err != nil {
		return nil, err
	}
	offset += n

	props, n, err := decodePropertyBlock(data[offset:], TypeConnect)
	if err != nil {
		return nil, err
	}
	offset += n

	if mps := getU32Prop(props, PropMaximumPacketSize); mps.IsSet() {
		if mps.MustGet() == 0 {
			return nil, malformed(ReasonProtocolError, "maximum packet size must not be 0")
		}
	}

	pkt := &ConnectPacket{
		CleanStart:           cleanStart,
		KeepAlive:            keepAlive,
		SessionExpiryInterval: getU32Prop(props, PropSessionExpiryInterval),
		ReceiveMaximum:        getU16Prop(props, PropReceiveMaximum),
		MaximumPacketSize:     getU32Prop(props, PropMaximumPacketSize),
		TopicAliasMaximum:     getU16Prop(props, PropTopicAliasMaximum),
		RequestResponseInfo:   getByteProp(props, PropRequestResponseInformation),
		RequestProblemInfo:    getByteProp(props, PropRequestProblemInformation),
		AuthenticationMethod:  getStringProp(props, PropAuthenticationMethod),
		AuthenticationData:    getBinaryProp(props, PropAuthenticationData),
		UserProperties:        getUserProperties(props),
	}

	clientID, n, err := readUTF8String(data[offset:])
	if err != nil {
		return nil, err
	}
	offset += n
	pkt.ClientID = clientID

	if willFlag {
		willProps, n, err := decodePropertyBlock(data[offset:], TypeConnect)
		if err != nil {
			return nil, err
		}
		offset += n

		willTopic, n, err := readUTF8String(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n

		willPayload, n, err := readBinary(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n

		pkt.Will = Some(Will{
			QoS:                    willQoS,
			Retain:                 willRetain,
			Topic:                  willTopic,
			Payload:                willPayload,
			DelayInterval:          getU32Prop(willProps, PropWillDelayInterval),
			PayloadFormatIndicator: getByteProp(willProps, PropPayloadFormatIndicator),
			MessageExpiryInterval:  getU32Prop(willProps, PropMessageExpiryInterval),
			ContentType:            getStringProp(willProps, PropContentType),
			ResponseTopic:          getStringProp(willProps, PropResponseTopic),
			CorrelationData:        getBinaryProp(willProps, PropCorrelationData),
			UserProperties:         getUserProperties(willProps),
		})
	}

	if usernameFlag {
		username, n, err := readUTF8String(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		pkt.Username = Some(username)
	}

	if passwordFlag {
		password, n, err := readBinary(data[offset:])
		if err != nil {
			return nil, err
		}
		offset += n
		pkt.Password = Some(password)
	}

	if offset != len(data) {
		return nil, malformed(ReasonMalformedPacket, "trailing bytes in CONNECT payload")
	}

	return pkt, nil
}

func (p *ConnectPacket) properties() []rawProperty {
	var props []rawProperty
	props = appendU32Prop(props, PropSessionExpiryInterval, p.SessionExpiryInterval)
	props = appendU16Prop(props, PropReceiveMaximum, p.ReceiveMaximum)
	props = appendU32Prop(props, PropMaximumPacketSize, p.MaximumPacketSize)
	props = appendU16Prop(props, PropTopicAliasMaximum, p.TopicAliasMaximum)
	props = appendByteProp(props, PropRequestResponseInformation, p.RequestResponseInfo)
	props = appendByteProp(props, PropRequestProblemInformation, p.RequestProblemInfo)
	props = appendStringProp(props, PropAuthenticationMethod, p.AuthenticationMethod)
	props = appendBinaryProp(props, PropAuthenticationData, p.AuthenticationData)
	props = appendUserProperties(props, p.UserProperties)
	return props
}

func willProperties(w Will) []rawProperty {
	var props []rawProperty
	props = appendU32Prop(props, PropWillDelayInterval, w.DelayInterval)
	props = appendByteProp(props, PropPayloadFormatIndicator, w.PayloadFormatIndicator)
	props = appendU32Prop(props, PropMessageExpiryInterval, w.MessageExpiryInterval)
	props = appendStringProp(props, PropContentType, w.ContentType)
	props = appendStringProp(props, PropResponseTopic, w.ResponseTopic)
	props = appendBinaryProp(props, PropCorrelationData, w.CorrelationData)
	props = appendUserProperties(props, w.UserProperties)
	return props
}

func (p *ConnectPacket) write(buf []byte) ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	var body []byte
	body, err := appendUTF8String(body, protocolName)
	if err != nil {
		return nil, err
	}
	body = appendU8(body, ProtocolVersion5)

	var flags byte
	if p.CleanStart {
		flags |= 0x02
	}
	will, hasWill := p.Will.Get()
	if hasWill {
		flags |= 0x04
		flags |= byte(will.QoS) << 3
		if will.Retain {
			flags |= 0x20
		}
	}
	if _, ok := p.Password.Get(); ok {
		flags |= 0x40
	}
	if _, ok := p.Username.Get(); ok {
		flags |= 0x80
	}
	body = appendU8(body, flags)
	body = appendU16(body, p.KeepAlive)

	body, err = appendPropertyBlock(body, p.properties())
	if err != nil {
		return nil, err
	}

	body, err = appendUTF8String(body, p.ClientID)
	if err != nil {
		return nil, err
	}

	if hasWill {
		body, err = appendPropertyBlock(body, willProperties(will))
		if err != nil {
			return nil, err
		}
		body, err = appendUTF8String(body, will.Topic)
		if err != nil {
			return nil, err
		}
		body, err = appendBinary(body, will.Payload)
		if err != nil {
			return nil, err
		}
	}

	if username, ok := p.Username.Get(); ok {
		body, err = appendUTF8String(body, username)
		if err != nil {
			return nil, err
		}
	}
	if password, ok := p.Password.Get(); ok {
		body, err = appendBinary(body, password)
		if err != nil {
			return nil, err
		}
	}

	if uint32(len(body)) > MaxVariableByteInteger {
		return nil, ErrPacketTooLarge
	}

	buf, err = encodeFixedHeader(buf, TypeConnect, 0, uint32(len(body)))
	if err != nil {
		return nil, err
	}
	return append(buf, body...), nil
}
