package mqtt5

// ReasonCode is a one-byte MQTT 5.0 reason code. The same numeric value
// means different things in different packet types (0x00 is Success in a
// CONNACK but Normal Disconnection in a DISCONNECT), so ReasonCode carries
// no type-specific String() dispatch on its own — String methods below
// are named per the value's most common meaning, and callers that need a
// packet-type-accurate label should consult the relevant legality table.
type ReasonCode byte

const (
	ReasonSuccess                   ReasonCode = 0x00
	ReasonNormalDisconnection       ReasonCode = 0x00
	ReasonGrantedQoS0               ReasonCode = 0x00
	ReasonGrantedQoS1               ReasonCode = 0x01
	ReasonGrantedQoS2               ReasonCode = 0x02
	ReasonDisconnectWithWillMessage ReasonCode = 0x04
	ReasonNoMatchingSubscribers     ReasonCode = 0x10
	ReasonNoSubscriptionExisted     ReasonCode = 0x11
	ReasonContinueAuthentication    ReasonCode = 0x18
	ReasonReAuthenticate            ReasonCode = 0x19

	ReasonUnspecifiedError                    ReasonCode = 0x80
	ReasonMalformedPacket                     ReasonCode = 0x81
	ReasonProtocolError                       ReasonCode = 0x82
	ReasonImplementationSpecificError         ReasonCode = 0x83
	ReasonUnsupportedProtocolVersion          ReasonCode = 0x84
	ReasonClientIdentifierNotValid            ReasonCode = 0x85
	ReasonBadUsernameOrPassword               ReasonCode = 0x86
	ReasonNotAuthorized                       ReasonCode = 0x87
	ReasonServerUnavailable                   ReasonCode = 0x88
	ReasonServerBusy                          ReasonCode = 0x89
	ReasonBanned                              ReasonCode = 0x8A
	ReasonServerShuttingDown                  ReasonCode = 0x8B
	ReasonBadAuthenticationMethod             ReasonCode = 0x8C
	ReasonKeepAliveTimeout                    ReasonCode = 0x8D
	ReasonSessionTakenOver                    ReasonCode = 0x8E
	ReasonTopicFilterInvalid                  ReasonCode = 0x8F
	ReasonTopicNameInvalid                    ReasonCode = 0x90
	ReasonPacketIdentifierInUse               ReasonCode = 0x91
	ReasonPacketIdentifierNotFound             ReasonCode = 0x92
	ReasonReceiveMaximumExceeded              ReasonCode = 0x93
	ReasonTopicAliasInvalid                   ReasonCode = 0x94
	ReasonPacketTooLarge                      ReasonCode = 0x95
	ReasonMessageRateTooHigh                  ReasonCode = 0x96
	ReasonQuotaExceeded                       ReasonCode = 0x97
	ReasonAdministrativeAction                ReasonCode = 0x98
	ReasonPayloadFormatInvalid                ReasonCode = 0x99
	ReasonRetainNotSupported                  ReasonCode = 0x9A
	ReasonQoSNotSupported                     ReasonCode = 0x9B
	ReasonUseAnotherServer                    ReasonCode = 0x9C
	ReasonServerMoved                         ReasonCode = 0x9D
	ReasonSharedSubscriptionsNotSupported     ReasonCode = 0x9E
	ReasonConnectionRateExceeded              ReasonCode = 0x9F
	ReasonMaximumConnectTime                  ReasonCode = 0xA0
	ReasonSubscriptionIdentifiersNotSupported ReasonCode = 0xA1
	ReasonWildcardSubscriptionsNotSupported   ReasonCode = 0xA2
)

var reasonCodeNames = map[ReasonCode]string{
	0x00: "Success",
	0x01: "GrantedQoS1",
	0x02: "GrantedQoS2",
	0x04: "DisconnectWithWillMessage",
	0x10: "NoMatchingSubscribers",
	0x11: "NoSubscriptionExisted",
	0x18: "ContinueAuthentication",
	0x19: "ReAuthenticate",
	0x80: "UnspecifiedError",
	0x81: "MalformedPacket",
	0x82: "ProtocolError",
	0x83: "ImplementationSpecificError",
	0x84: "UnsupportedProtocolVersion",
	0x85: "ClientIdentifierNotValid",
	0x86: "BadUsernameOrPassword",
	0x87: "NotAuthorized",
	0x88: "ServerUnavailable",
	0x89: "ServerBusy",
	0x8A: "Banned",
	0x8B: "ServerShuttingDown",
	0x8C: "BadAuthenticationMethod",
	0x8D: "KeepAliveTimeout",
	0x8E: "SessionTakenOver",
	0x8F: "TopicFilterInvalid",
	0x90: "TopicNameInvalid",
	0x91: "PacketIdentifierInUse",
	0x92: "PacketIdentifierNotFound",
	0x93: "ReceiveMaximumExceeded",
	0x94: "TopicAliasInvalid",
	0x95: "PacketTooLarge",
	0x96: "MessageRateTooHigh",
	0x97: "QuotaExceeded",
	0x98: "AdministrativeAction",
	0x99: "PayloadFormatInvalid",
	0x9A: "RetainNotSupported",
	0x9B: "QoSNotSupported",
	0x9C: "UseAnotherServer",
	0x9D: "ServerMoved",
	0x9E: "SharedSubscriptionsNotSupported",
	0x9F: "ConnectionRateExceeded",
	0xA0: "MaximumConnectTime",
	0xA1: "SubscriptionIdentifiersNotSupported",
	0xA2: "WildcardSubscriptionsNotSupported",
}

func (r ReasonCode) String() string {
	if name, ok := reasonCodeNames[r]; ok {
		return name
	}
	return "Unknown"
}

// IsError reports whether r is in the 0x80-0xFF error range (spec.md
// §4.C): any code >= 0x80 terminates the exchange the packet belongs to.
func (r ReasonCode) IsError() bool {
	return r >= 0x80
}

// legalReasonCodes enumerates, per packet type, the set of reason codes
// the teacher's ValidateReasonCodeForPacket left unchecked (it accepted
// everything). This table is the real validation spec.md §4.C requires:
// a reason code byte that decodes but isn't in this set for its packet
// type is a MalformedError carrying ReasonProtocolError, not merely an
// unrecognized value.
var legalReasonCodes = map[PacketType]map[ReasonCode]bool{
	TypeConnAck: {
		ReasonSuccess:                              true,
		ReasonUnspecifiedError:                     true,
		ReasonMalformedPacket:                      true,
		ReasonProtocolError:                        true,
		ReasonImplementationSpecificError:          true,
		ReasonUnsupportedProtocolVersion:           true,
		ReasonClientIdentifierNotValid:             true,
		ReasonBadUsernameOrPassword:                true,
		ReasonNotAuthorized:                        true,
		ReasonServerUnavailable:                    true,
		ReasonServerBusy:                           true,
		ReasonBanned:                               true,
		ReasonBadAuthenticationMethod:              true,
		ReasonTopicNameInvalid:                     true,
		ReasonPacketTooLarge:                       true,
		ReasonQuotaExceeded:                        true,
		ReasonPayloadFormatInvalid:                 true,
		ReasonRetainNotSupported:                   true,
		ReasonQoSNotSupported:                      true,
		ReasonUseAnotherServer:                     true,
		ReasonServerMoved:                          true,
		ReasonConnectionRateExceeded:               true,
	},
	TypePubAck: {
		ReasonSuccess:                      true,
		ReasonNoMatchingSubscribers:        true,
		ReasonUnspecifiedError:             true,
		ReasonImplementationSpecificError:  true,
		ReasonNotAuthorized:                true,
		ReasonTopicNameInvalid:             true,
		ReasonPacketIdentifierInUse:        true,
		ReasonQuotaExceeded:                true,
		ReasonPayloadFormatInvalid:         true,
	},
	TypePubRec: {
		ReasonSuccess:                      true,
		ReasonNoMatchingSubscribers:        true,
		ReasonUnspecifiedError:             true,
		ReasonImplementationSpecificError:  true,
		ReasonNotAuthorized:                true,
		ReasonTopicNameInvalid:             true,
		ReasonPacketIdentifierInUse:        true,
		ReasonQuotaExceeded:                true,
		ReasonPayloadFormatInvalid:         true,
	},
	TypePubRel: {
		ReasonSuccess:                   true,
		ReasonPacketIdentifierNotFound:  true,
	},
	TypePubComp: {
		ReasonSuccess:                   true,
		ReasonPacketIdentifierNotFound:  true,
	},
	TypeSubAck: {
		ReasonGrantedQoS0:                          true,
		ReasonGrantedQoS1:                          true,
		ReasonGrantedQoS2:                          true,
		ReasonUnspecifiedError:                     true,
		ReasonImplementationSpecificError:          true,
		ReasonNotAuthorized:                        true,
		ReasonTopicFilterInvalid:                   true,
		ReasonPacketIdentifierInUse:                true,
		ReasonQuotaExceeded:                        true,
		ReasonSharedSubscriptionsNotSupported:      true,
		ReasonSubscriptionIdentifiersNotSupported:  true,
		ReasonWildcardSubscriptionsNotSupported:    true,
	},
	TypeUnsubAck: {
		ReasonSuccess:                   true,
		ReasonNoSubscriptionExisted:     true,
		ReasonUnspecifiedError:          true,
		ReasonImplementationSpecificError: true,
		ReasonNotAuthorized:             true,
		ReasonTopicFilterInvalid:        true,
		ReasonPacketIdentifierInUse:     true,
	},
	TypeDisconnect: {
		ReasonNormalDisconnection:                  true,
		ReasonDisconnectWithWillMessage:             true,
		ReasonUnspecifiedError:                     true,
		ReasonMalformedPacket:                      true,
		ReasonProtocolError:                        true,
		ReasonImplementationSpecificError:          true,
		ReasonNotAuthorized:                        true,
		ReasonServerBusy:                           true,
		ReasonServerShuttingDown:                   true,
		ReasonKeepAliveTimeout:                     true,
		ReasonSessionTakenOver:                     true,
		ReasonTopicFilterInvalid:                   true,
		ReasonTopicNameInvalid:                     true,
		ReasonReceiveMaximumExceeded:                true,
		ReasonTopicAliasInvalid:                    true,
		ReasonPacketTooLarge:                       true,
		ReasonMessageRateTooHigh:                    true,
		ReasonQuotaExceeded:                        true,
		ReasonAdministrativeAction:                  true,
		ReasonPayloadFormatInvalid:                 true,
		ReasonRetainNotSupported:                   true,
		ReasonQoSNotSupported:                       true,
		ReasonUseAnotherServer:                      true,
		ReasonServerMoved:                           true,
		ReasonSharedSubscriptionsNotSupported:       true,
		ReasonConnectionRateExceeded:                true,
		ReasonMaximumConnectTime:                    true,
		ReasonSubscriptionIdentifiersNotSupported:   true,
		ReasonWildcardSubscriptionsNotSupported:     true,
	},
	TypeAuth: {
		ReasonSuccess:                true,
		ReasonContinueAuthentication: true,
		ReasonReAuthenticate:         true,
	},
}

// validateReasonCode reports an error if code is not one of the reason
// codes legal for packet type t.
func validateReasonCode(t PacketType, code ReasonCode) error {
	table, ok := legalReasonCodes[t]
	if !ok {
		return newConstructionError("ReasonCode", "packet type does not carry a reason code", nil)
	}
	if !table[code] {
		return malformed(ReasonProtocolError, "reason code not valid for "+t.String())
	}
	return nil
}
