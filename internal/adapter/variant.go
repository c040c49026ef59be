// Package adapter normalizes provider webhook payloads into the canonical
// message model.
package adapter

import "strings"

// Variant identifies which envelope shape a payload was recognized as.
type Variant int

const (
	VariantMalformed Variant = iota
	VariantNative
	VariantProvider
	VariantPresence
	VariantStatus
)

func (v Variant) String() string {
	switch v {
	case VariantNative:
		return "native"
	case VariantProvider:
		return "provider"
	case VariantPresence:
		return "presence"
	case VariantStatus:
		return "status"
	default:
		return "malformed"
	}
}

// Reasons reported when a payload produces no message.
const (
	ReasonMalformed  = "malformed-payload"
	ReasonPresence   = "presence-event"
	ReasonStatus     = "status-event"
	ReasonIncomplete = "incomplete-payload"
)

const (
	typeReceived         = "receivedcallback"
	typePresence         = "presencechatcallback"
	typeMessageStatus    = "messagestatuscallback"
	typeDelivery         = "deliverycallback"
	typeNativeOrReceived = "message"
)

var providerSignalKeys = []string{"text", "messageId", "phone", "phones", "contact"}

// classify picks the envelope variant without extracting any fields.
func classify(body map[string]any) Variant {
	kind := strings.ToLower(strings.TrimSpace(str(body["type"])))

	if kind == typeNativeOrReceived {
		if msg, ok := body["message"].(map[string]any); ok {
			_, hasContact := msg["contactId"]
			_, hasContent := msg["content"]
			if hasContact || hasContent {
				return VariantNative
			}
		}
	}

	switch kind {
	case typePresence:
		return VariantPresence
	case typeMessageStatus, typeDelivery:
		return VariantStatus
	case typeReceived, typeNativeOrReceived:
		return VariantProvider
	}

	for _, key := range providerSignalKeys {
		if _, ok := body[key]; ok {
			return VariantProvider
		}
	}
	return VariantMalformed
}
