package adapter

import (
	"strings"
	"time"

	"github.com/popeskul/crm-inbox/internal/models"
)

// Result is the outcome of adapting one payload. Message is nil whenever the
// payload carries nothing worth storing; Reason then says why.
type Result struct {
	Variant Variant
	Message *models.IncomingMessage
	Reason  string
}

// Adapter is stateless apart from the clock used for missing timestamps.
type Adapter struct {
	now func() time.Time
}

func New() *Adapter {
	return &Adapter{now: time.Now}
}

// NewWithClock is used where output must be reproducible.
func NewWithClock(now func() time.Time) *Adapter {
	return &Adapter{now: now}
}

// Adapt classifies body and extracts a canonical message from it.
func (a *Adapter) Adapt(body map[string]any) Result {
	variant := classify(body)

	var msg *models.IncomingMessage
	switch variant {
	case VariantPresence:
		return Result{Variant: variant, Reason: ReasonPresence}
	case VariantStatus:
		return Result{Variant: variant, Reason: ReasonStatus}
	case VariantMalformed:
		return Result{Variant: variant, Reason: ReasonMalformed}
	case VariantNative:
		msg = a.extractNative(object(body["message"]))
	case VariantProvider:
		msg = a.extractProvider(body)
	}

	if msg.ContactID == "" && strings.TrimSpace(msg.Content) == "" {
		return Result{Variant: variant, Reason: ReasonIncomplete}
	}
	return Result{Variant: variant, Message: msg}
}

func (a *Adapter) extractNative(m map[string]any) *models.IncomingMessage {
	msg := &models.IncomingMessage{
		ExternalID: str(m["id"]),
		ContactID:  NormalizeContactID(str(m["contactId"])),
		Content:    str(m["content"]),
		Kind:       kindOf(str(m["messageType"])),
	}

	if ts, ok := parseTime(m["timestamp"]); ok {
		msg.Timestamp = ts
	} else {
		msg.Timestamp = a.now().UTC()
	}

	fromMe, _ := flag(m["isFromMe"])
	msg.Direction = directionOf(fromMe)
	msg.DeliveryStatus = statusOf(str(m["status"]), msg.Direction)
	return msg
}

func (a *Adapter) extractProvider(body map[string]any) *models.IncomingMessage {
	message := object(body["message"])
	var element map[string]any
	if list, ok := body["messages"].([]any); ok && len(list) > 0 {
		element = object(list[0])
	}
	contact := object(body["contact"])

	msg := &models.IncomingMessage{
		ExternalID: firstNonBlank(
			str(get(element, "id")),
			str(get(message, "id")),
			str(body["messageId"]),
		),
	}

	msg.ContactID = NormalizeContactID(firstNonBlank(
		str(body["participant"]),
		str(body["participantPhone"]),
		str(body["participantLid"]),
		str(get(element, "from")),
		str(body["phones"]),
		str(body["phone"]),
		str(get(contact, "id")),
		str(body["from"]),
		str(body["sender"]),
		str(body["senderLid"]),
	))

	msg.Content, msg.Kind = extractContent(body, element, message)
	msg.Timestamp = a.extractTimestamp(body, element, message)

	fromMe := false
	for _, src := range []map[string]any{element, message, body} {
		if v, ok := flag(get(src, "fromMe")); ok {
			fromMe = v
			break
		}
	}
	msg.Direction = directionOf(fromMe)
	msg.DeliveryStatus = statusOf(str(body["status"]), msg.Direction)
	return msg
}

// extractContent walks the known content locations in precedence order. The
// first non-blank candidate fixes both the text and the kind.
func extractContent(body, element, message map[string]any) (string, models.MessageKind) {
	if element != nil {
		var content string
		if text := object(element["text"]); text != nil {
			content = firstNonBlank(str(text["body"]), str(text["message"]))
		} else {
			content = firstNonBlank(str(element["body"]), str(element["text"]))
		}
		if content != "" {
			return content, kindOf(str(element["type"]))
		}
	} else if message != nil {
		content := firstNonBlank(str(message["body"]), str(message["text"]))
		if content != "" {
			return content, kindOf(str(message["type"]))
		}
	}

	if text := object(body["text"]); text != nil {
		if content := firstNonBlank(str(text["message"])); content != "" {
			return content, models.KindText
		}
	}

	for _, section := range mediaSections {
		node := object(body[section.key])
		if node == nil {
			continue
		}
		values := make([]string, 0, len(section.fields))
		for _, f := range section.fields {
			values = append(values, str(node[f]))
		}
		if content := firstNonBlank(values...); content != "" {
			return content, section.kind
		}
	}

	return "", models.KindText
}

var mediaSections = []struct {
	key    string
	fields []string
	kind   models.MessageKind
}{
	{key: "listResponseMessage", fields: []string{"message", "title"}, kind: models.KindList},
	{key: "image", fields: []string{"caption", "imageUrl", "thumbnailUrl"}, kind: models.KindImage},
	{key: "audio", fields: []string{"audioUrl", "mimeType"}, kind: models.KindAudio},
	{key: "video", fields: []string{"caption", "videoUrl"}, kind: models.KindVideo},
	{key: "document", fields: []string{"title", "fileName", "documentUrl"}, kind: models.KindDocument},
	{key: "sticker", fields: []string{"stickerUrl", "mimeType"}, kind: models.KindSticker},
}

func (a *Adapter) extractTimestamp(body, element, message map[string]any) time.Time {
	nested := get(element, "timestamp")
	if element == nil {
		nested = get(message, "timestamp")
	}

	if ms, ok := number(nested); ok {
		return time.UnixMilli(ms).UTC()
	}
	if ms, ok := number(body["timestamp"]); ok {
		return time.UnixMilli(ms).UTC()
	}
	for _, candidate := range []any{nested, body["timestamp"], body["momment"], body["moment"]} {
		if ts, ok := parseTime(candidate); ok {
			return ts
		}
	}
	return a.now().UTC()
}

func kindOf(raw string) models.MessageKind {
	switch k := models.MessageKind(strings.ToLower(strings.TrimSpace(raw))); k {
	case "", "chat", "conversation":
		return models.KindText
	case models.KindText, models.KindImage, models.KindAudio, models.KindVideo,
		models.KindDocument, models.KindSticker, models.KindList:
		return k
	default:
		return models.KindUnknown
	}
}

func directionOf(fromMe bool) models.Direction {
	if fromMe {
		return models.DirectionOutbound
	}
	return models.DirectionInbound
}

func statusOf(raw string, d models.Direction) models.DeliveryStatus {
	switch s := models.DeliveryStatus(strings.ToLower(strings.TrimSpace(raw))); s {
	case models.StatusSent, models.StatusReceived:
		return s
	default:
		return models.StatusFor(d)
	}
}
