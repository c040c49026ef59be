package adapter_test

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/crm-inbox/internal/adapter"
	"github.com/popeskul/crm-inbox/internal/models"
)

var fixedNow = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func decode(t *testing.T, raw string) map[string]any {
	t.Helper()
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var body map[string]any
	require.NoError(t, dec.Decode(&body))
	return body
}

func newAdapter() *adapter.Adapter {
	return adapter.NewWithClock(func() time.Time { return fixedNow })
}

func TestAdapter_Adapt_Provider(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		expected models.IncomingMessage
	}{
		{
			name:    "received callback with text",
			payload: `{"type":"ReceivedCallback","phone":"5511999999999","text":{"message":"hi"}}`,
			expected: models.IncomingMessage{
				ContactID:      "5511999999999",
				Content:        "hi",
				Kind:           models.KindText,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      fixedNow,
			},
		},
		{
			name: "messages array element wins over top level",
			payload: `{"type":"ReceivedCallback","messageId":"top","phone":"1",
				"messages":[{"id":"m0","from":"5511888887777@s.whatsapp.net","text":{"body":"from element"},"timestamp":1714564800000,"type":"chat","fromMe":true}],
				"text":{"message":"ignored"}}`,
			expected: models.IncomingMessage{
				ExternalID:     "m0",
				ContactID:      "5511888887777",
				Content:        "from element",
				Kind:           models.KindText,
				Direction:      models.DirectionOutbound,
				DeliveryStatus: models.StatusSent,
				Timestamp:      time.UnixMilli(1714564800000).UTC(),
			},
		},
		{
			name:    "participant beats phone",
			payload: `{"type":"ReceivedCallback","participant":"+55 (11) 97777-6666","phone":"120363000000@g.us","messageId":"abc","text":{"message":"group hi"},"momment":1714564800123}`,
			expected: models.IncomingMessage{
				ExternalID:     "abc",
				ContactID:      "5511977776666",
				Content:        "group hi",
				Kind:           models.KindText,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      time.UnixMilli(1714564800123).UTC(),
			},
		},
		{
			name:    "phones array takes first entry",
			payload: `{"phones":["5511911112222","5511933334444"],"image":{"caption":"","imageUrl":"https://cdn/x.jpg"}}`,
			expected: models.IncomingMessage{
				ContactID:      "5511911112222",
				Content:        "https://cdn/x.jpg",
				Kind:           models.KindImage,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      fixedNow,
			},
		},
		{
			name:    "contact id and list response",
			payload: `{"contact":{"id":"5511900001111@c.us"},"listResponseMessage":{"title":"Option B"},"moment":"2024-04-30T10:00:00Z"}`,
			expected: models.IncomingMessage{
				ContactID:      "5511900001111",
				Content:        "Option B",
				Kind:           models.KindList,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      time.Date(2024, 4, 30, 10, 0, 0, 0, time.UTC),
			},
		},
		{
			name:    "message object with unknown provider kind",
			payload: `{"type":"message","message":{"id":"mm","body":"poll","type":"poll_creation","timestamp":1000,"fromMe":false},"phone":"42"}`,
			expected: models.IncomingMessage{
				ExternalID:     "mm",
				ContactID:      "42",
				Content:        "poll",
				Kind:           models.KindUnknown,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      time.UnixMilli(1000).UTC(),
			},
		},
		{
			name:    "audio video document sticker precedence",
			payload: `{"phone":"7","audio":{"mimeType":"audio/ogg"},"video":{"videoUrl":"v"},"sticker":{"stickerUrl":"s"}}`,
			expected: models.IncomingMessage{
				ContactID:      "7",
				Content:        "audio/ogg",
				Kind:           models.KindAudio,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      fixedNow,
			},
		},
		{
			name:    "document falls through blank fields",
			payload: `{"phone":"8","document":{"title":" ","fileName":"contract.pdf"}}`,
			expected: models.IncomingMessage{
				ContactID:      "8",
				Content:        "contract.pdf",
				Kind:           models.KindDocument,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      fixedNow,
			},
		},
		{
			name:    "explicit status is honoured",
			payload: `{"phone":"9","text":{"message":"x"},"status":"SENT","fromMe":"false"}`,
			expected: models.IncomingMessage{
				ContactID:      "9",
				Content:        "x",
				Kind:           models.KindText,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusSent,
				Timestamp:      fixedNow,
			},
		},
		{
			name:    "numeric phone",
			payload: `{"phone":5511999999999,"text":{"message":"num"}}`,
			expected: models.IncomingMessage{
				ContactID:      "5511999999999",
				Content:        "num",
				Kind:           models.KindText,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      fixedNow,
			},
		},
		{
			name:    "content without contact is kept",
			payload: `{"messageId":"only","text":{"message":"orphan"}}`,
			expected: models.IncomingMessage{
				ExternalID:     "only",
				Content:        "orphan",
				Kind:           models.KindText,
				Direction:      models.DirectionInbound,
				DeliveryStatus: models.StatusReceived,
				Timestamp:      fixedNow,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newAdapter().Adapt(decode(t, tt.payload))

			require.NotNil(t, result.Message, "reason: %s", result.Reason)
			assert.Equal(t, adapter.VariantProvider, result.Variant)
			assert.Equal(t, tt.expected, *result.Message)
		})
	}
}

func TestAdapter_Adapt_Native(t *testing.T) {
	payload := `{"type":"message","message":{"id":"n1","contactId":"5511999999999@c.us","content":"native hello","timestamp":"2024-05-01T08:30:00Z","isFromMe":true,"messageType":"image","status":"sent"}}`

	result := newAdapter().Adapt(decode(t, payload))

	require.NotNil(t, result.Message)
	assert.Equal(t, adapter.VariantNative, result.Variant)
	assert.Equal(t, models.IncomingMessage{
		ExternalID:     "n1",
		ContactID:      "5511999999999",
		Content:        "native hello",
		Kind:           models.KindImage,
		Direction:      models.DirectionOutbound,
		DeliveryStatus: models.StatusSent,
		Timestamp:      time.Date(2024, 5, 1, 8, 30, 0, 0, time.UTC),
	}, *result.Message)
}

func TestAdapter_Adapt_Discarded(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		variant adapter.Variant
		reason  string
	}{
		{
			name:    "presence callback",
			payload: `{"type":"PresenceChatCallback","phone":"5511999999999","status":"AVAILABLE"}`,
			variant: adapter.VariantPresence,
			reason:  adapter.ReasonPresence,
		},
		{
			name:    "message status callback",
			payload: `{"type":"MessageStatusCallback","phone":"5511999999999","status":"READ","ids":["x"]}`,
			variant: adapter.VariantStatus,
			reason:  adapter.ReasonStatus,
		},
		{
			name:    "unrecognized shape",
			payload: `{"hello":"world"}`,
			variant: adapter.VariantMalformed,
			reason:  adapter.ReasonMalformed,
		},
		{
			name:    "no contact and no content",
			payload: `{"type":"ReceivedCallback","messageId":"abc","text":{"message":"   "}}`,
			variant: adapter.VariantProvider,
			reason:  adapter.ReasonIncomplete,
		},
		{
			name:    "native envelope without values",
			payload: `{"type":"message","message":{"contactId":"","content":""}}`,
			variant: adapter.VariantNative,
			reason:  adapter.ReasonIncomplete,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := newAdapter().Adapt(decode(t, tt.payload))

			assert.Nil(t, result.Message)
			assert.Equal(t, tt.variant, result.Variant)
			assert.Equal(t, tt.reason, result.Reason)
		})
	}
}

func TestAdapter_Adapt_Deterministic(t *testing.T) {
	payloads := []string{
		`{"type":"ReceivedCallback","phone":"5511999999999","text":{"message":"hi"}}`,
		`{"messages":[{"id":"a","from":"1@s","body":"b"}]}`,
		`{"type":"PresenceChatCallback","phone":"1"}`,
	}

	for _, raw := range payloads {
		first := newAdapter().Adapt(decode(t, raw))
		second := newAdapter().Adapt(decode(t, raw))
		assert.Equal(t, first, second, raw)
	}
}

func TestNormalizeContactID(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "5511999999999", want: "5511999999999"},
		{in: "5511999999999@s.whatsapp.net", want: "5511999999999"},
		{in: "+55 (11) 99999-9999", want: "5511999999999"},
		{in: "abc@1234", want: ""},
		{in: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := adapter.NormalizeContactID(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, adapter.NormalizeContactID(got))
		})
	}
}

func TestVariant_String(t *testing.T) {
	assert.Equal(t, "native", adapter.VariantNative.String())
	assert.Equal(t, "provider", adapter.VariantProvider.String())
	assert.Equal(t, "presence", adapter.VariantPresence.String())
	assert.Equal(t, "status", adapter.VariantStatus.String())
	assert.Equal(t, "malformed", adapter.VariantMalformed.String())
}

func TestRawPhone(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    string
	}{
		{name: "participant first", payload: `{"participant":"5511@c.us","phone":"120@g.us","from":"x"}`, want: "5511@c.us"},
		{name: "phone next", payload: `{"phone":"5511999999999","from":"x"}`, want: "5511999999999"},
		{name: "from last", payload: `{"from":"5511888887777@s.whatsapp.net"}`, want: "5511888887777@s.whatsapp.net"},
		{name: "numeric phone", payload: `{"phone":5511999999999}`, want: "5511999999999"},
		{name: "none", payload: `{"text":{"message":"hi"}}`, want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, adapter.RawPhone(decode(t, tt.payload)))
		})
	}
}

func TestInstanceID(t *testing.T) {
	assert.Equal(t, "3C2A", adapter.InstanceID(decode(t, `{"instanceId":" 3C2A "}`)))
	assert.Empty(t, adapter.InstanceID(decode(t, `{"phone":"1"}`)))
	assert.Empty(t, adapter.InstanceID(nil))
}
