package qr_test

import (
	"encoding/base64"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/popeskul/crm-inbox/internal/qr"
)

func TestRepairBase64(t *testing.T) {
	tests := []struct {
		name      string
		candidate string
		want      string
		wantErr   bool
	}{
		{name: "already valid", candidate: "QUFB", want: "QUFB"},
		{name: "missing padding", candidate: "QUE", want: "QUE="},
		{name: "data url prefix", candidate: "data:image/png;base64,QUFB", want: "QUFB"},
		{name: "numeric prefix", candidate: "2@QUFB", want: "QUFB"},
		{name: "segments joined", candidate: "QU,FB|QU E=", want: "QUFBQUE="},
		{name: "embedded padding dropped", candidate: "QQ==QUFB", want: "QQQUFB=="},
		{name: "url safe alphabet", candidate: "-_-_", want: "+/+/"},
		{name: "control characters", candidate: "QU\x00FB\x07", want: "QUFB"},
		{name: "dangling character", candidate: "QUFBQ", wantErr: true},
		{name: "nothing left", candidate: "@@@ !!", wantErr: true},
		{name: "empty", candidate: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := qr.RepairBase64(tt.candidate)
			if tt.wantErr {
				assert.ErrorIs(t, err, qr.ErrBase64Repair)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRepairBase64_Idempotent(t *testing.T) {
	inputs := []string{"QUFB", "QUE=", "QQ==", base64.StdEncoding.EncodeToString([]byte("pairing code"))}

	for _, in := range inputs {
		once, err := qr.RepairBase64(in)
		require.NoError(t, err)
		twice, err := qr.RepairBase64(once)
		require.NoError(t, err)

		assert.Equal(t, in, once)
		assert.Equal(t, once, twice)
	}
}

func TestDecodeCandidate_RoundTrip(t *testing.T) {
	png, err := qrcode.Encode("https://example.com/pair/XYZ", qrcode.Medium, 128)
	require.NoError(t, err)

	inputs := [][]byte{
		png,
		{0x00, 0x01, 0x02, 0xfe, 0xff},
		[]byte("a"),
	}

	for _, want := range inputs {
		encoded := base64.StdEncoding.EncodeToString(want)
		mid := len(encoded) / 2
		garbled := "42@" + encoded[:mid] + "," + encoded[mid:]

		decoded, err := qr.DecodeCandidate(garbled)
		require.NoError(t, err)
		assert.Equal(t, want, decoded)
	}
}

func TestIsPNG(t *testing.T) {
	png, err := qrcode.Encode("x", qrcode.Low, 64)
	require.NoError(t, err)

	assert.True(t, qr.IsPNG(png))
	assert.False(t, qr.IsPNG([]byte("AAA")))
	assert.False(t, qr.IsPNG(nil))
}
