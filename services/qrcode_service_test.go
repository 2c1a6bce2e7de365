// file: services/qrcode_service_test.go
package services

import (
	"bytes"
	"errors"
	"testing"

	"github.com/skip2/go-qrcode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Mock encoder function (successful)
func mockQRCodeEncoderSuccess(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return []byte("qr:" + content), nil
}

// Mock encoder function (failure)
func mockQRCodeEncoderFailure(content string, level qrcode.RecoveryLevel, size int) ([]byte, error) {
	return nil, errors.New("QR code generation failed")
}

func TestTeamShareURL(t *testing.T) {
	assert.Equal(t, "http://localhost:8080/team/7", TeamShareURL("http://localhost:8080/", 7))
	assert.Equal(t, "https://hspace.example/team/12", TeamShareURL("https://hspace.example", 12))
}

func TestGenerateQRCode_Success(t *testing.T) {
	data, err := GenerateQRCode("https://hspace.example/team/1", 200, mockQRCodeEncoderSuccess)

	assert.NoError(t, err)
	assert.Equal(t, "qr:https://hspace.example/team/1", string(data))
}

func TestGenerateQRCode_InvalidSize(t *testing.T) {
	data, err := GenerateQRCode("x", -100, mockQRCodeEncoderSuccess)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "invalid size: must be positive", err.Error())
}

func TestGenerateQRCode_EncoderFails(t *testing.T) {
	data, err := GenerateQRCode("x", 200, mockQRCodeEncoderFailure)

	assert.Error(t, err)
	assert.Nil(t, data)
	assert.Equal(t, "QR code generation failed", err.Error())
}

func TestGenerateQRCode_RealEncoderWritesPNG(t *testing.T) {
	data, err := GenerateQRCode("https://hspace.example/team/1", 128, nil)

	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))
}
