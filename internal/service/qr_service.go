package service

import (
	"bytes"
	"fmt"
	"image/png"

	"github.com/skip2/go-qrcode"
)

const qrImageSize = 256

// QRService implements ports.QRGenerator.
type QRService struct{}

// NewQRService creates a new QRService.
func NewQRService() *QRService {
	return &QRService{}
}

// PNG renders content as a 256px PNG QR code.
func (s *QRService) PNG(content string) ([]byte, error) {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("encode qr: %w", err)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, qr.Image(qrImageSize)); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}
