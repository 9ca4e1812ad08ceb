package models

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidDataURI = errors.New("invalid data URI")

// InlineData is decoded media ready to send to the generative backend
type InlineData struct {
	MIMEType string
	Data     []byte
}

// ParseDataURI decodes a base64 "data:<mime>;base64,<payload>" reference
func ParseDataURI(ref string) (InlineData, error) {
	rest, ok := strings.CutPrefix(ref, "data:")
	if !ok {
		return InlineData{}, fmt.Errorf("%w: missing data: prefix", ErrInvalidDataURI)
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return InlineData{}, fmt.Errorf("%w: missing payload", ErrInvalidDataURI)
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return InlineData{}, fmt.Errorf("%w: only base64 payloads are supported", ErrInvalidDataURI)
	}
	if mimeType == "" {
		return InlineData{}, fmt.Errorf("%w: missing media type", ErrInvalidDataURI)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return InlineData{}, fmt.Errorf("%w: %v", ErrInvalidDataURI, err)
	}
	return InlineData{MIMEType: mimeType, Data: data}, nil
}

// DataURI encodes d as a data URI
func (d InlineData) DataURI() string {
	return "data:" + d.MIMEType + ";base64," + base64.StdEncoding.EncodeToString(d.Data)
}
