// Package formatter converts UCAN JWT segments to and from their
// base64url encoded JSON form.
package formatter

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ipvm-wg/go-ucan-agent/core/result/failure"
	"github.com/ipvm-wg/go-ucan-agent/ucan/crypto/signature"
	hdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/header"
	pdm "github.com/ipvm-wg/go-ucan-agent/ucan/datamodel/payload"
)

const (
	ErrInvalidBase64 = failure.Kind("InvalidBase64")
	ErrInvalidJSON   = failure.Kind("InvalidJSON")
)

// Serialize encodes the value as base64url JSON. HTML characters are not
// escaped.
func Serialize(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	// Encoder terminates each value with a newline
	return base64.RawURLEncoding.EncodeToString(bytes.TrimSuffix(buf.Bytes(), []byte("\n"))), nil
}

// Deserialize decodes a base64url JSON segment into v. Numbers in untyped
// positions decode as json.Number.
func Deserialize(segment string, v any) error {
	b, err := decodeSegment(segment)
	if err != nil {
		return failure.Wrap(ErrInvalidBase64, err, "can't parse %s: can't parse as base64url", segment)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return failure.Wrap(ErrInvalidJSON, err, "can't parse %s: can't parse base64url encoded JSON inside", segment)
	}
	if dec.More() {
		return failure.New(ErrInvalidJSON, "can't parse %s: trailing data after JSON value", segment)
	}
	return nil
}

func decodeSegment(segment string) ([]byte, error) {
	return base64.RawURLEncoding.DecodeString(strings.TrimRight(segment, "="))
}

func FormatSignPayload(header hdm.HeaderModel, payload pdm.PayloadModel) (string, error) {
	hdr, err := FormatHeader(header)
	if err != nil {
		return "", fmt.Errorf("formatting header: %w", err)
	}
	pld, err := FormatPayload(payload)
	if err != nil {
		return "", fmt.Errorf("formatting payload: %w", err)
	}
	return fmt.Sprintf("%s.%s", hdr, pld), nil
}

func FormatHeader(header hdm.HeaderModel) (string, error) {
	return Serialize(header)
}

func FormatPayload(payload pdm.PayloadModel) (string, error) {
	return Serialize(payload)
}

func FormatSignature(s signature.Signature) string {
	return base64.RawURLEncoding.EncodeToString(s.Raw())
}

func ParseHeader(segment string) (hdm.HeaderModel, error) {
	var h hdm.HeaderModel
	if err := Deserialize(segment, &h); err != nil {
		return hdm.HeaderModel{}, err
	}
	return h, nil
}

func ParsePayload(segment string) (pdm.PayloadModel, error) {
	var p pdm.PayloadModel
	if err := Deserialize(segment, &p); err != nil {
		return pdm.PayloadModel{}, err
	}
	return p, nil
}

// ParseSignature decodes the raw signature bytes of the final segment.
func ParseSignature(segment string) ([]byte, error) {
	b, err := decodeSegment(segment)
	if err != nil {
		return nil, failure.Wrap(ErrInvalidBase64, err, "can't parse signature %s", segment)
	}
	return b, nil
}
