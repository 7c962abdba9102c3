// Copyright 2025 The testct Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package sct implements the RFC 6962 wire format for Signed Certificate
// Timestamps: the serialized SCT record, the SCT list carried in the X.509
// extension, the digitally-signed structure a log signs, and signature
// verification against a log key.
package sct

import (
	"crypto/sha256"
	"fmt"
	"time"

	"golang.org/x/crypto/cryptobyte"
)

// Version is the SCT version (RFC 6962 s3.2).
type Version uint8

// V1 is the only version defined by RFC 6962.
const V1 Version = 0

// HashAlgorithm is a TLS HashAlgorithm identifier (RFC 5246 s7.4.1.4.1).
type HashAlgorithm uint8

const (
	SHA256 HashAlgorithm = 4
	SHA384 HashAlgorithm = 5
	SHA512 HashAlgorithm = 6
)

// SignatureAlgorithm is a TLS SignatureAlgorithm identifier.
type SignatureAlgorithm uint8

const (
	RSA     SignatureAlgorithm = 1
	ECDSA   SignatureAlgorithm = 3
	Ed25519 SignatureAlgorithm = 7
)

// SignatureAndHashAlgorithm identifies how a DigitallySigned value was
// produced.
type SignatureAndHashAlgorithm struct {
	Hash      HashAlgorithm
	Signature SignatureAlgorithm
}

// DigitallySigned is the TLS digitally-signed wrapper around a signature.
type DigitallySigned struct {
	Algorithm SignatureAndHashAlgorithm
	Signature []byte
}

// SignedCertificateTimestamp is one parsed SCT record.
type SignedCertificateTimestamp struct {
	Version    Version
	LogID      [sha256.Size]byte
	Timestamp  uint64 // milliseconds since the Unix epoch
	Extensions []byte
	Signature  DigitallySigned
}

// Parse decodes a serialized SCT record. Trailing bytes after the record
// are an error.
func Parse(data []byte) (*SignedCertificateTimestamp, error) {
	s := cryptobyte.String(data)
	sct := new(SignedCertificateTimestamp)
	if err := sct.unmarshal(&s); err != nil {
		return nil, err
	}
	if !s.Empty() {
		return nil, fmt.Errorf("trailing bytes after SCT record")
	}
	return sct, nil
}

func (sct *SignedCertificateTimestamp) unmarshal(s *cryptobyte.String) error {
	var version uint8
	if !s.ReadUint8(&version) {
		return fmt.Errorf("reading SCT version")
	}
	sct.Version = Version(version)
	if sct.Version != V1 {
		return fmt.Errorf("unsupported SCT version 0x%02x", version)
	}
	if !s.CopyBytes(sct.LogID[:]) {
		return fmt.Errorf("reading SCT log ID")
	}
	if !s.ReadUint64(&sct.Timestamp) {
		return fmt.Errorf("reading SCT timestamp")
	}
	var extensions cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&extensions) {
		return fmt.Errorf("reading SCT extensions")
	}
	sct.Extensions = extensions
	var hash, sig uint8
	if !s.ReadUint8(&hash) || !s.ReadUint8(&sig) {
		return fmt.Errorf("reading SCT signature algorithm")
	}
	sct.Signature.Algorithm.Hash = HashAlgorithm(hash)
	sct.Signature.Algorithm.Signature = SignatureAlgorithm(sig)
	var signature cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&signature) {
		return fmt.Errorf("reading SCT signature")
	}
	sct.Signature.Signature = signature
	return nil
}

// Bytes re-encodes the SCT into its wire form. A parsed SCT re-encodes to
// the exact bytes it was parsed from.
func (sct *SignedCertificateTimestamp) Bytes() ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(uint8(sct.Version))
	b.AddBytes(sct.LogID[:])
	b.AddUint64(sct.Timestamp)
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(sct.Extensions)
	})
	b.AddUint8(uint8(sct.Signature.Algorithm.Hash))
	b.AddUint8(uint8(sct.Signature.Algorithm.Signature))
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(sct.Signature.Signature)
	})
	return b.Bytes()
}

// Time returns the SCT timestamp as a time.Time.
func (sct *SignedCertificateTimestamp) Time() time.Time {
	return time.UnixMilli(int64(sct.Timestamp)).UTC()
}
