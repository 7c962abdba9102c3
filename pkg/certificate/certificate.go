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

// Package certificate decodes DER certificates and locates the embedded
// SCT-list extension. Parsing uses the certificate-transparency-go x509
// fork, which tolerates CT poison extensions and other constructs the
// standard library rejects.
package certificate

import (
	"crypto/sha256"
	"fmt"
	"time"

	ctasn1 "github.com/google/certificate-transparency-go/asn1"
	ctx509 "github.com/google/certificate-transparency-go/x509"

	"github.com/malwhile/testct/pkg/sct"
)

// ParseError reports a DER certificate that could not be decoded.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("bad certificate encoding: %s", e.Err)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// Certificate is a decoded X.509 certificate plus its raw DER bytes, held
// for the duration of one verification call.
type Certificate struct {
	cert *ctx509.Certificate
}

// Parse decodes one DER certificate. Non-fatal decoding quirks (unhandled
// critical extensions, the CT poison extension) are tolerated; anything
// else is a ParseError.
func Parse(der []byte) (*Certificate, error) {
	cert, err := ctx509.ParseCertificate(der)
	if err != nil && ctx509.IsFatal(err) {
		return nil, &ParseError{Err: err}
	}
	return &Certificate{cert: cert}, nil
}

// SCTListExtension locates the SCT-list extension (OID
// 1.3.6.1.4.1.11129.2.4.2) and returns its body with the outer ASN.1
// OCTET STRING envelope removed. Absence of the extension is reported via
// the bool, not an error; a present but undecodable envelope is a
// sct.ListFormatError.
func (c *Certificate) SCTListExtension() ([]byte, bool, error) {
	for _, ext := range c.cert.Extensions {
		if !ext.Id.Equal(ctx509.OIDExtensionCTSCT) {
			continue
		}
		var body []byte
		rest, err := ctasn1.Unmarshal(ext.Value, &body)
		if err != nil {
			return nil, true, &sct.ListFormatError{Offset: 0, Msg: fmt.Sprintf("extension envelope: %s", err)}
		}
		if len(rest) != 0 {
			return nil, true, &sct.ListFormatError{Offset: 0, Msg: "trailing bytes after extension envelope"}
		}
		return body, true, nil
	}
	return nil, false, nil
}

// IsPrecertificate reports whether the certificate carries the CT poison
// extension, i.e. is a precertificate rather than a final certificate.
func (c *Certificate) IsPrecertificate() bool {
	for _, ext := range c.cert.Extensions {
		if ext.Id.Equal(ctx509.OIDExtensionCTPoison) {
			return true
		}
	}
	return false
}

// PrecertTBS rebuilds the TBSCertificate a log signed when this
// certificate's SCTs were issued against its precertificate: for a final
// certificate the embedded SCT-list extension is stripped, for a
// precertificate the poison extension is.
func (c *Certificate) PrecertTBS() ([]byte, error) {
	if c.IsPrecertificate() {
		return ctx509.RemoveCTPoison(c.cert.RawTBSCertificate)
	}
	return ctx509.RemoveSCTList(c.cert.RawTBSCertificate)
}

// Raw returns the certificate's DER bytes.
func (c *Certificate) Raw() []byte {
	return c.cert.Raw
}

// RawTBS returns the DER bytes of the TBSCertificate.
func (c *Certificate) RawTBS() []byte {
	return c.cert.RawTBSCertificate
}

// SPKIHash returns the SHA-256 hash of the certificate's
// SubjectPublicKeyInfo, as used for precert issuer key hashes.
func (c *Certificate) SPKIHash() [sha256.Size]byte {
	return sha256.Sum256(c.cert.RawSubjectPublicKeyInfo)
}

// NotBefore returns the start of the certificate's validity period.
func (c *Certificate) NotBefore() time.Time {
	return c.cert.NotBefore
}
