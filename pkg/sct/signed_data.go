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

package sct

import (
	"crypto/sha256"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// EntryType is an RFC 6962 LogEntryType.
type EntryType uint16

const (
	X509Entry    EntryType = 0
	PrecertEntry EntryType = 1
)

// signatureTypeCertificateTimestamp is the SignatureType for SCTs
// (RFC 6962 s3.2).
const signatureTypeCertificateTimestamp = 0

// LogEntry is the entry a log signed over when it issued an SCT. For
// X509Entry, Certificate holds the full DER certificate as submitted. For
// PrecertEntry, IssuerKeyHash is the SHA-256 hash of the issuing key's
// SubjectPublicKeyInfo and TBS the defanged TBSCertificate.
type LogEntry struct {
	Type          EntryType
	Certificate   []byte
	IssuerKeyHash [sha256.Size]byte
	TBS           []byte
}

// SignedData reconstructs the exact digitally-signed structure the log
// signed for this SCT over the given entry:
//
//	digitally-signed struct {
//	    Version sct_version;
//	    SignatureType signature_type = certificate_timestamp;
//	    uint64 timestamp;
//	    LogEntryType entry_type;
//	    select(entry_type) {
//	        case x509_entry: ASN.1Cert;
//	        case precert_entry: PreCert;
//	    } signed_entry;
//	    CtExtensions extensions;
//	}
func (sct *SignedCertificateTimestamp) SignedData(entry LogEntry) ([]byte, error) {
	var b cryptobyte.Builder
	b.AddUint8(uint8(sct.Version))
	b.AddUint8(signatureTypeCertificateTimestamp)
	b.AddUint64(sct.Timestamp)
	b.AddUint16(uint16(entry.Type))
	switch entry.Type {
	case X509Entry:
		if len(entry.Certificate) == 0 {
			return nil, fmt.Errorf("x509 entry without certificate bytes")
		}
		b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(entry.Certificate)
		})
	case PrecertEntry:
		if len(entry.TBS) == 0 {
			return nil, fmt.Errorf("precert entry without TBSCertificate bytes")
		}
		b.AddBytes(entry.IssuerKeyHash[:])
		b.AddUint24LengthPrefixed(func(b *cryptobyte.Builder) {
			b.AddBytes(entry.TBS)
		})
	default:
		return nil, fmt.Errorf("unknown log entry type %d", entry.Type)
	}
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		b.AddBytes(sct.Extensions)
	})
	return b.Bytes()
}
