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

// Package verify checks the SCTs embedded in a certificate against a
// registry of known CT logs and reports one outcome per SCT.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/malwhile/testct/pkg/certificate"
	"github.com/malwhile/testct/pkg/loglist"
	"github.com/malwhile/testct/pkg/sct"
)

// EntryType selects which RFC 6962 log entry reconstruction the verifier
// uses when checking signatures.
type EntryType int

const (
	// EntryTypeAuto picks the precert entry whenever an issuer reference
	// is configured (logs overwhelmingly issue embedded SCTs against the
	// precertificate) and the x509 entry otherwise.
	EntryTypeAuto EntryType = iota
	EntryTypeX509
	EntryTypePrecert
)

// DefaultClockSkew is the tolerance applied when checking that an SCT
// timestamp is not in the future.
const DefaultClockSkew = 10 * time.Minute

// Config tunes a Verifier. The zero value is usable: auto entry-type
// selection, DefaultClockSkew, the real clock, and no issuance-time bound.
type Config struct {
	// EntryType selects the signed-entry reconstruction.
	EntryType EntryType

	// Issuer is the certificate of the CA that issued the certificate
	// under verification; it supplies the issuer key hash for precert
	// entries. IssuerKeyHash may be set instead when only the hash is
	// known. Setting either makes EntryTypeAuto resolve to precert.
	Issuer        *certificate.Certificate
	IssuerKeyHash *[sha256.Size]byte

	// ClockSkew is how far an SCT timestamp may lie ahead of the current
	// time before it is rejected as a future timestamp.
	ClockSkew time.Duration

	// Now is the clock; it defaults to time.Now.
	Now func() time.Time

	// IssuedAt, when set, bounds how long after issuance an SCT
	// timestamp may trail: timestamps past IssuedAt plus the log's
	// maximum merge delay are rejected. When zero the check is skipped.
	IssuedAt time.Time
}

// Verifier verifies embedded SCTs against an immutable log registry. It
// holds no mutable state and is safe for concurrent use.
type Verifier struct {
	registry *loglist.Registry
	cfg      Config
}

// New builds a Verifier over the given registry.
func New(registry *loglist.Registry, cfg Config) (*Verifier, error) {
	if registry == nil {
		return nil, fmt.Errorf("nil log registry")
	}
	if cfg.EntryType == EntryTypePrecert && cfg.Issuer == nil && cfg.IssuerKeyHash == nil {
		return nil, fmt.Errorf("precert entry type requires an issuer certificate or key hash")
	}
	if cfg.ClockSkew == 0 {
		cfg.ClockSkew = DefaultClockSkew
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Verifier{registry: registry, cfg: cfg}, nil
}

// VerifyCertificate locates the certificate's SCT-list extension and
// verifies every SCT in it. A malformed extension or list is a top-level
// error with no partial report. A certificate without the extension
// yields a report with ExtensionPresent false and a nil error.
func (v *Verifier) VerifyCertificate(cert *certificate.Certificate) (*Report, error) {
	body, present, err := cert.SCTListExtension()
	if err != nil {
		return nil, err
	}
	if !present {
		return &Report{}, nil
	}
	list, err := sct.ParseList(body)
	if err != nil {
		return nil, err
	}
	records, err := list.All()
	if err != nil {
		return nil, err
	}
	report := &Report{ExtensionPresent: true}
	for i, record := range records {
		result := v.VerifySCT(record, cert)
		result.Index = i
		report.Results = append(report.Results, result)
	}
	return report, nil
}

// VerifySCT verifies one raw SCT record against the certificate it is
// attached to. Failures are confined to the returned Result; sibling SCTs
// are unaffected.
func (v *Verifier) VerifySCT(record []byte, cert *certificate.Certificate) Result {
	parsed, err := sct.Parse(record)
	if err != nil {
		return Result{Outcome: OutcomeMalformed, Err: err}
	}
	result := Result{
		LogID:     append([]byte(nil), parsed.LogID[:]...),
		Timestamp: parsed.Time(),
	}

	log, ok := v.registry.Lookup(parsed.LogID)
	if !ok {
		result.Outcome = OutcomeUnknownLog
		result.Err = fmt.Errorf("no known log with ID %s", hex.EncodeToString(parsed.LogID[:]))
		return result
	}
	result.Log = log

	entry, err := v.logEntry(cert)
	if err != nil {
		result.Outcome = OutcomeMalformed
		result.Err = err
		return result
	}
	signedData, err := parsed.SignedData(entry)
	if err != nil {
		result.Outcome = OutcomeMalformed
		result.Err = err
		return result
	}
	if err := parsed.VerifySignature(log.PublicKey, signedData); err != nil {
		result.Outcome = OutcomeSignatureInvalid
		result.Err = fmt.Errorf("log %q: %w", log.Description, err)
		return result
	}

	now := v.cfg.Now()
	if result.Timestamp.After(now.Add(v.cfg.ClockSkew)) {
		result.Outcome = OutcomeFutureTimestamp
		result.Err = fmt.Errorf("SCT timestamp %s is after %s", result.Timestamp, now)
		return result
	}
	if !v.cfg.IssuedAt.IsZero() && log.MaxMergeDelay > 0 {
		if deadline := v.cfg.IssuedAt.Add(log.MaxMergeDelay); result.Timestamp.After(deadline) {
			result.Outcome = OutcomeFutureTimestamp
			result.Err = fmt.Errorf("SCT timestamp %s exceeds issuance %s plus merge delay %s",
				result.Timestamp, v.cfg.IssuedAt, log.MaxMergeDelay)
			return result
		}
	}

	result.Outcome = OutcomeValid
	return result
}

func (v *Verifier) logEntry(cert *certificate.Certificate) (sct.LogEntry, error) {
	entryType := v.cfg.EntryType
	if entryType == EntryTypeAuto {
		if v.cfg.Issuer != nil || v.cfg.IssuerKeyHash != nil {
			entryType = EntryTypePrecert
		} else {
			entryType = EntryTypeX509
		}
	}

	switch entryType {
	case EntryTypeX509:
		return sct.LogEntry{Type: sct.X509Entry, Certificate: cert.Raw()}, nil
	case EntryTypePrecert:
		var keyHash [sha256.Size]byte
		switch {
		case v.cfg.IssuerKeyHash != nil:
			keyHash = *v.cfg.IssuerKeyHash
		case v.cfg.Issuer != nil:
			keyHash = v.cfg.Issuer.SPKIHash()
		default:
			return sct.LogEntry{}, fmt.Errorf("precert entry requires an issuer certificate or key hash")
		}
		tbs, err := cert.PrecertTBS()
		if err != nil {
			return sct.LogEntry{}, fmt.Errorf("rebuilding precert TBSCertificate: %w", err)
		}
		return sct.LogEntry{Type: sct.PrecertEntry, IssuerKeyHash: keyHash, TBS: tbs}, nil
	default:
		return sct.LogEntry{}, fmt.Errorf("unknown entry type %d", entryType)
	}
}
