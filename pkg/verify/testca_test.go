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

package verify

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"encoding/base64"
	"math/big"
	"testing"
	"time"

	ct "github.com/google/certificate-transparency-go"
	"github.com/google/certificate-transparency-go/tls"
	ctx509 "github.com/google/certificate-transparency-go/x509"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/cryptobyte"

	"github.com/malwhile/testct/pkg/certificate"
	"github.com/malwhile/testct/pkg/loglist"
)

// testEnv holds a CA, a certificate to embed SCTs into, and a registry
// with one ECDSA and one RSA log, all minted fresh per test.
type testEnv struct {
	caKey    *rsa.PrivateKey
	skid     []byte
	caCert   *certificate.Certificate
	baseCert *x509.Certificate

	ecLogKey  *ecdsa.PrivateKey
	rsaLogKey *rsa.PrivateKey
	ecLogID   [sha256.Size]byte
	rsaLogID  [sha256.Size]byte
	registry  *loglist.Registry

	now time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		now: time.Date(2025, 8, 25, 12, 0, 0, 0, time.UTC),
	}

	var err error
	env.caKey, err = rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	env.skid, err = cryptoutils.SKID(&env.caKey.PublicKey)
	require.NoError(t, err)
	env.baseCert = createBaseCert(t, env.caKey, env.skid, big.NewInt(1))

	caBase := createBaseCert(t, env.caKey, env.skid, big.NewInt(99))
	env.caCert, err = certificate.Parse(caBase.Raw)
	require.NoError(t, err)

	env.ecLogKey, err = ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)
	env.rsaLogKey, err = rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	env.ecLogID = logID(t, &env.ecLogKey.PublicKey)
	env.rsaLogID = logID(t, &env.rsaLogKey.PublicKey)

	env.registry, err = loglist.NewRegistry(&loglist.List{Operators: []loglist.Operator{
		{Name: "EC Op", Logs: []loglist.Log{registryLog(t, &env.ecLogKey.PublicKey, "argon")}},
		{Name: "RSA Op", Logs: []loglist.Log{registryLog(t, &env.rsaLogKey.PublicKey, "xenon")}},
	}})
	require.NoError(t, err)
	return env
}

// verifier builds a Verifier over the env's registry with a fixed clock
// and the CA as issuer reference, then applies mutate to the config.
func (env *testEnv) verifier(t *testing.T, mutate func(cfg *Config)) *Verifier {
	t.Helper()
	cfg := Config{
		Issuer: env.caCert,
		Now:    func() time.Time { return env.now },
	}
	if mutate != nil {
		mutate(&cfg)
	}
	v, err := New(env.registry, cfg)
	require.NoError(t, err)
	return v
}

// precertEntry is the log entry the test logs sign when issuing SCTs that
// will be embedded into baseCert.
func (env *testEnv) precertEntry(t *testing.T) ct.LogEntry {
	t.Helper()
	return ct.LogEntry{
		Leaf: ct.MerkleTreeLeaf{
			Version:  ct.V1,
			LeafType: ct.TimestampedEntryLeafType,
			TimestampedEntry: &ct.TimestampedEntry{
				EntryType: ct.PrecertLogEntryType,
				PrecertEntry: &ct.PreCert{
					IssuerKeyHash:  sha256.Sum256(env.baseCert.RawSubjectPublicKeyInfo),
					TBSCertificate: env.baseCert.RawTBSCertificate,
				},
			},
		},
	}
}

func x509Entry(der []byte) ct.LogEntry {
	return ct.LogEntry{
		Leaf: ct.MerkleTreeLeaf{
			Version:  ct.V1,
			LeafType: ct.TimestampedEntryLeafType,
			TimestampedEntry: &ct.TimestampedEntry{
				EntryType: ct.X509LogEntryType,
				X509Entry: &ct.ASN1Cert{Data: der},
			},
		},
	}
}

// embed re-issues baseCert with the given raw SCT records embedded and
// parses the result.
func (env *testEnv) embed(t *testing.T, records ...[]byte) *certificate.Certificate {
	t.Helper()
	var b cryptobyte.Builder
	b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
		for _, record := range records {
			b.AddUint16LengthPrefixed(func(b *cryptobyte.Builder) {
				b.AddBytes(record)
			})
		}
	})
	listBytes, err := b.Bytes()
	require.NoError(t, err)
	return env.embedExtension(t, listBytes)
}

// embedExtension is like embed but takes the SCT-list body verbatim, so
// tests can plant malformed lists.
func (env *testEnv) embedExtension(t *testing.T, listBytes []byte) *certificate.Certificate {
	t.Helper()
	asnSCT, err := asn1.Marshal(listBytes)
	require.NoError(t, err)
	template := &x509.Certificate{
		SerialNumber: env.baseCert.SerialNumber,
		SubjectKeyId: env.skid,
		ExtraExtensions: []pkix.Extension{
			{
				Id:    asn1.ObjectIdentifier(ctx509.OIDExtensionCTSCT),
				Value: asnSCT,
			},
		},
	}
	der, err := x509.CreateCertificate(rand.Reader, template, template, &env.caKey.PublicKey, env.caKey)
	require.NoError(t, err)
	cert, err := certificate.Parse(der)
	require.NoError(t, err)
	return cert
}

// signSCT mints a raw SCT record over entry, signed by signer and
// attributed to id.
func signSCT(t *testing.T, signer crypto.Signer, sigAlgo tls.SignatureAlgorithm, id [sha256.Size]byte, timestamp uint64, entry ct.LogEntry) []byte {
	t.Helper()
	template := ct.SignedCertificateTimestamp{
		SCTVersion: ct.V1,
		LogID:      ct.LogID{KeyID: ct.SHA256Hash(id)},
		Timestamp:  timestamp,
	}
	data, err := ct.SerializeSCTSignatureInput(template, entry)
	require.NoError(t, err)
	digest := sha256.Sum256(data)
	signature, err := signer.Sign(rand.Reader, digest[:], crypto.SHA256)
	require.NoError(t, err)
	template.Signature = ct.DigitallySigned{
		Algorithm: tls.SignatureAndHashAlgorithm{
			Hash:      tls.SHA256,
			Signature: sigAlgo,
		},
		Signature: signature,
	}
	raw, err := tls.Marshal(template)
	require.NoError(t, err)
	return raw
}

func createBaseCert(t *testing.T, privateKey *rsa.PrivateKey, skid []byte, serialNumber *big.Int) *x509.Certificate {
	t.Helper()
	cert := &x509.Certificate{
		SerialNumber: serialNumber,
		SubjectKeyId: skid,
	}
	certDERBytes, err := x509.CreateCertificate(rand.Reader, cert, cert, &privateKey.PublicKey, privateKey)
	require.NoError(t, err)
	parsedCert, err := x509.ParseCertificate(certDERBytes)
	require.NoError(t, err)
	return parsedCert
}

func logID(t *testing.T, pub any) [sha256.Size]byte {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	return sha256.Sum256(der)
}

func registryLog(t *testing.T, pub any, description string) loglist.Log {
	t.Helper()
	der, err := x509.MarshalPKIXPublicKey(pub)
	require.NoError(t, err)
	id := sha256.Sum256(der)
	mmd := int64(86400)
	return loglist.Log{
		Description: description,
		URL:         "https://ct.example.com/" + description + "/",
		LogID:       base64.StdEncoding.EncodeToString(id[:]),
		Key:         base64.StdEncoding.EncodeToString(der),
		MMD:         &mmd,
	}
}
