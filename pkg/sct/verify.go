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
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"
)

// VerifySignature checks the SCT's signature over signedData (as produced
// by SignedData) against the log's public key, honoring the hash and
// signature algorithm identifiers carried in the SCT.
func (sct *SignedCertificateTimestamp) VerifySignature(pub crypto.PublicKey, signedData []byte) error {
	switch sct.Signature.Algorithm.Signature {
	case ECDSA:
		key, ok := pub.(*ecdsa.PublicKey)
		if !ok {
			return fmt.Errorf("SCT declares ECDSA but log key is %T", pub)
		}
		hashFunc, err := sct.hashFunc()
		if err != nil {
			return err
		}
		digest := digest(hashFunc, signedData)
		if !ecdsa.VerifyASN1(key, digest, sct.Signature.Signature) {
			return fmt.Errorf("invalid ECDSA signature")
		}
	case RSA:
		key, ok := pub.(*rsa.PublicKey)
		if !ok {
			return fmt.Errorf("SCT declares RSA but log key is %T", pub)
		}
		hashFunc, err := sct.hashFunc()
		if err != nil {
			return err
		}
		digest := digest(hashFunc, signedData)
		if err := rsa.VerifyPKCS1v15(key, hashFunc, digest, sct.Signature.Signature); err != nil {
			return fmt.Errorf("invalid RSA signature: %w", err)
		}
	case Ed25519:
		key, ok := pub.(ed25519.PublicKey)
		if !ok {
			return fmt.Errorf("SCT declares Ed25519 but log key is %T", pub)
		}
		// Ed25519 signs the message itself, not a digest.
		if !ed25519.Verify(key, signedData, sct.Signature.Signature) {
			return fmt.Errorf("invalid Ed25519 signature")
		}
	default:
		return fmt.Errorf("unsupported signature algorithm %d", sct.Signature.Algorithm.Signature)
	}
	return nil
}

func (sct *SignedCertificateTimestamp) hashFunc() (crypto.Hash, error) {
	switch sct.Signature.Algorithm.Hash {
	case SHA256:
		return crypto.SHA256, nil
	case SHA384:
		return crypto.SHA384, nil
	case SHA512:
		return crypto.SHA512, nil
	default:
		return 0, fmt.Errorf("unsupported hash algorithm %d", sct.Signature.Algorithm.Hash)
	}
}

func digest(h crypto.Hash, data []byte) []byte {
	hasher := h.New()
	hasher.Write(data)
	return hasher.Sum(nil)
}
