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

package loglist

import (
	"crypto"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"fmt"
	"time"
)

// CTLog is the identity of one known log. Instances are constructed during
// registry build and never mutated afterwards.
type CTLog struct {
	Description   string
	URL           string
	OperatedBy    string
	PublicKeyDER  []byte
	PublicKey     crypto.PublicKey
	LogID         [sha256.Size]byte
	MaxMergeDelay time.Duration
}

// Registry maps 32-byte log IDs to known logs. It is immutable once built
// and may be shared freely across goroutines.
type Registry struct {
	logs map[[sha256.Size]byte]*CTLog
}

// NewRegistryFromJSON decodes a log-list document and builds a registry
// from it.
func NewRegistryFromJSON(data []byte) (*Registry, error) {
	list, err := Unmarshal(data)
	if err != nil {
		return nil, err
	}
	return NewRegistry(list)
}

// NewRegistry builds a registry from a decoded log list. Any missing or
// undecodable field, a log ID that is not the SHA-256 hash of the log's
// key, or a log ID that appears twice aborts the build with a DataError;
// no partial registry is ever returned.
func NewRegistry(list *List) (*Registry, error) {
	logs := make(map[[sha256.Size]byte]*CTLog)
	for _, operator := range list.Operators {
		if operator.Name == "" {
			return nil, &DataError{Field: "name", Err: fmt.Errorf("operator missing name")}
		}
		for _, l := range operator.Logs {
			ctlog, err := newCTLog(operator.Name, l)
			if err != nil {
				return nil, err
			}
			if dup, ok := logs[ctlog.LogID]; ok {
				return nil, &DataError{
					Field: "log_id",
					Log:   l.Description,
					Err:   fmt.Errorf("log ID already registered for %q", dup.Description),
				}
			}
			logs[ctlog.LogID] = ctlog
		}
	}
	return &Registry{logs: logs}, nil
}

// Lookup returns the log with the given ID, if known.
func (r *Registry) Lookup(id [sha256.Size]byte) (*CTLog, bool) {
	l, ok := r.logs[id]
	return l, ok
}

// Len returns the number of registered logs.
func (r *Registry) Len() int {
	return len(r.logs)
}

func newCTLog(operator string, l Log) (*CTLog, error) {
	fail := func(field string, err error) (*CTLog, error) {
		return nil, &DataError{Field: field, Log: l.Description, Err: err}
	}

	if l.Description == "" {
		return fail("description", fmt.Errorf("log missing description"))
	}
	if l.URL == "" {
		return fail("url", fmt.Errorf("log missing url"))
	}
	if l.LogID == "" {
		return fail("log_id", fmt.Errorf("log missing log_id"))
	}
	if l.Key == "" {
		return fail("key", fmt.Errorf("log missing key"))
	}
	if l.MMD == nil {
		return fail("mmd", fmt.Errorf("log missing mmd"))
	}
	if *l.MMD < 0 {
		return fail("mmd", fmt.Errorf("negative mmd %d", *l.MMD))
	}

	rawID, err := base64.StdEncoding.DecodeString(l.LogID)
	if err != nil {
		return fail("log_id", fmt.Errorf("decoding log_id: %w", err))
	}
	if len(rawID) != sha256.Size {
		return fail("log_id", fmt.Errorf("log_id is %d bytes, want %d", len(rawID), sha256.Size))
	}

	keyDER, err := base64.StdEncoding.DecodeString(l.Key)
	if err != nil {
		return fail("key", fmt.Errorf("decoding key: %w", err))
	}
	pub, err := x509.ParsePKIXPublicKey(keyDER)
	if err != nil {
		return fail("key", fmt.Errorf("parsing key: %w", err))
	}

	ctlog := &CTLog{
		Description:   l.Description,
		URL:           l.URL,
		OperatedBy:    operator,
		PublicKeyDER:  keyDER,
		PublicKey:     pub,
		LogID:         [sha256.Size]byte(rawID),
		MaxMergeDelay: time.Duration(*l.MMD) * time.Second,
	}

	// RFC 6962 defines the log ID as the hash of the log's key. A mismatch
	// means the dataset is internally inconsistent and cannot be trusted.
	if sha256.Sum256(keyDER) != ctlog.LogID {
		return fail("log_id", fmt.Errorf("log_id is not the SHA-256 hash of key"))
	}

	return ctlog, nil
}
