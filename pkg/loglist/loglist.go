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

// Package loglist builds an immutable registry of known Certificate
// Transparency logs from the operators/logs JSON document published by
// log-list distributors (e.g. the Google "all logs" list).
package loglist

import (
	"encoding/json"
	"fmt"
)

// List mirrors the top level of the log-list JSON document. Fields this
// package does not consume (log state, temporal shards, DNS names) are
// ignored during decoding rather than rejected.
type List struct {
	Operators []Operator `json:"operators"`
}

// Operator is one log operator and the logs it runs.
type Operator struct {
	Name string `json:"name"`
	Logs []Log  `json:"logs"`
}

// Log is one log entry as it appears on the wire. LogID and Key are
// standard base64; MMD is the log's maximum merge delay in seconds. MMD is
// a pointer so that an absent field can be told apart from an explicit 0.
type Log struct {
	Description string `json:"description"`
	LogID       string `json:"log_id"`
	Key         string `json:"key"`
	URL         string `json:"url"`
	MMD         *int64 `json:"mmd"`
}

// Unmarshal decodes the raw log-list document.
func Unmarshal(data []byte) (*List, error) {
	list := new(List)
	if err := json.Unmarshal(data, list); err != nil {
		return nil, &DataError{Field: "operators", Err: fmt.Errorf("decoding log list: %w", err)}
	}
	return list, nil
}
