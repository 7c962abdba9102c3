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
	"bytes"
	"time"

	"github.com/malwhile/testct/pkg/loglist"
)

// Outcome classifies the verification result of one SCT.
type Outcome int

const (
	OutcomeValid Outcome = iota
	OutcomeMalformed
	OutcomeUnknownLog
	OutcomeSignatureInvalid
	OutcomeFutureTimestamp
)

func (o Outcome) String() string {
	switch o {
	case OutcomeValid:
		return "valid"
	case OutcomeMalformed:
		return "malformed"
	case OutcomeUnknownLog:
		return "unknown log"
	case OutcomeSignatureInvalid:
		return "signature invalid"
	case OutcomeFutureTimestamp:
		return "future timestamp"
	default:
		return "unknown outcome"
	}
}

// Result is the verification outcome of one SCT. Index is the SCT's
// position within the extension. LogID and Timestamp are populated
// whenever the record decoded far enough to yield them; Log is set when
// the registry knows the log. Err carries the diagnostic detail for
// non-valid outcomes.
type Result struct {
	Index     int
	LogID     []byte
	Log       *loglist.CTLog
	Timestamp time.Time
	Outcome   Outcome
	Err       error
}

// Report collects one Result per SCT, in extension order. It applies no
// policy: callers decide what mix of outcomes is acceptable.
// ExtensionPresent distinguishes a certificate with no SCT extension at
// all (false, zero results) from one whose extension held zero entries.
type Report struct {
	ExtensionPresent bool
	Results          []Result
}

// ByLogID returns the results attributed to the given log ID, preserving
// order.
func (r *Report) ByLogID(id []byte) []Result {
	var results []Result
	for _, res := range r.Results {
		if bytes.Equal(res.LogID, id) {
			results = append(results, res)
		}
	}
	return results
}

// Valid returns the number of SCTs that verified successfully.
func (r *Report) Valid() int {
	n := 0
	for _, res := range r.Results {
		if res.Outcome == OutcomeValid {
			n++
		}
	}
	return n
}
