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
	"fmt"

	"golang.org/x/crypto/cryptobyte"
)

// ListFormatError reports a structural defect in a serialized SCT list.
// Offset is the byte position within the list body where decoding failed.
type ListFormatError struct {
	Offset int
	Msg    string
}

func (e *ListFormatError) Error() string {
	return fmt.Sprintf("malformed SCT list at byte %d: %s", e.Offset, e.Msg)
}

// List is a cursor over the SCT records of a serialized SCT list
// (RFC 6962 s3.3): a 2-byte total length followed by records, each with
// its own 2-byte length prefix. The cursor is not restartable; records
// are subslices of the input buffer, valid for its lifetime.
type List struct {
	body   cryptobyte.String
	offset int
}

// ParseList opens a cursor over an SCT list body. The declared total
// length must cover exactly the bytes that follow it; a list declaring
// zero records is valid.
func ParseList(data []byte) (*List, error) {
	s := cryptobyte.String(data)
	var body cryptobyte.String
	if !s.ReadUint16LengthPrefixed(&body) {
		return nil, &ListFormatError{Offset: 0, Msg: "truncated list length"}
	}
	if !s.Empty() {
		return nil, &ListFormatError{Offset: 2 + len(body), Msg: "trailing bytes after list"}
	}
	return &List{body: body, offset: 2}, nil
}

// Next returns the next raw SCT record, or nil once the list is
// exhausted. A record whose declared length runs past the end of the list
// is a ListFormatError.
func (l *List) Next() ([]byte, error) {
	if l.body.Empty() {
		return nil, nil
	}
	start := l.offset
	var record cryptobyte.String
	if !l.body.ReadUint16LengthPrefixed(&record) {
		return nil, &ListFormatError{Offset: start, Msg: "record length exceeds remaining bytes"}
	}
	if len(record) == 0 {
		// SerializedSCT is opaque <1..2^16-1>; the empty record is not
		// representable.
		return nil, &ListFormatError{Offset: start, Msg: "zero-length record"}
	}
	l.offset = start + 2 + len(record)
	return record, nil
}

// All drains the cursor, returning every record or, on any structural
// defect, an error and no records at all.
func (l *List) All() ([][]byte, error) {
	var records [][]byte
	for {
		record, err := l.Next()
		if err != nil {
			return nil, err
		}
		if record == nil {
			return records, nil
		}
		records = append(records, record)
	}
}
