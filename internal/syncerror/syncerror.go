/*
Copyright 2025 Ledgerline Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

// Package syncerror classifies pipeline faults so diagnostics stored on queue
// entries and prep lines say which side of the exchange broke: our
// configuration, the counterpart's data, the wire, or the file itself.
package syncerror

import (
	"errors"
	"fmt"
)

type Class string

const (
	Configuration  Class = "configuration"
	Resolution     Class = "resolution"
	Transport      Class = "transport"
	MalformedInput Class = "malformed_input"
	Internal       Class = "internal"
)

// SyncError is a classified pipeline fault. The message is what lands in the
// stored diagnostic; the class is for callers deciding whether to retry.
type SyncError struct {
	ErrClass Class
	Message  string
}

func (e *SyncError) Error() string {
	return e.Message
}

func New(class Class, format string, args ...interface{}) *SyncError {
	return &SyncError{ErrClass: class, Message: fmt.Sprintf(format, args...)}
}

// ClassOf extracts the class from an error chain; unclassified errors are
// Internal.
func ClassOf(err error) Class {
	var se *SyncError
	if errors.As(err, &se) {
		return se.ErrClass
	}
	return Internal
}
