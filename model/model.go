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

package model

import (
	"fmt"

	"github.com/google/uuid"
)

// MaxDiagnosticLength bounds the error message stored on queue entries,
// inbound files and prep lines. Transport and database errors can carry
// arbitrarily long payloads; everything past this length is cut.
const MaxDiagnosticLength = 1000

// GenerateUUIDWithSuffix generates a new UUID prefixed with the given module
// name, e.g. "queue_2f3a...".
func GenerateUUIDWithSuffix(module string) string {
	id := uuid.New()
	return fmt.Sprintf("%s_%s", module, id.String())
}

// TruncateDiagnostic cuts a diagnostic message down to MaxDiagnosticLength.
func TruncateDiagnostic(message string) string {
	if len(message) <= MaxDiagnosticLength {
		return message
	}
	return message[:MaxDiagnosticLength]
}
