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

// Package files is the local storage area for downloaded warehouse return
// files. Inbound files are kept on disk for audit and reruns; the database
// row only carries the stored path.
package files

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
)

// SaveInbound writes a downloaded return file into the storage directory and
// returns the stored path. The remote side may resend a file with the same
// name; collisions get a timestamp suffix instead of overwriting.
func SaveInbound(dir, fileName string, content []byte) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrap(err, "creating inbound storage dir")
	}

	path := filepath.Join(dir, fileName)
	if _, err := os.Stat(path); err == nil {
		ext := filepath.Ext(fileName)
		base := fileName[:len(fileName)-len(ext)]
		path = filepath.Join(dir, fmt.Sprintf("%s_%s%s", base, time.Now().Format("20060102150405"), ext))
	}

	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrap(err, "writing inbound file")
	}
	return path, nil
}

// ReadStored loads a previously stored inbound file.
func ReadStored(path string) ([]byte, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading stored inbound file")
	}
	return content, nil
}
