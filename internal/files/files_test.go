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

package files

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSaveInboundAndReadStored(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveInbound(dir, "RETPRP1.csv", []byte("header\nrow"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "RETPRP1.csv"), path)

	content, err := ReadStored(path)
	require.NoError(t, err)
	assert.Equal(t, "header\nrow", string(content))
}

func TestSaveInboundDoesNotOverwrite(t *testing.T) {
	dir := t.TempDir()

	first, err := SaveInbound(dir, "RETPRP1.csv", []byte("first"))
	require.NoError(t, err)

	second, err := SaveInbound(dir, "RETPRP1.csv", []byte("second"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)

	content, err := ReadStored(first)
	require.NoError(t, err)
	assert.Equal(t, "first", string(content))
}
