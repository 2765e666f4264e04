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

package transport

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerline/wmsbridge/config"
)

// droppedReader serves its payload once, then fails like a lost connection.
type droppedReader struct {
	data   []byte
	err    error
	served bool
}

func (r *droppedReader) Read(p []byte) (int, error) {
	if !r.served {
		r.served = true
		return copy(p, r.data), nil
	}
	return 0, r.err
}

func TestSendWithoutHostFailsWithoutConnecting(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	result := NewSFTP().Send(context.Background(), []byte("a;b"), "ART1.csv", "/out")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "host is not configured")
}

func TestSendWithoutCredentialsFailsWithoutConnecting(t *testing.T) {
	config.MockConfig(&config.Configuration{
		Sftp: config.SftpConfig{Host: "wms.example.com", Port: 22, Username: "erp"},
	})

	result := NewSFTP().Send(context.Background(), []byte("a;b"), "ART1.csv", "/out")
	assert.False(t, result.Success)
	assert.Contains(t, result.Message, "credentials are not configured")
}

func TestListWithoutConfigReturnsError(t *testing.T) {
	config.MockConfig(&config.Configuration{})

	_, err := NewSFTP().List(context.Background(), "/out")
	assert.Error(t, err)
}

func TestFetchAllReadsToEOF(t *testing.T) {
	got, err := fetchAll(strings.NewReader("RET;SO-1001;1\n"), "/wms/out/RETPRP1.csv")
	assert.NoError(t, err)
	assert.Equal(t, []byte("RET;SO-1001;1\n"), got)
}

func TestFetchAllSurfacesMidTransferFault(t *testing.T) {
	r := &droppedReader{data: []byte("RET;SO-1001;1\n"), err: errors.New("connection lost")}

	_, err := fetchAll(r, "/wms/out/RETPRP1.csv")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "connection lost")
}

func TestMissingConfigOrder(t *testing.T) {
	assert.Equal(t, "sftp host is not configured", missingConfig(&config.SftpConfig{}))
	assert.Equal(t, "sftp username is not configured", missingConfig(&config.SftpConfig{Host: "h"}))
	assert.Equal(t, "sftp credentials are not configured", missingConfig(&config.SftpConfig{Host: "h", Username: "u"}))
	assert.Empty(t, missingConfig(&config.SftpConfig{Host: "h", Username: "u", Password: "p"}))
}
