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

// Package transport delivers export files to the warehouse SFTP endpoint and
// lists/downloads its return files. Connection settings come from the
// configuration on every call; no connection is pooled across calls. Faults
// never escape Send as errors: the caller translates the Result into queue
// entry statuses.
package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"time"

	"github.com/pkg/sftp"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/ssh"

	"github.com/ledgerline/wmsbridge/config"
)

// Result is the outcome of a delivery attempt.
type Result struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// FileInfo describes one remote directory entry.
type FileInfo struct {
	Name  string `json:"name"`
	IsDir bool   `json:"is_dir"`
	Size  int64  `json:"size"`
}

// Transport is the narrow contract the pipeline has with the file exchange.
type Transport interface {
	Send(ctx context.Context, content []byte, fileName, dir string) Result
	List(ctx context.Context, dir string) ([]FileInfo, error)
	Fetch(ctx context.Context, remotePath string) ([]byte, error)
}

// SFTP is the production Transport over pkg/sftp.
type SFTP struct{}

func NewSFTP() *SFTP {
	return &SFTP{}
}

// Send uploads one file into the given remote directory. Missing required
// configuration returns a failed Result without any connection attempt.
func (s *SFTP) Send(ctx context.Context, content []byte, fileName, dir string) Result {
	cnf, err := config.Fetch()
	if err != nil {
		return Result{Success: false, Message: err.Error()}
	}

	if msg := missingConfig(&cnf.Sftp); msg != "" {
		return Result{Success: false, Message: msg}
	}

	sshClient, sftpClient, err := connect(&cnf.Sftp)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("sftp connection failed: %v", err)}
	}
	defer sshClient.Close()
	defer sftpClient.Close()

	remotePath := path.Join(dir, fileName)
	f, err := sftpClient.Create(remotePath)
	if err != nil {
		return Result{Success: false, Message: fmt.Sprintf("creating %s failed: %v", remotePath, err)}
	}

	if _, err := f.Write(content); err != nil {
		_ = f.Close()
		return Result{Success: false, Message: fmt.Sprintf("writing %s failed: %v", remotePath, err)}
	}
	if err := f.Close(); err != nil {
		return Result{Success: false, Message: fmt.Sprintf("closing %s failed: %v", remotePath, err)}
	}

	logrus.Infof("uploaded %s (%d bytes)", remotePath, len(content))
	return Result{Success: true, Message: fmt.Sprintf("uploaded %s", remotePath)}
}

// List returns the entries of a remote directory.
func (s *SFTP) List(ctx context.Context, dir string) ([]FileInfo, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	if msg := missingConfig(&cnf.Sftp); msg != "" {
		return nil, fmt.Errorf("%s", msg)
	}

	sshClient, sftpClient, err := connect(&cnf.Sftp)
	if err != nil {
		return nil, err
	}
	defer sshClient.Close()
	defer sftpClient.Close()

	entries, err := sftpClient.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}

	infos := make([]FileInfo, 0, len(entries))
	for _, entry := range entries {
		infos = append(infos, FileInfo{Name: entry.Name(), IsDir: entry.IsDir(), Size: entry.Size()})
	}
	return infos, nil
}

// Fetch downloads one remote file.
func (s *SFTP) Fetch(ctx context.Context, remotePath string) ([]byte, error) {
	cnf, err := config.Fetch()
	if err != nil {
		return nil, err
	}
	if msg := missingConfig(&cnf.Sftp); msg != "" {
		return nil, fmt.Errorf("%s", msg)
	}

	sshClient, sftpClient, err := connect(&cnf.Sftp)
	if err != nil {
		return nil, err
	}
	defer sshClient.Close()
	defer sftpClient.Close()

	f, err := sftpClient.Open(remotePath)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", remotePath, err)
	}
	defer f.Close()

	return fetchAll(f, remotePath)
}

// fetchAll drains a remote file in full. A connection fault mid-transfer must
// surface as an error, never as a silently truncated file.
func fetchAll(r io.Reader, remotePath string) ([]byte, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", remotePath, err)
	}
	return buf, nil
}

// missingConfig reports the first missing required setting, or "".
func missingConfig(cnf *config.SftpConfig) string {
	if cnf.Host == "" {
		return "sftp host is not configured"
	}
	if cnf.Username == "" {
		return "sftp username is not configured"
	}
	if cnf.Password == "" && cnf.PrivateKeyPath == "" {
		return "sftp credentials are not configured"
	}
	return ""
}

func connect(cnf *config.SftpConfig) (*ssh.Client, *sftp.Client, error) {
	var auth []ssh.AuthMethod
	if cnf.PrivateKeyPath != "" {
		key, err := os.ReadFile(cnf.PrivateKeyPath)
		if err != nil {
			return nil, nil, fmt.Errorf("reading private key: %w", err)
		}
		signer, err := ssh.ParsePrivateKey(key)
		if err != nil {
			return nil, nil, fmt.Errorf("parsing private key: %w", err)
		}
		auth = append(auth, ssh.PublicKeys(signer))
	}
	if cnf.Password != "" {
		auth = append(auth, ssh.Password(cnf.Password))
	}

	hostKeyCallback := ssh.InsecureIgnoreHostKey() // #nosec G106 -- only when no host key is pinned
	if cnf.HostKey != "" {
		pub, _, _, _, err := ssh.ParseAuthorizedKey([]byte(cnf.HostKey))
		if err != nil {
			return nil, nil, fmt.Errorf("parsing host key: %w", err)
		}
		hostKeyCallback = ssh.FixedHostKey(pub)
	} else {
		logrus.Warn("sftp host key not configured, skipping host verification")
	}

	sshConfig := &ssh.ClientConfig{
		User:            cnf.Username,
		Auth:            auth,
		HostKeyCallback: hostKeyCallback,
		Timeout:         30 * time.Second,
	}

	addr := fmt.Sprintf("%s:%d", cnf.Host, cnf.Port)
	sshClient, err := ssh.Dial("tcp", addr, sshConfig)
	if err != nil {
		return nil, nil, fmt.Errorf("dialing %s: %w", addr, err)
	}

	sftpClient, err := sftp.NewClient(sshClient)
	if err != nil {
		_ = sshClient.Close()
		return nil, nil, fmt.Errorf("starting sftp subsystem: %w", err)
	}

	return sshClient, sftpClient, nil
}
