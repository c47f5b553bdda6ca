package bootstrap

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstallerName(t *testing.T) {
	tests := []struct {
		goos, goarch string
		want         string
		wantErr      bool
	}{
		{"linux", "amd64", "Miniconda3-latest-Linux-x86_64.sh", false},
		{"linux", "arm64", "Miniconda3-latest-Linux-aarch64.sh", false},
		{"darwin", "amd64", "Miniconda3-latest-MacOSX-x86_64.sh", false},
		{"darwin", "arm64", "Miniconda3-latest-MacOSX-arm64.sh", false},
		{"windows", "amd64", "Miniconda3-latest-Windows-x86_64.exe", false},
		{"windows", "arm64", "", true},
		{"plan9", "amd64", "", true},
	}

	for _, tt := range tests {
		name, err := InstallerName(tt.goos, tt.goarch)
		if tt.wantErr {
			assert.Error(t, err, "%s/%s", tt.goos, tt.goarch)
			continue
		}

		require.NoError(t, err)
		assert.Equal(t, tt.want, name)
	}
}

func TestInstallerURL(t *testing.T) {
	url, err := InstallerURL("linux", "amd64")
	require.NoError(t, err)
	assert.Equal(t, "https://repo.anaconda.com/miniconda/Miniconda3-latest-Linux-x86_64.sh", url)
}

func TestInstruction(t *testing.T) {
	assert.Equal(t, "bash /tmp/mc.sh -b", Instruction("/tmp/mc.sh"))
	assert.Contains(t, Instruction(`C:\mc.exe`), "start /wait")
}

func TestDownload(t *testing.T) {
	payload := []byte("#!/bin/sh\necho fake miniconda installer\n")

	modTime := time.Now()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.ServeContent(w, r, "Miniconda3-latest-Linux-x86_64.sh", modTime, bytes.NewReader(payload))
	}))
	defer srv.Close()

	dir := t.TempDir()

	res, err := Download(context.Background(), Options{
		Dir: dir,
		URL: srv.URL + "/Miniconda3-latest-Linux-x86_64.sh",
	})
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Miniconda3-latest-Linux-x86_64.sh"), res.Path)

	data, err := os.ReadFile(res.Path)
	require.NoError(t, err)
	assert.Equal(t, payload, data)

	sum := sha256.Sum256(payload)
	assert.Equal(t, hex.EncodeToString(sum[:]), res.SHA256)

	// A second call reuses the complete file instead of refetching.
	res2, err := Download(context.Background(), Options{
		Dir: dir,
		URL: srv.URL + "/Miniconda3-latest-Linux-x86_64.sh",
	})
	require.NoError(t, err)
	assert.Equal(t, res.SHA256, res2.SHA256)
}

func TestDownloadBadURL(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Download(context.Background(), Options{
		Dir: t.TempDir(),
		URL: srv.URL + "/missing.sh",
	})
	assert.Error(t, err)
}
