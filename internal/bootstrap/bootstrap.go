// Package bootstrap downloads the Miniconda installer for systems that
// do not have conda yet. It never executes the installer; running it is
// left to the user.
package bootstrap

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"time"

	"github.com/cavaliercoder/grab"

	"github.com/litkg/kgctl/internal/encoding"
)

// BaseURL is where Anaconda publishes the Miniconda installers.
const BaseURL = "https://repo.anaconda.com/miniconda/"

// InstallerName returns the Miniconda installer file name for a
// GOOS/GOARCH pair.
func InstallerName(goos, goarch string) (string, error) {
	switch goos {
	case "linux":
		switch goarch {
		case "amd64":
			return "Miniconda3-latest-Linux-x86_64.sh", nil
		case "arm64":
			return "Miniconda3-latest-Linux-aarch64.sh", nil
		}
	case "darwin":
		switch goarch {
		case "amd64":
			return "Miniconda3-latest-MacOSX-x86_64.sh", nil
		case "arm64":
			return "Miniconda3-latest-MacOSX-arm64.sh", nil
		}
	case "windows":
		if goarch == "amd64" {
			return "Miniconda3-latest-Windows-x86_64.exe", nil
		}
	}

	return "", fmt.Errorf("no Miniconda installer is published for %s/%s", goos, goarch)
}

// InstallerURL returns the download URL for a GOOS/GOARCH pair.
func InstallerURL(goos, goarch string) (string, error) {
	name, err := InstallerName(goos, goarch)
	if err != nil {
		return "", err
	}

	return BaseURL + name, nil
}

// Instruction returns the command the user runs to install from the
// downloaded file.
func Instruction(installerPath string) string {
	if filepath.Ext(installerPath) == ".exe" {
		return fmt.Sprintf("start /wait %s", installerPath)
	}

	return fmt.Sprintf("bash %s -b", installerPath)
}

// Options configures a download.
type Options struct {
	// Dir receives the installer file.
	Dir string

	// Force re-downloads even when the file is already complete.
	Force bool

	// URL overrides the platform URL, for mirrors and tests.
	URL string

	// Progress receives human-readable progress lines. Nil disables
	// progress output.
	Progress io.Writer

	Logger *slog.Logger
}

// Result reports a finished download.
type Result struct {
	Path   string
	URL    string
	Size   int64
	SHA256 string
}

// Download fetches the Miniconda installer for the current platform
// into opts.Dir. Interrupted downloads resume where they left off.
func Download(ctx context.Context, opts Options) (*Result, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	url := opts.URL
	if url == "" {
		var err error

		url, err = InstallerURL(runtime.GOOS, runtime.GOARCH)
		if err != nil {
			return nil, err
		}
	}

	if opts.Dir == "" {
		opts.Dir = "."
	}

	if err := encoding.EnsureDir(opts.Dir); err != nil {
		return nil, err
	}

	dest := filepath.Join(opts.Dir, path.Base(url))

	if opts.Force {
		if err := os.Remove(dest); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to remove %s: %w", dest, err)
		}
	}

	req, err := grab.NewRequest(dest, url)
	if err != nil {
		return nil, fmt.Errorf("invalid download request for %s: %w", url, err)
	}

	req = req.WithContext(ctx)

	logger.Info("downloading installer", "url", url, "dest", dest)

	client := grab.NewClient()
	resp := client.Do(req)

	if err := waitForDownload(resp, opts.Progress); err != nil {
		return nil, fmt.Errorf("download of %s failed: %w", url, err)
	}

	sum, err := fileSHA256(dest)
	if err != nil {
		return nil, err
	}

	logger.Info("installer downloaded", "path", dest, "sha256", sum)

	return &Result{
		Path:   dest,
		URL:    url,
		Size:   resp.Size,
		SHA256: sum,
	}, nil
}

// waitForDownload blocks until the transfer finishes, emitting a
// progress line every second.
func waitForDownload(resp *grab.Response, progress io.Writer) error {
	t := time.NewTicker(time.Second)
	defer t.Stop()

	for {
		select {
		case <-t.C:
			if progress != nil {
				_, _ = fmt.Fprintf(progress, "%.1f%% complete (%.0f KB/s)\n",
					resp.Progress()*100, resp.BytesPerSecond()/1024)
			}
		case <-resp.Done:
			return resp.Err()
		}
	}
}

func fileSHA256(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}

	defer func() {
		_ = f.Close()
	}()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", fmt.Errorf("failed to hash %s: %w", path, err)
	}

	return hex.EncodeToString(h.Sum(nil)), nil
}
