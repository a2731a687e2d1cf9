package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// Soffice converts documents by invoking a headless LibreOffice binary.
// Every run gets its own user-installation profile inside outDir so
// invocations never fight over the default profile lock.
type Soffice struct {
	binPath string
	timeout time.Duration
}

func NewSoffice(binPath string, timeout time.Duration) *Soffice {
	if binPath == "" {
		binPath = "soffice"
	}
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Soffice{binPath: binPath, timeout: timeout}
}

// Healthy reports whether the configured binary can be resolved.
func (s *Soffice) Healthy() error {
	if _, err := exec.LookPath(s.binPath); err != nil {
		return fmt.Errorf("soffice binary not found: %w", err)
	}
	return nil
}

func (s *Soffice) Convert(ctx context.Context, inputPath, outDir string, format Format) (string, error) {
	runCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	profileDir := filepath.Join(outDir, ".soffice-profile")
	args := []string{
		"--headless",
		"--norestore",
		"--nolockcheck",
		"-env:UserInstallation=file://" + profileDir,
		"--convert-to", string(format),
		"--outdir", outDir,
		inputPath,
	}

	cmd := exec.CommandContext(runCtx, s.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	// Child processes can inherit the stderr pipe; do not let a killed run
	// block Wait past this grace.
	cmd.WaitDelay = 2 * time.Second

	if err := cmd.Run(); err != nil {
		if runCtx.Err() == context.DeadlineExceeded {
			return "", ErrTimeout
		}
		detail := strings.TrimSpace(stderr.String())
		if detail != "" {
			return "", fmt.Errorf("run soffice failed: %w: %s", err, detail)
		}
		return "", fmt.Errorf("run soffice failed: %w", err)
	}

	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath))
	outPath := filepath.Join(outDir, base+"."+string(format))
	if _, err := os.Stat(outPath); err != nil {
		return "", ErrNoOutput
	}
	return outPath, nil
}
