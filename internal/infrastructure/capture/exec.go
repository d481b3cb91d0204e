// Package capture grabs a still image from a local camera by running an
// external tool that writes the image to stdout.
package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// DefaultCommand captures one JPEG frame with fswebcam.
var DefaultCommand = []string{"fswebcam", "--no-banner", "-r", "640x480", "--jpeg", "90", "-"}

const defaultTimeout = 15 * time.Second

var ErrEmptyCapture = errors.New("capture produced no image")

// ExecCapturer implements ports.Capturer.
type ExecCapturer struct {
	command []string
	timeout time.Duration
}

func NewExecCapturer(command []string, timeout time.Duration) *ExecCapturer {
	if len(command) == 0 {
		command = DefaultCommand
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &ExecCapturer{command: command, timeout: timeout}
}

// ParseCommand splits a command line on whitespace. Quoting is not supported.
func ParseCommand(line string) []string {
	return strings.Fields(line)
}

func (c *ExecCapturer) Capture(ctx context.Context) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, c.command[0], c.command[1:]...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return nil, fmt.Errorf("capture %s: %w: %s", c.command[0], err, msg)
		}
		return nil, fmt.Errorf("capture %s: %w", c.command[0], err)
	}
	if stdout.Len() == 0 {
		return nil, ErrEmptyCapture
	}
	return stdout.Bytes(), nil
}
