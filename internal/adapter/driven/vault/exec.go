package vault

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/boscoh/breachwatch/internal/domain/model"
	"github.com/boscoh/breachwatch/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.CredentialSource = (*ExecSource)(nil)

// sessionEnvVar must hold an unlocked vault session for the CLI to return
// item data.
const sessionEnvVar = "BW_SESSION"

// ExecSource fetches credentials by running the external vault CLI
// (`bw list items`). Subprocesses are bounded by the caller's context.
type ExecSource struct {
	command string
}

// NewExecSource creates an ExecSource invoking the given CLI binary
// ("bw" when empty).
func NewExecSource(command string) *ExecSource {
	if command == "" {
		command = "bw"
	}
	return &ExecSource{command: command}
}

// Fetch runs `<cli> list items` and parses its JSON output.
func (s *ExecSource) Fetch(ctx context.Context) ([]model.Credential, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, s.command, "list", "items")
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s list items: %s: %w", s.command, msg, err)
		}
		return nil, fmt.Errorf("%s list items: %w", s.command, err)
	}

	return ParseItems(stdout.Bytes())
}

// Verify checks that the CLI is installed, a session is present, and the
// vault is unlocked. The returned error message is suitable for direct
// display to the user.
func (s *ExecSource) Verify(ctx context.Context) error {
	if _, err := exec.LookPath(s.command); err != nil {
		return fmt.Errorf("vault CLI %q not found in PATH", s.command)
	}

	if os.Getenv(sessionEnvVar) == "" {
		return fmt.Errorf("%s is not set; unlock the vault and export the session first", sessionEnvVar)
	}

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, s.command, "status")
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s status: %w", s.command, err)
	}

	var status struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &status); err != nil {
		return fmt.Errorf("parse %s status output: %w", s.command, driven.ErrMalformed)
	}

	if status.Status != "unlocked" {
		return fmt.Errorf("vault is %s; run %s unlock first", status.Status, s.command)
	}

	return nil
}
