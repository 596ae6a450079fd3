package motifq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// ShellTargetConfig names a shell command that receives catalog changes as
// JSON on stdin.
type ShellTargetConfig struct {
	Command string
}

// IsEmpty reports whether the config names no command.
func (c *ShellTargetConfig) IsEmpty() bool {
	return c == nil || strings.TrimSpace(c.Command) == ""
}

type shellTarget struct {
	command string
}

func newShellTarget(cfg *ShellTargetConfig) MotifSyncTarget {
	if cfg.IsEmpty() {
		return nil
	}
	return &shellTarget{command: strings.TrimSpace(cfg.Command)}
}

func (s *shellTarget) ApplyMotifChanges(ctx context.Context, changes MotifChangeSet) error {
	if changes.IsEmpty() {
		return nil
	}

	payload, err := json.Marshal(changes)
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, "sh", "-c", s.command)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return err
	}

	if _, err := io.Copy(stdin, bytes.NewReader(payload)); err != nil {
		stdin.Close()
		return err
	}
	if err := stdin.Close(); err != nil {
		return err
	}

	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("shell target failed: %w: %s", err, string(output))
	}

	return nil
}
