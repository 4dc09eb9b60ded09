package playback

import (
	"bytes"
	"context"
	"log/slog"
	"os/exec"
)

// CommandPlayer pipes each playable unit to an external decoder/player such
// as ffplay. The process is scoped to one unit; it is always reaped before
// Play returns.
type CommandPlayer struct {
	name string
	args []string
	log  *slog.Logger
}

func NewCommandPlayer(log *slog.Logger, name string, args ...string) *CommandPlayer {
	if log == nil {
		log = slog.Default()
	}
	return &CommandPlayer{
		name: name,
		args: args,
		log:  log.With("component", "player", "command", name),
	}
}

func (p *CommandPlayer) Play(ctx context.Context, unit []byte) error {
	cmd := exec.CommandContext(ctx, p.name, p.args...)
	cmd.Stdin = bytes.NewReader(unit)

	if err := cmd.Run(); err != nil {
		return err
	}
	return nil
}

// DiscardPlayer consumes units without producing audio, for headless runs
// and tests.
type DiscardPlayer struct {
	log *slog.Logger
}

func NewDiscardPlayer(log *slog.Logger) *DiscardPlayer {
	if log == nil {
		log = slog.Default()
	}
	return &DiscardPlayer{log: log.With("component", "player")}
}

func (p *DiscardPlayer) Play(_ context.Context, unit []byte) error {
	p.log.Debug("discarding playable unit", "bytes", len(unit))
	return nil
}
