package device

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"places/internal/permission"
)

// ConsolePermissions answers permission queries from the run's session and
// asks the user on the console when a capability is still undetermined.
type ConsolePermissions struct {
	console *Console
	session *permission.Session
	log     *slog.Logger
}

func NewConsolePermissions(console *Console, session *permission.Session, log *slog.Logger) *ConsolePermissions {
	if log == nil {
		log = slog.Default()
	}
	return &ConsolePermissions{console: console, session: session, log: log}
}

// Preset seeds the session from a configured value ("granted", "denied" or
// empty for undetermined).
func (p *ConsolePermissions) Preset(c permission.Capability, value string) {
	if value == "" {
		return
	}
	st := permission.ParseStatus(value)
	p.session.Set(c, st)
	p.log.Debug("permission_preset", "capability", string(c), "status", st.String())
}

func (p *ConsolePermissions) Status(_ context.Context, c permission.Capability) (permission.Status, error) {
	return p.session.Get(c), nil
}

// Request asks once. Anything but y/yes denies; the answer sticks for the
// rest of the run.
func (p *ConsolePermissions) Request(ctx context.Context, c permission.Capability) (bool, error) {
	answer, err := p.console.Prompt(ctx, fmt.Sprintf("Allow access to the %s? [y/N] ", c))
	if err != nil && !errors.Is(err, io.EOF) {
		return false, err
	}
	granted := false
	switch strings.ToLower(answer) {
	case "y", "yes":
		granted = true
	}
	st := permission.Denied
	if granted {
		st = permission.Granted
	}
	p.session.Set(c, st)
	p.log.Info("permission_answered", "capability", string(c), "status", st.String())
	return granted, nil
}
