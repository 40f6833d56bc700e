// Package permission implements the check-request-explain flow that guards
// every device capability. The same Gate serves the camera and the location
// adapters; Guard wraps an action so it only runs once access is granted.
package permission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// Capability is a permission-gated device feature.
type Capability string

const (
	Camera   Capability = "camera"
	Location Capability = "location"
)

// Status is the grant state the OS reports for a capability.
type Status int

const (
	Undetermined Status = iota
	Granted
	Denied
)

func (s Status) String() string {
	switch s {
	case Granted:
		return "granted"
	case Denied:
		return "denied"
	}
	return "undetermined"
}

// ParseStatus maps "granted"/"denied" to their Status and anything else to
// Undetermined.
func ParseStatus(s string) Status {
	switch s {
	case "granted":
		return Granted
	case "denied":
		return Denied
	}
	return Undetermined
}

// ErrDenied is returned by Guard when the gate refused access.
var ErrDenied = errors.New("permission denied")

// Provider is the OS permission API.
type Provider interface {
	// Status returns the current grant state without prompting.
	Status(ctx context.Context, c Capability) (Status, error)
	// Request shows the OS dialog and blocks until the user answers.
	Request(ctx context.Context, c Capability) (bool, error)
}

// Alerter shows a blocking, user-facing explanation.
type Alerter interface {
	Alert(title, message string)
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(title, message string)

func (f AlerterFunc) Alert(title, message string) { f(title, message) }

// Gate decides whether a capability may be used right now.
type Gate struct {
	provider Provider
	alerter  Alerter
	log      *slog.Logger
}

func NewGate(provider Provider, alerter Alerter, log *slog.Logger) *Gate {
	if log == nil {
		log = slog.Default()
	}
	return &Gate{provider: provider, alerter: alerter, log: log}
}

// EnsureGranted returns true when c may be used. An undetermined status
// triggers exactly one OS request; a denied status raises one alert and never
// prompts. Failing to read the status counts as denied.
func (g *Gate) EnsureGranted(ctx context.Context, c Capability) bool {
	status, err := g.provider.Status(ctx, c)
	if err != nil {
		g.log.Warn("permission_status_failed", "capability", c, "error", err)
		status = Denied
	}

	switch status {
	case Undetermined:
		granted, err := g.provider.Request(ctx, c)
		if err != nil {
			g.log.Warn("permission_request_failed", "capability", c, "error", err)
			return false
		}
		g.log.Debug("permission_requested", "capability", c, "granted", granted)
		return granted
	case Denied:
		g.alerter.Alert(
			"Insufficient Permissions!",
			fmt.Sprintf("You need to grant %s permissions to use this app.", c),
		)
		return false
	}
	return true
}

// Guard runs action only when the gate grants c, otherwise it returns ErrDenied
// and the zero value.
func Guard[T any](ctx context.Context, g *Gate, c Capability, action func(context.Context) (T, error)) (T, error) {
	if !g.EnsureGranted(ctx, c) {
		var zero T
		return zero, fmt.Errorf("%s: %w", c, ErrDenied)
	}
	return action(ctx)
}
