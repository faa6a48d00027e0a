package projector

import "log/slog"

// WithLogger sets the logger that receives key collisions.
func WithLogger(l *slog.Logger) Option {
	return func(p *Projector) {
		p.logger = l
	}
}

// Option configures projector behavior through the functional options pattern.
type Option func(*Projector)
