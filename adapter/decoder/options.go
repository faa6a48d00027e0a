package decoder

// Option configures a [Decoder].
type Option func(*Decoder)

// WithTimeLayout sets the layout used to decode strings into time.Time
// fields. Defaults to [time.RFC3339Nano].
func WithTimeLayout(layout string) Option {
	return func(d *Decoder) {
		if layout != "" {
			d.timeLayout = layout
		}
	}
}
