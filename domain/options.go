package domain

// WithApplyAsInsert marks the delta application as an insert, which enables
// $setOnInsert.
func WithApplyAsInsert(i bool) ApplyOption {
	return func(ao *ApplyOptions) {
		ao.AsInsert = i
	}
}

// WithApplyTombstone makes deletes ($unset, $rename sources) leave
// [Tombstone] behind instead of removing the key.
func WithApplyTombstone(t bool) ApplyOption {
	return func(ao *ApplyOptions) {
		ao.UseTombstone = t
	}
}

// WithApplyRootSet controls how operator-less deltas are treated. When true,
// they are applied as an implicit $set. When false, they replace the
// contents of the target document.
func WithApplyRootSet(r bool) ApplyOption {
	return func(ao *ApplyOptions) {
		ao.AllowRootSet = r
	}
}

// ApplyOption configures delta application through the functional options
// pattern.
type ApplyOption func(*ApplyOptions)

// ApplyOptions contains parameters for customizing delta application.
type ApplyOptions struct {
	// AsInsert enables $setOnInsert.
	AsInsert bool
	// UseTombstone makes deletes leave [Tombstone] behind.
	UseTombstone bool
	// AllowRootSet promotes operator-less deltas to $set.
	AllowRootSet bool
}

// NewApplyOptions returns the default [ApplyOptions] with the given options
// applied over them.
func NewApplyOptions(options ...ApplyOption) ApplyOptions {
	ao := ApplyOptions{
		UseTombstone: true,
		AllowRootSet: true,
	}
	for _, option := range options {
		option(&ao)
	}
	return ao
}
