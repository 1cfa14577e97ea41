package configure

import "github.com/rs/zerolog"

type Option func(*options)

type options struct {
	registry  *Registry
	variables map[string]string
	logger    *zerolog.Logger
	overrides []string
}

func newOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.registry == nil {
		o.registry = DefaultRegistry()
	}
	return o
}

// WithRegistry selects the registry !factory and !obj names are looked
// up in.
func WithRegistry(r *Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}

// WithVariables supplies values for ${name} placeholders. ${pwd} is
// always the directory of the document being read.
func WithVariables(vars map[string]string) Option {
	return func(o *options) {
		o.variables = make(map[string]string, len(vars))
		for key, value := range vars {
			o.variables[key] = value
		}
	}
}

// WithLogger routes debug logging of loading and resolution to l.
func WithLogger(l zerolog.Logger) Option {
	return func(o *options) {
		o.logger = &l
	}
}

// WithOverrides layers "dotted.path=value" assignments over the loaded
// documents.
func WithOverrides(sets ...string) Option {
	return func(o *options) {
		o.overrides = append(o.overrides, sets...)
	}
}
