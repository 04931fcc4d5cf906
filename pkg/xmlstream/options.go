package xmlstream

import "io"

const defaultMaxDepth = 256

// Option configures a Reader.
type Option func(*options)

type options struct {
	charsetReader func(label string, input io.Reader) (io.Reader, error)
	maxDepth      int
}

// MaxDepth limits element nesting. Zero restores the default.
func MaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = n
	}
}

// CharsetReader installs a converter for non-UTF-8 encodings declared in the
// XML declaration.
func CharsetReader(fn func(label string, input io.Reader) (io.Reader, error)) Option {
	return func(o *options) {
		o.charsetReader = fn
	}
}

func buildOptions(opts ...Option) options {
	o := options{maxDepth: defaultMaxDepth}
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	if o.maxDepth <= 0 {
		o.maxDepth = defaultMaxDepth
	}
	return o
}
