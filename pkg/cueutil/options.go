// SPDX-License-Identifier: MPL-2.0

package cueutil

// DefaultMaxFileSize is the largest document ParseAndDecode accepts (1MB).
const DefaultMaxFileSize int64 = 1 << 20

// Option adjusts how ParseAndDecode reads a document.
type Option func(*settings)

type settings struct {
	limit    int64
	concrete bool
	name     string
}

func newSettings(opts []Option) settings {
	s := settings{limit: DefaultMaxFileSize, concrete: true, name: "<input>"}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithMaxFileSize replaces DefaultMaxFileSize.
func WithMaxFileSize(size int64) Option {
	return func(s *settings) { s.limit = size }
}

// WithConcrete controls whether every value must be concrete after
// unification. It defaults to true; documents whose fields are all optional
// need false.
func WithConcrete(concrete bool) Option {
	return func(s *settings) { s.concrete = concrete }
}

// WithFilename names the document in positions and error messages.
func WithFilename(name string) Option {
	return func(s *settings) {
		if name != "" {
			s.name = name
		}
	}
}
