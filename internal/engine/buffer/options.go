package buffer

// Option is a functional option for configuring a Buffer.
type Option func(*Buffer)

// WithTabWidth sets the buffer's tab width.
func WithTabWidth(width int) Option {
	return func(b *Buffer) {
		if width > 0 {
			b.tabWidth = width
		}
	}
}

// WithMode sets the buffer's mode (language identifier).
func WithMode(mode string) Option {
	return func(b *Buffer) {
		b.mode = mode
	}
}
