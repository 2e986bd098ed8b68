package pipeline

// WithVerifyFunc replaces the post-write file check.
func WithVerifyFunc(f func(fileName string) error) Option {
	return func(d *Driver) {
		d.verify = f
	}
}
