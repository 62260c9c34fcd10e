//go:build !pprof

package profile

// Modes returns nil when built without [Tag].
func Modes() []string { return nil }

func start(Config) interface{ Stop() } { return ignore{} }
