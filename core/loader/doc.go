// Package loader provides the plugin-like feature loading system.
//
// Each feature implements the Feature interface, which defines its name,
// whether it is enabled and its route registration logic.
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry of features, loads the enabled ones in
// registration order via LoadAll and rejects duplicate names. Features like
// 'materials' and 'integrity' are developed and tested in isolation.
package loader
