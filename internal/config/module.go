package config

import "go.uber.org/fx"

// Module provides *Config loaded from the process environment and arguments.
var Module = fx.Provide(Load)
