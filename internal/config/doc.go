// Package config handles configuration loading and defaults.
//
// Values are resolved in priority order, later sources winning:
//  1. Defaults
//  2. TOML file (-config flag, TODOS_CONFIG, or ./todos.toml when present)
//  3. Environment variables (TODOS_*)
//  4. CLI flags
package config
