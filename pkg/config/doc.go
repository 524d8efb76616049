// Package config exposes the public contracts for the loader and parser
// stages together with the parsed configuration model (Tree, Group, Value).
// Implementations live under internal/config so the parser libraries stay
// hidden from consumers.
package config
