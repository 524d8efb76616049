// Package template defines the engine-agnostic template contract and the
// sentinel errors engines use to classify failures.
package template
