// Package orchestrator wires the loader -> parser -> resolver -> flatten ->
// renderer pipeline and folds every stage failure into a single *Error whose
// Kind names the stage.
package orchestrator
