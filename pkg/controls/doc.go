// Package controls implements the dialog capability nodes of espalier: the
// Control interface, the composite Container, and the leaf value-acquisition
// state machines (value, list, number, date).
//
// Dispatch is decision-based: CanHandle returns an explicit Decision value
// that Handle later executes, so deciding never mutates state and repeated
// decisions are safe. Containers resolve conflicts by depth-first,
// first-match-wins order; within one control, built-in handlers take
// precedence over custom ones, with every simultaneous match logged.
package controls
