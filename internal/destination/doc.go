// Package destination picks and verifies the single target of a task move.
//
// A move may name a project, a section or a parent task, but exactly one of
// them. Each request runs through a small state machine:
//
//	unresolved --none|multiple--> ambiguous
//	unresolved --single--------> resolving
//	resolving  --incomplete----> failed
//	resolving  --verified------> resolved
//	resolving  --rejected------> failed
//
// Check runs the counting stage only and makes no remote calls, so callers
// can reject a malformed move before verifying anything else.
package destination
