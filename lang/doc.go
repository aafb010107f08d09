// Package lang scans the key=value scripting dialect used by mod files into
// a flat stream of block and field events, and groups the top-level part of
// that stream into named entities.
//
// The dialect has no formal grammar. A document is a sequence of
// statements, each one of
//
//	name <op> value
//	name <op> { ... }
//	name <op> tag { ... }     (e.g. color = hsv { 0.5 0.2 0.8 })
//	{ ... }
//	value                     (a bare word, valid inside lists)
//
// where <op> is one of = ?= < > <= >= == !=. Everything after an unquoted #
// is a comment. Statements may span lines: both the operator and the value
// may sit on the line after the name.
//
// [Scan] never fails. Structural problems (unbalanced braces, dangling
// operators) are reported alongside the events and scanning continues past
// them.
//
// All positions are zero-based. Columns count runes, not bytes.
package lang
