// Package design holds the named parts produced by evaluating a script.
// A Design is built once per evaluation and read afterwards; it is never
// shared between evaluations.
package design
