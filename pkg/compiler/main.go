// Package compiler provides the korka front end: a lexer for a small
// C-like language, an index-addressed AST pool, and a recursive-descent
// parser that fills it.
//
// Pipeline: source → Lex → Parse → (Pool, Program root)
package compiler
