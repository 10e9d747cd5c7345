// Package compiler translates a tiny arithmetic/assignment language into
// x86-64 assembly (Intel syntax) that evaluates it on the machine stack.
//
// Pipeline: source → Lex → Parse → Generate → assembly text
//
// A program is a sequence of ';'-terminated statements over integer
// literals, the 26 single-letter variables a..z, + - * /, parentheses and
// '='. The program's result is the value of its last statement.
package compiler
