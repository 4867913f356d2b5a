// Package shell implements a small POSIX-flavored shell: a streaming
// lexer/parser that assembles pipelines of commands joined by |, &&, ||,
// with optional output redirection (>, >>) and background execution (&),
// and an Executor that runs the parsed pipelines as real child processes.
package shell
