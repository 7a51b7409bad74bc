// Package repl runs tokgate-cli as an interactive shell.
//
// Each input line is split into words (single and double quotes group
// words) and handed to an Executor, normally the urfave/cli application.
// A line ending in "?" lists the commands that complete it. History is
// kept in ~/.tokgate/history between runs.
package repl
