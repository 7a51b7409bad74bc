package repl

import (
	"sort"
	"strings"
)

// Completer suggests full command paths for a typed prefix.
type Completer struct {
	commands []string
}

// NewCompleter creates a Completer over the given command paths, such as
// "messages list". Builtins are always included.
func NewCompleter(commands []string) *Completer {
	seen := make(map[string]bool)
	var all []string
	for _, cmd := range append(commands, builtins...) {
		cmd = strings.Join(strings.Fields(cmd), " ")
		if cmd == "" || seen[cmd] {
			continue
		}
		seen[cmd] = true
		all = append(all, cmd)
	}
	sort.Strings(all)
	return &Completer{commands: all}
}

// Complete returns the paths starting with prefix, sorted.
func (c *Completer) Complete(prefix string) []string {
	prefix = strings.TrimLeft(prefix, " \t")
	var suggestions []string
	for _, cmd := range c.commands {
		if strings.HasPrefix(cmd, prefix) {
			suggestions = append(suggestions, cmd)
		}
	}
	return suggestions
}
