package repl

import (
	"reflect"
	"testing"
)

func TestCompleter_Complete(t *testing.T) {
	c := NewCompleter([]string{
		"messages", "messages list", "messages send", "chats", "chats list",
		"messages  list", "",
	})

	tests := []struct {
		prefix string
		want   []string
	}{
		{"messages", []string{"messages", "messages list", "messages send"}},
		{"messages l", []string{"messages list"}},
		{"  chats l", []string{"chats list"}},
		{"ex", []string{"exit"}},
		{"h", []string{"help", "history"}},
		{"groups", nil},
	}

	for _, tt := range tests {
		t.Run(tt.prefix, func(t *testing.T) {
			if got := c.Complete(tt.prefix); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Complete(%q) = %v, want %v", tt.prefix, got, tt.want)
			}
		})
	}
}

func TestCompleter_EmptyPrefixListsAll(t *testing.T) {
	c := NewCompleter([]string{"chats"})
	got := c.Complete("")
	if len(got) != 1+len(builtins) {
		t.Errorf("Complete(\"\") returned %d items, want %d", len(got), 1+len(builtins))
	}
}
