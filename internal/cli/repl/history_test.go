package repl

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func TestHistory_Add(t *testing.T) {
	h := NewHistory("")
	for _, line := range []string{"chats list", "chats list", "", "messages list --chat me"} {
		h.Add(line)
	}
	want := []string{"chats list", "messages list --chat me"}
	if got := h.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("Entries() = %v, want %v", got, want)
	}
}

func TestHistory_AddSkipsSecrets(t *testing.T) {
	tests := []string{
		"session abc:def",
		"chats list --session abc:def",
		"chats list -t abc:def",
		"chats list --session=abc:def",
		"auth verify-password --password hunter2",
	}
	for _, line := range tests {
		h := NewHistory("")
		h.Add(line)
		if h.Len() != 0 {
			t.Errorf("Add(%q) stored the line", line)
		}
	}
}

func TestHistory_MaxSize(t *testing.T) {
	h := NewHistory("")
	h.maxSize = 3
	for _, line := range []string{"a", "b", "c", "d"} {
		h.Add(line)
	}
	if got := h.Entries(); !reflect.DeepEqual(got, []string{"b", "c", "d"}) {
		t.Errorf("Entries() = %v, want [b c d]", got)
	}
}

func TestHistory_Get(t *testing.T) {
	h := NewHistory("")
	h.Add("first")
	h.Add("second")
	h.Add("third")

	tests := []struct {
		index int
		want  string
	}{
		{0, "third"},
		{1, "second"},
		{2, "first"},
		{3, ""},
		{-1, ""},
	}
	for _, tt := range tests {
		if got := h.Get(tt.index); got != tt.want {
			t.Errorf("Get(%d) = %q, want %q", tt.index, got, tt.want)
		}
	}
}

func TestHistory_SaveLoad(t *testing.T) {
	file := filepath.Join(t.TempDir(), ".tokgate", "history")

	h := NewHistory(file)
	h.Add("chats list")
	h.Add("groups join @golang")
	if err := h.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	info, err := os.Stat(file)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("history mode = %o, want 600", perm)
	}

	h2 := NewHistory(file)
	if err := h2.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got, want := h2.Entries(), h.Entries(); !reflect.DeepEqual(got, want) {
		t.Errorf("loaded %v, want %v", got, want)
	}
}

func TestHistory_LoadMissing(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "nope"))
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v, want nil", err)
	}
	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_InMemory(t *testing.T) {
	h := NewHistory("")
	h.Add("x")
	if err := h.Save(); err != nil {
		t.Errorf("Save() error = %v", err)
	}
	if err := h.Load(); err != nil {
		t.Errorf("Load() error = %v", err)
	}
}

func TestDefaultHistoryFile(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	if got := DefaultHistoryFile(); !strings.HasSuffix(got, filepath.Join(".tokgate", "history")) {
		t.Errorf("DefaultHistoryFile() = %q", got)
	}
}
