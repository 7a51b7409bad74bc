package repl

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
)

type recorder struct {
	calls [][]string
	err   error
}

func (r *recorder) exec(_ context.Context, args []string) error {
	r.calls = append(r.calls, args)
	return r.err
}

func runREPL(t *testing.T, input string, rec *recorder, opts ...Option) string {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithIO(strings.NewReader(input), &out)}, opts...)
	if err := New(rec.exec, opts...).Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return out.String()
}

func TestREPL_Exit(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"exit", "exit\nchats list\n"},
		{"quit", "quit\n"},
		{"eof", ""},
		{"eof without newline", "chats list"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			runREPL(t, tt.input, rec)
			if tt.name == "eof without newline" {
				if len(rec.calls) != 1 {
					t.Errorf("calls = %v, want the final line executed", rec.calls)
				}
				return
			}
			if len(rec.calls) != 0 {
				t.Errorf("calls = %v, want none", rec.calls)
			}
		})
	}
}

func TestREPL_Executes(t *testing.T) {
	rec := &recorder{}
	out := runREPL(t, "\n  chats list --limit 5 \nmessages send --chat me \"hello world\"\nexit\n", rec)

	want := [][]string{
		{"chats", "list", "--limit", "5"},
		{"messages", "send", "--chat", "me", "hello world"},
	}
	if !reflect.DeepEqual(rec.calls, want) {
		t.Errorf("calls = %v, want %v", rec.calls, want)
	}
	if n := strings.Count(out, Prompt); n != 4 {
		t.Errorf("prompts = %d, want 4", n)
	}
}

func TestREPL_CommandErrorContinues(t *testing.T) {
	rec := &recorder{err: errors.New("chat not found")}
	out := runREPL(t, "chats list\nchats list --limit 1\n", rec)

	if len(rec.calls) != 2 {
		t.Errorf("calls = %d, want 2", len(rec.calls))
	}
	if !strings.Contains(out, "error: chat not found") {
		t.Errorf("output = %q, want the error printed", out)
	}
}

func TestREPL_Completion(t *testing.T) {
	rec := &recorder{}
	c := NewCompleter([]string{"messages list", "messages send", "chats list"})
	out := runREPL(t, "messages ?\n", rec, WithCompleter(c))

	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
	for _, want := range []string{"messages list", "messages send"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q: %q", want, out)
		}
	}
	if strings.Contains(out, "chats list") {
		t.Errorf("output lists a non-matching command: %q", out)
	}
}

func TestREPL_History(t *testing.T) {
	rec := &recorder{}
	h := NewHistory("")
	out := runREPL(t, "chats list\nhistory\n", rec, WithHistory(h))

	if !strings.Contains(out, "    1  chats list") {
		t.Errorf("output = %q, want the history listing", out)
	}
	if h.Get(0) != "history" {
		t.Errorf("Get(0) = %q, want history", h.Get(0))
	}
}

func TestREPL_BadQuoting(t *testing.T) {
	rec := &recorder{}
	out := runREPL(t, "messages send 'oops\n", rec)
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
	if !strings.Contains(out, "unterminated") {
		t.Errorf("output = %q, want a quoting error", out)
	}
}

func TestREPL_ContextDone(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec := &recorder{}
	r := New(rec.exec, WithIO(strings.NewReader("chats list\n"), &bytes.Buffer{}))
	if err := r.Run(ctx); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(rec.calls) != 0 {
		t.Errorf("calls = %v, want none", rec.calls)
	}
}

func TestSplit(t *testing.T) {
	tests := []struct {
		line    string
		want    []string
		wantErr bool
	}{
		{"chats list", []string{"chats", "list"}, false},
		{"  a \t b  ", []string{"a", "b"}, false},
		{`send "hello world"`, []string{"send", "hello world"}, false},
		{`send 'it"s'`, []string{"send", `it"s`}, false},
		{`send it\'s`, []string{"send", "it's"}, false},
		{`edit ""`, []string{"edit", ""}, false},
		{`a'b'c`, []string{"abc"}, false},
		{`'unterminated`, nil, true},
		{`trailing\`, nil, true},
		{"   ", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			got, err := Split(tt.line)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Split(%q) error = %v, wantErr %v", tt.line, err, tt.wantErr)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Split(%q) = %q, want %q", tt.line, got, tt.want)
			}
		})
	}
}
