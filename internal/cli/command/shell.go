package command

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/internal/cli/output"
	"github.com/yndnr/tokgate-go/internal/cli/repl"
	"github.com/yndnr/tokgate-go/pkg/token"
)

// ShellCommand returns the interactive shell command. Lines typed in the
// shell run as app commands with the shell's current server, session and
// output format.
func ShellCommand(app *cli.App) *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Start an interactive shell",
		Description: "Builtins: session [TOKEN], use URL, output FORMAT, history, exit.\n" +
			"End a line with ? to list matching commands.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "history-file", Usage: "history file", Value: repl.DefaultHistoryFile()},
		},
		Action: func(c *cli.Context) error {
			sh := newShell(app, ParseGlobalFlags(c))
			paths := append(commandPaths("", app.Commands), "session", "use", "output")
			r := repl.New(sh.exec,
				repl.WithIO(c.App.Reader, writer(c)),
				repl.WithCompleter(repl.NewCompleter(paths)),
				repl.WithHistory(repl.NewHistory(c.String("history-file"))),
			)
			return r.Run(c.Context)
		},
	}
}

type shell struct {
	app   *cli.App
	state *GlobalFlags
}

func newShell(app *cli.App, flags *GlobalFlags) *shell {
	// Errors are printed by the loop; nothing may call os.Exit.
	app.ExitErrHandler = func(*cli.Context, error) {}
	return &shell{app: app, state: flags}
}

func (s *shell) exec(ctx context.Context, args []string) error {
	w := s.app.Writer
	switch args[0] {
	case "shell":
		return errors.New("already in the shell")
	case "session":
		if len(args) == 1 {
			if s.state.Session == "" {
				fmt.Fprintln(w, "no session")
			} else {
				fmt.Fprintf(w, "session %s\n", token.Fingerprint(s.state.Session))
			}
			return nil
		}
		s.state.Session = args[1]
		fmt.Fprintf(w, "session %s\n", token.Fingerprint(args[1]))
		return nil
	case "use":
		if len(args) != 2 {
			return errors.New("usage: use URL")
		}
		s.state.Server = args[1]
		return nil
	case "output":
		if len(args) != 2 {
			return errors.New("usage: output table|json|yaml")
		}
		f, err := output.ParseFormat(args[1])
		if err != nil {
			return err
		}
		s.state.Output = f
		return nil
	}

	argv := []string{s.app.Name,
		"--server", s.state.Server,
		"--output", string(s.state.Output),
		"--socket", s.state.Socket,
		"--config", s.state.Config,
	}
	if s.state.Session != "" {
		argv = append(argv, "--session", s.state.Session)
	}
	return s.app.RunContext(ctx, append(argv, args...))
}

// commandPaths lists every visible command as a space-joined path.
func commandPaths(prefix string, cmds []*cli.Command) []string {
	var paths []string
	for _, cmd := range cmds {
		if cmd.Hidden || cmd.Name == "help" || cmd.Name == "shell" {
			continue
		}
		p := cmd.Name
		if prefix != "" {
			p = prefix + " " + cmd.Name
		}
		paths = append(paths, p)
		paths = append(paths, commandPaths(p, cmd.Subcommands)...)
	}
	return paths
}
