package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/tokgate-go/internal/cli/config"
	"github.com/yndnr/tokgate-go/internal/cli/connection"
	"github.com/yndnr/tokgate-go/internal/cli/output"
	"github.com/yndnr/tokgate-go/internal/infra/buildinfo"
)

// requestTimeout bounds one API call. History reads pace themselves on the
// server, so it is generous.
const requestTimeout = 5 * time.Minute

// App creates the CLI application.
func App() *cli.App {
	app := &cli.App{
		Name:                 "tokgate-cli",
		Usage:                "command-line client for tokgate-server",
		Version:              buildinfo.String(),
		Flags:                globalFlags(),
		EnableBashCompletion: true,
		Before:               applyProfile,
	}
	app.Commands = []*cli.Command{
		AuthCommand(),
		ChatsCommand(),
		MessagesCommand(),
		GroupsCommand(),
		TokenCommand(),
		AdminCommand(),
		ConfigCommand(),
		ShellCommand(app),
	}
	return app
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "gateway base URL",
			EnvVars: []string{"TOKGATE_SERVER"},
			Value:   cliconfig.Default().Server,
		},
		&cli.StringFlag{
			Name:    "session",
			Aliases: []string{"t"},
			Usage:   "session string sent as X-Session-String",
			EnvVars: []string{"TOKGATE_SESSION"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
			EnvVars: []string{"TOKGATE_OUTPUT"},
			Value:   "table",
		},
		&cli.StringFlag{
			Name:    "socket",
			Usage:   "local admin socket path",
			EnvVars: []string{"TOKGATE_SOCKET"},
			Value:   cliconfig.Default().Socket,
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI profile file",
			EnvVars: []string{"TOKGATE_CLI_CONFIG"},
			Value:   cliconfig.DefaultConfigPath(),
		},
	}
}

// applyProfile fills global flags that were not given on the command line
// or in the environment from the profile file.
func applyProfile(c *cli.Context) error {
	cfg, err := cliconfig.Load(c.String("config"))
	if err != nil {
		return err
	}
	defaults := map[string]string{
		"server":  cfg.Server,
		"output":  cfg.Output,
		"socket":  cfg.Socket,
		"session": cfg.Session,
	}
	for name, v := range defaults {
		if v == "" || c.IsSet(name) {
			continue
		}
		if err := c.Set(name, v); err != nil {
			return err
		}
	}
	_, err = output.ParseFormat(c.String("output"))
	return err
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server  string
	Session string
	Output  output.Format
	Socket  string
	Config  string
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	format, err := output.ParseFormat(c.String("output"))
	if err != nil {
		format = output.FormatTable
	}
	return &GlobalFlags{
		Server:  c.String("server"),
		Session: c.String("session"),
		Output:  format,
		Socket:  c.String("socket"),
		Config:  c.String("config"),
	}
}

// newClient builds an API client. Commands that need a session fail early
// when none is configured.
func newClient(c *cli.Context, needSession bool) (*connection.HTTPClient, error) {
	flags := ParseGlobalFlags(c)
	if needSession && flags.Session == "" {
		return nil, fmt.Errorf("no session string: pass --session or set TOKGATE_SESSION")
	}
	return connection.NewHTTPClient(flags.Server, flags.Session), nil
}

func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Context, requestTimeout)
}

// render writes data to the app writer in the selected format.
func render(c *cli.Context, data any) error {
	return output.NewFormatter(ParseGlobalFlags(c).Output).Format(writer(c), data)
}

func writer(c *cli.Context) io.Writer {
	if c.App != nil && c.App.Writer != nil {
		return c.App.Writer
	}
	return os.Stdout
}

func errWriter(c *cli.Context) io.Writer {
	if c.App != nil && c.App.ErrWriter != nil {
		return c.App.ErrWriter
	}
	return os.Stderr
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
