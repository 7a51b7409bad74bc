package command

import (
	"fmt"
	"sort"

	"github.com/urfave/cli/v2"

	cliconfig "github.com/yndnr/tokgate-go/internal/cli/config"
	"github.com/yndnr/tokgate-go/internal/cli/output"
)

// ConfigCommand returns the profile subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Show or edit the CLI profile",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the profile file",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set a profile key: server, output, socket or session",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
		},
	}
}

type profileView struct {
	Path    string `json:"path"`
	Server  string `json:"server"`
	Output  string `json:"output"`
	Socket  string `json:"socket"`
	Session string `json:"session"`
}

func configShow(c *cli.Context) error {
	path := ParseGlobalFlags(c).Config
	cfg, err := cliconfig.Load(path)
	if err != nil {
		return err
	}
	view := profileView{Path: path, Server: cfg.Server, Output: cfg.Output, Socket: cfg.Socket}
	if cfg.Session != "" {
		view.Session = "(set)"
	}
	return render(c, view)
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("usage: config set KEY VALUE")
	}
	key, value := c.Args().Get(0), c.Args().Get(1)

	path := ParseGlobalFlags(c).Config
	cfg, err := cliconfig.Load(path)
	if err != nil {
		return err
	}

	setters := map[string]*string{
		"server":  &cfg.Server,
		"output":  &cfg.Output,
		"socket":  &cfg.Socket,
		"session": &cfg.Session,
	}
	dst, ok := setters[key]
	if !ok {
		keys := make([]string, 0, len(setters))
		for k := range setters {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		return fmt.Errorf("unknown key %q (want one of %v)", key, keys)
	}
	if key == "output" {
		if _, err := output.ParseFormat(value); err != nil {
			return err
		}
	}
	*dst = value

	if err := cliconfig.Save(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(writer(c), "%s updated in %s\n", key, path)
	return nil
}
