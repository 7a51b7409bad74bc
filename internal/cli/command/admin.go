package command

import (
	"fmt"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/internal/cli/connection"
)

// AdminCommand returns the local admin subcommand group. It talks to the
// server's Unix socket and must run on the gateway host.
func AdminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage a local tokgate-server over its admin socket",
		Subcommands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show cached connections and uptime",
				Action: adminExec("status"),
			},
			{
				Name:   "drain",
				Usage:  "Disconnect every cached connection",
				Action: adminExec("drain"),
			},
			{
				Name:   "reload",
				Usage:  "Re-read the config file and apply the log level",
				Action: adminExec("reload"),
			},
			{
				Name:      "shutdown",
				Usage:     "Stop the server gracefully",
				ArgsUsage: "[REASON]",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "skip confirmation"},
				},
				Action: adminShutdown,
			},
			{
				Name:  "health",
				Usage: "Check the HTTP health and readiness endpoints",
				Action: adminHealth,
			},
		},
	}
}

func adminExec(cmd string) cli.ActionFunc {
	return func(c *cli.Context) error {
		return runAdmin(c, cmd)
	}
}

func adminShutdown(c *cli.Context) error {
	if !c.Bool("yes") {
		return fmt.Errorf("refusing to stop the server without --yes")
	}
	cmd := "shutdown"
	if c.NArg() > 0 {
		cmd += " " + strings.Join(c.Args().Slice(), " ")
	}
	return runAdmin(c, cmd)
}

func runAdmin(c *cli.Context, cmd string) error {
	client := connection.NewSocketClient(ParseGlobalFlags(c).Socket)
	defer client.Close()

	lines, err := client.Execute(cmd)
	if err != nil {
		return fmt.Errorf("%s: %w", strings.Fields(cmd)[0], err)
	}
	return render(c, parseAdminLines(lines))
}

// parseAdminLines turns "k=v k=v" replies into a map; free-form lines are
// kept under "output".
func parseAdminLines(lines []string) map[string]any {
	out := make(map[string]any)
	var free []string
	for _, line := range lines {
		fields := strings.Fields(line)
		kv := len(fields) > 0
		for _, f := range fields {
			if !strings.Contains(f, "=") {
				kv = false
				break
			}
		}
		if !kv {
			free = append(free, strings.TrimSpace(line))
			continue
		}
		for _, f := range fields {
			k, v, _ := strings.Cut(f, "=")
			out[k] = v
		}
	}
	if len(free) > 0 {
		out["output"] = free
	}
	return out
}

type healthResult struct {
	Health string `json:"health"`
	Ready  string `json:"ready"`
}

func adminHealth(c *cli.Context) error {
	client, err := newClient(c, false)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	var res healthResult
	for path, dst := range map[string]*string{"/health": &res.Health, "/ready": &res.Ready} {
		resp, err := client.Get(ctx, path)
		if err != nil {
			*dst = "unreachable"
			continue
		}
		if err := connection.ParseResponse(resp, nil); err != nil {
			*dst = err.Error()
			continue
		}
		*dst = "ok"
	}
	return render(c, res)
}
