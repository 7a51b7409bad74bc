package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/internal/cli/connection"
)

// GroupsCommand returns the groups subcommand group.
func GroupsCommand() *cli.Command {
	return &cli.Command{
		Name:  "groups",
		Usage: "Join groups and channels",
		Subcommands: []*cli.Command{
			{
				Name:      "join",
				Usage:     "Join by invite link, t.me link or @username",
				ArgsUsage: "IDENTIFIER",
				Action:    groupsJoin,
			},
		},
	}
}

func groupsJoin(c *cli.Context) error {
	identifier := c.Args().First()
	if identifier == "" {
		return fmt.Errorf("group identifier required")
	}
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/groups/join", map[string]string{"group_identifier": identifier})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var res struct {
		Success     bool   `json:"success"`
		Message     string `json:"message"`
		ID          int64  `json:"id,omitempty"`
		Title       string `json:"title,omitempty"`
		Username    string `json:"username,omitempty"`
		Description string `json:"description,omitempty"`
		PhotoURL    string `json:"photo_url,omitempty"`
	}
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return render(c, res)
}
