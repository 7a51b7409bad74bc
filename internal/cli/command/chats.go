package command

import (
	"fmt"
	"net/url"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/internal/cli/connection"
	"github.com/yndnr/tokgate-go/internal/cli/output"
	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// ChatsCommand returns the chats subcommand group.
func ChatsCommand() *cli.Command {
	return &cli.Command{
		Name:  "chats",
		Usage: "Browse dialogs",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List dialogs, most recent first",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: domain.DefaultHistoryLimit, Usage: "maximum dialogs"},
				},
				Action: chatsList,
			},
		},
	}
}

type chatList struct {
	Chats      []domain.ChatSummary `json:"chats"`
	TotalCount int                  `json:"total_count"`
}

func (l chatList) Table() *output.Table {
	t := &output.Table{
		Headers: []string{"ID", "TYPE", "NAME", "USERNAME", "MEMBERS"},
		Footer:  fmt.Sprintf("Total: %d chats", l.TotalCount),
	}
	for _, ch := range l.Chats {
		t.AddRow(
			strconv.FormatInt(ch.ID, 10),
			string(ch.Type),
			output.Truncate(ch.Name, 40),
			output.Cell(ch.Username),
			output.Cell(ch.MembersCount),
		)
	}
	return t
}

func chatsList(c *cli.Context) error {
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	q := url.Values{}
	q.Set("limit", strconv.Itoa(c.Int("limit")))
	resp, err := client.Get(ctx, "/chats?"+q.Encode())
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var res chatList
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return render(c, res)
}
