package command

import (
	"fmt"
	"io"
	"mime"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/internal/cli/connection"
	"github.com/yndnr/tokgate-go/internal/cli/output"
	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// MessagesCommand returns the messages subcommand group.
func MessagesCommand() *cli.Command {
	chatFlag := &cli.StringFlag{
		Name:     "chat",
		Aliases:  []string{"c"},
		Usage:    "chat id, @username or t.me link",
		Required: true,
	}

	return &cli.Command{
		Name:    "messages",
		Aliases: []string{"msg"},
		Usage:   "Read and write messages",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show chat history, newest first",
				Flags: []cli.Flag{
					chatFlag,
					&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: domain.DefaultHistoryLimit, Usage: "messages per page"},
					&cli.Int64Flag{Name: "offset-id", Usage: "start below this message id"},
					&cli.StringFlag{Name: "search", Usage: "only messages containing this text"},
					&cli.TimestampFlag{Name: "from", Layout: time.RFC3339, Usage: "oldest message date (RFC 3339)"},
					&cli.TimestampFlag{Name: "to", Layout: time.RFC3339, Usage: "newest message date (RFC 3339)"},
					&cli.IntFlag{Name: "pages", Value: 1, Usage: "follow next_offset for this many pages"},
				},
				Action: messagesList,
			},
			{
				Name:      "send",
				Usage:     "Send a text message or a file",
				ArgsUsage: "[TEXT]",
				Flags: []cli.Flag{
					chatFlag,
					&cli.StringFlag{Name: "file", Aliases: []string{"f"}, Usage: "attach this file"},
					&cli.Int64Flag{Name: "reply-to", Usage: "reply to this message id"},
				},
				Action: messagesSend,
			},
			{
				Name:      "delete",
				Usage:     "Delete messages for everyone",
				ArgsUsage: "MESSAGE_ID...",
				Flags:     []cli.Flag{chatFlag},
				Action:    messagesDelete,
			},
			{
				Name:  "forward",
				Usage: "Forward a message to another chat",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "from", Usage: "source chat", Required: true},
					&cli.StringFlag{Name: "to", Usage: "destination chat", Required: true},
					&cli.Int64Flag{Name: "id", Usage: "message id", Required: true},
				},
				Action: messagesForward,
			},
			{
				Name:      "edit",
				Usage:     "Replace the text of a sent message",
				ArgsUsage: "NEW_TEXT",
				Flags: []cli.Flag{
					chatFlag,
					&cli.Int64Flag{Name: "id", Usage: "message id", Required: true},
				},
				Action: messagesEdit,
			},
			{
				Name:  "download",
				Usage: "Download the media attached to a message",
				Flags: []cli.Flag{
					chatFlag,
					&cli.Int64Flag{Name: "id", Usage: "message id", Required: true},
					&cli.StringFlag{Name: "out", Aliases: []string{"O"}, Usage: "output file or directory, - for stdout", Value: "."},
				},
				Action: messagesDownload,
			},
		},
	}
}

type messageList domain.MessagePage

func (l messageList) Table() *output.Table {
	t := &output.Table{Headers: []string{"ID", "DATE", "FROM", "MEDIA", "TEXT"}}
	for _, m := range l.Messages {
		from := output.Cell(m.SenderName)
		if m.SenderUsername != nil {
			from = "@" + *m.SenderUsername
		}
		text := ""
		if m.Text != nil {
			text = *m.Text
		}
		t.AddRow(
			strconv.FormatInt(m.ID, 10),
			output.Cell(m.Date),
			from,
			output.Cell(m.MediaType),
			output.Truncate(text, 60),
		)
	}
	t.Footer = fmt.Sprintf("Total: %d messages", l.TotalCount)
	if l.HasMore && l.NextOffset != nil {
		t.Footer += fmt.Sprintf(" (more: --offset-id %d)", *l.NextOffset)
	}
	return t
}

func messagesList(c *cli.Context) error {
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	q := url.Values{}
	q.Set("chat_id", c.String("chat"))
	q.Set("limit", strconv.Itoa(c.Int("limit")))
	if s := c.String("search"); s != "" {
		q.Set("search", s)
	}
	if ts := c.Timestamp("from"); ts != nil {
		q.Set("from_date", ts.Format(time.RFC3339))
	}
	if ts := c.Timestamp("to"); ts != nil {
		q.Set("to_date", ts.Format(time.RFC3339))
	}

	var all messageList
	offset := c.Int64("offset-id")
	for page := 0; page < max(c.Int("pages"), 1); page++ {
		if offset > 0 {
			q.Set("offset_id", strconv.FormatInt(offset, 10))
		}
		resp, err := client.Get(ctx, "/messages/?"+q.Encode())
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		var p domain.MessagePage
		if err := connection.ParseResponse(resp, &p); err != nil {
			return err
		}
		all.Messages = append(all.Messages, p.Messages...)
		all.TotalCount += p.TotalCount
		all.HasMore, all.NextOffset = p.HasMore, p.NextOffset
		if !p.HasMore || p.NextOffset == nil {
			break
		}
		offset = *p.NextOffset
	}
	return render(c, all)
}

type sentMessage struct {
	Success   bool      `json:"success"`
	MessageID int64     `json:"message_id"`
	Date      time.Time `json:"date"`
}

func messagesSend(c *cli.Context) error {
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	text := strings.Join(c.Args().Slice(), " ")
	var res sentMessage

	if path := c.String("file"); path != "" {
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()

		fields := map[string]string{"chat_id": c.String("chat"), "text": text}
		if r := c.Int64("reply-to"); r != 0 {
			fields["reply_to_message_id"] = strconv.FormatInt(r, 10)
		}
		resp, err := client.PostFile(ctx, "/messages/send_with_file", fields, filepath.Base(path), f)
		if err != nil {
			return fmt.Errorf("request failed: %w", err)
		}
		if err := connection.ParseResponse(resp, &res); err != nil {
			return err
		}
		return render(c, res)
	}

	if text == "" {
		return fmt.Errorf("message text required")
	}
	resp, err := client.Post(ctx, "/messages/send", map[string]any{
		"chat_id":             c.String("chat"),
		"text":                text,
		"reply_to_message_id": c.Int64("reply-to"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return render(c, res)
}

func messagesDelete(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("at least one message id required")
	}
	ids := make([]int64, 0, c.NArg())
	for _, a := range c.Args().Slice() {
		id, err := strconv.ParseInt(a, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid message id %q", a)
		}
		ids = append(ids, id)
	}

	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Delete(ctx, "/messages/delete", map[string]any{
		"chat_id":     c.String("chat"),
		"message_ids": ids,
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var res struct {
		Success         bool    `json:"success"`
		DeletedMessages []int64 `json:"deleted_messages"`
	}
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return render(c, res)
}

func messagesForward(c *cli.Context) error {
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/messages/forward", map[string]any{
		"from_chat_id": c.String("from"),
		"to_chat_id":   c.String("to"),
		"message_id":   c.Int64("id"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var res sentMessage
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return render(c, res)
}

func messagesEdit(c *cli.Context) error {
	text := strings.Join(c.Args().Slice(), " ")
	if text == "" {
		return fmt.Errorf("new text required")
	}
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	// The edit route takes the message id as a string.
	resp, err := client.Post(ctx, "/messages/edit", map[string]any{
		"chat_id":    c.String("chat"),
		"message_id": strconv.FormatInt(c.Int64("id"), 10),
		"new_text":   text,
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var res sentMessage
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return render(c, res)
}

type downloadResult struct {
	File     string `json:"file"`
	Bytes    int64  `json:"bytes"`
	MimeType string `json:"mime_type"`
}

func messagesDownload(c *cli.Context) error {
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	id := c.Int64("id")
	q := url.Values{}
	q.Set("chat_id", c.String("chat"))
	resp, err := client.Get(ctx, fmt.Sprintf("/messages/media/%d?%s", id, q.Encode()))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.StatusCode >= 400 {
		return connection.ParseResponse(resp, nil)
	}
	defer resp.Body.Close()

	out := c.String("out")
	if out == "-" {
		_, err := io.Copy(writer(c), resp.Body)
		return err
	}

	name := attachmentName(resp.Header.Get("Content-Disposition"), id)
	path := out
	if info, err := os.Stat(out); err == nil && info.IsDir() {
		path = filepath.Join(out, name)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	bar := output.NewProgressBar(errWriter(c), filepath.Base(path), resp.ContentLength)
	n, err := io.Copy(io.MultiWriter(f, bar), resp.Body)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(path)
		return fmt.Errorf("download: %w", err)
	}
	bar.Finish()

	return render(c, downloadResult{File: path, Bytes: n, MimeType: resp.Header.Get("Content-Type")})
}

// attachmentName extracts a safe file name from Content-Disposition.
func attachmentName(header string, id int64) string {
	fallback := fmt.Sprintf("media_%d", id)
	_, params, err := mime.ParseMediaType(header)
	if err != nil {
		return fallback
	}
	name := filepath.Base(filepath.Clean("/" + params["filename"]))
	if name == "/" || name == "." || name == "" {
		return fallback
	}
	return name
}
