package command

import (
	"errors"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/pkg/token"
)

// TokenCommand returns the offline token subcommand group.
func TokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Work with session strings offline",
		Subcommands: []*cli.Command{
			{
				Name:      "inspect",
				Usage:     "Show what a session string carries, without the API hash",
				ArgsUsage: "[SESSION_STRING]",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "key",
						Usage:   "credential key, needed to open sealed tokens",
						EnvVars: []string{"TOKGATE_SECURITY_CREDENTIAL_KEY"},
					},
				},
				Action: tokenInspect,
			},
		},
	}
}

// tokenInfo never carries the API hash or the session itself.
type tokenInfo struct {
	Fingerprint   string `json:"fingerprint"`
	Sealed        bool   `json:"sealed"`
	Valid         bool   `json:"valid"`
	APIID         uint64 `json:"api_id,omitempty"`
	SessionLength int    `json:"session_length,omitempty"`
	Error         string `json:"error,omitempty"`
}

func tokenInspect(c *cli.Context) error {
	tok := c.Args().First()
	if tok == "" {
		tok = c.String("session")
	}
	if tok == "" {
		return errors.New("session string required")
	}

	codec, err := token.NewCodec([]byte(c.String("key")))
	if err != nil {
		return err
	}

	info := tokenInfo{
		Fingerprint: token.Fingerprint(tok),
		Sealed:      token.IsSealed(tok),
	}
	parts, err := codec.Decode(tok)
	if err != nil {
		info.Error = err.Error()
	} else {
		info.Valid = true
		info.APIID = parts.APIID
		info.SessionLength = len(parts.Session)
	}
	return render(c, info)
}
