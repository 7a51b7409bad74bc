package command

import (
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/tokgate-go/internal/cli/connection"
	"github.com/yndnr/tokgate-go/internal/cli/output"
	"github.com/yndnr/tokgate-go/internal/core/domain"
)

// AuthCommand returns the auth subcommand group.
func AuthCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Log an account in and out",
		Subcommands: []*cli.Command{
			{
				Name:  "send-code",
				Usage: "Request a login code for a phone number",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "phone", Usage: "phone number in international format", Required: true},
					&cli.Uint64Flag{Name: "api-id", Usage: "application api_id", EnvVars: []string{"TOKGATE_API_ID"}, Required: true},
					&cli.StringFlag{Name: "api-hash", Usage: "application api_hash", EnvVars: []string{"TOKGATE_API_HASH"}, Required: true},
				},
				Action: authSendCode,
			},
			{
				Name:      "verify-code",
				Usage:     "Submit the login code",
				ArgsUsage: "CODE",
				Action:    authVerifyCode,
			},
			{
				Name:  "verify-password",
				Usage: "Submit the two-step verification password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Usage: "2FA password", EnvVars: []string{"TOKGATE_2FA_PASSWORD"}, Required: true},
				},
				Action: authVerifyPassword,
			},
			{
				Name:   "logout",
				Usage:  "Log the session out and drop its connection",
				Action: authLogout,
			},
		},
	}
}

func authSendCode(c *cli.Context) error {
	client, err := newClient(c, false)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/auth/send_code", map[string]any{
		"phone":    c.String("phone"),
		"api_id":   c.Uint64("api-id"),
		"api_hash": c.String("api-hash"),
	})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return renderAuth(c, resp)
}

func authVerifyCode(c *cli.Context) error {
	code := c.Args().First()
	if code == "" {
		return fmt.Errorf("login code required")
	}
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/auth/verify_code", map[string]string{"code": code})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return renderAuth(c, resp)
}

func authVerifyPassword(c *cli.Context) error {
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Post(ctx, "/auth/verify_password", map[string]string{"password": c.String("password")})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	return renderAuth(c, resp)
}

func authLogout(c *cli.Context) error {
	client, err := newClient(c, true)
	if err != nil {
		return err
	}
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := client.Delete(ctx, "/auth/logout", nil)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var res struct {
		Message string `json:"message"`
	}
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	return render(c, res)
}

// renderAuth shows the next login step and the session string to use for
// it. Every step issues a new session string.
func renderAuth(c *cli.Context, resp *http.Response) error {
	var res domain.AuthResult
	if err := connection.ParseResponse(resp, &res); err != nil {
		return err
	}
	if err := render(c, res); err != nil {
		return err
	}
	if ParseGlobalFlags(c).Output == output.FormatTable && res.SessionString != "" {
		fmt.Fprintf(errWriter(c), "\nexport TOKGATE_SESSION='%s'\n", res.SessionString)
	}
	return nil
}
