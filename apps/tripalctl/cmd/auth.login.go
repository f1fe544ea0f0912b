package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/quatton/qtripal/pkg/qsdk"
	sdkerrors "github.com/quatton/qtripal/pkg/qsdk/qerr"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var passwordStdin bool

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Store the password for the configured site and user",
	Long: `Prompt for the Drupal password of --user and save it in the OS keyring.

Examples:
	# interactive prompt
	tripalctl auth login --user admin

	# non-interactive, e.g. in CI
	echo "$PASSWORD" | tripalctl auth login --user admin --password-stdin`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := GetService(cmd)
		if err != nil {
			return err
		}
		cfg := svc.Config
		if cfg.User == "" {
			return sdkerrors.Errorf(sdkerrors.CodeInvalidArgument, "no user configured: pass --user or set TRIPAL_USER")
		}

		password, err := readPassword(cmd, fmt.Sprintf("Password for %s at %s: ", cfg.User, cfg.BaseURL))
		if err != nil {
			return err
		}
		if password == "" {
			return sdkerrors.Errorf(sdkerrors.CodeInvalidArgument, "empty password")
		}

		if err := qsdk.SavePassword(cfg.BaseURL, cfg.User, password); err != nil {
			return fmt.Errorf("saving password to keyring: %w", err)
		}
		svc.Logger.Info("password saved", "site", cfg.BaseURL, "user", cfg.User)
		return nil
	},
}

func readPassword(cmd *cobra.Command, prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if passwordStdin || !term.IsTerminal(fd) {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("reading password: %w", err)
		}
		return strings.TrimRight(line, "\r\n"), nil
	}

	fmt.Fprint(cmd.ErrOrStderr(), prompt)
	raw, err := term.ReadPassword(fd)
	fmt.Fprintln(cmd.ErrOrStderr())
	if err != nil {
		return "", fmt.Errorf("reading password: %w", err)
	}
	return string(raw), nil
}

func init() {
	loginCmd.Flags().BoolVar(&passwordStdin, "password-stdin", false, "Read the password from stdin")
	authCmd.AddCommand(loginCmd)
}
