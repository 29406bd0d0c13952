package commands

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func (a *App) newKeysCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "keys",
		Short: "Manage provider API keys",
		Long:  "Store, list, and delete API keys in the encrypted keystore.",
	}

	cmd.AddCommand(a.newKeysSetCommand())
	cmd.AddCommand(a.newKeysListCommand())
	cmd.AddCommand(a.newKeysDeleteCommand())

	return cmd
}

func (a *App) newKeysSetCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := args[0]

			value, err := a.readSecret(fmt.Sprintf("Enter API key for %s: ", name))
			if err != nil {
				return err
			}
			if value == "" {
				return fmt.Errorf("empty API key")
			}

			ks, err := a.newKeystore()
			if err != nil {
				return err
			}
			if err := ks.Set(name, value); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Stored key for %s\n", name)
			return nil
		},
	}
}

func (a *App) newKeysListCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored key names",
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.newKeystore()
			if err != nil {
				return err
			}

			names, err := ks.List()
			if err != nil {
				return err
			}

			if len(names) == 0 {
				fmt.Fprintln(a.stdout, "No keys stored.")
				return nil
			}
			for _, name := range names {
				fmt.Fprintln(a.stdout, name)
			}
			return nil
		},
	}
}

func (a *App) newKeysDeleteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <provider>",
		Short: "Delete a stored API key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ks, err := a.newKeystore()
			if err != nil {
				return err
			}
			if err := ks.Delete(args[0]); err != nil {
				return err
			}

			fmt.Fprintf(a.stdout, "Deleted key for %s\n", args[0])
			return nil
		},
	}
}

// readSecret reads a secret from stdin, without echo when stdin is a
// terminal. Piped input falls back to a plain line read so the command
// stays scriptable.
func (a *App) readSecret(prompt string) (string, error) {
	if f, ok := a.stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(a.stderr, prompt)
		raw, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(a.stderr)
		if err != nil {
			return "", err
		}
		return strings.TrimSpace(string(raw)), nil
	}

	reader := bufio.NewReader(a.stdin)
	line, err := reader.ReadString('\n')
	if err != nil && line == "" {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
