package cmd

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/DachengChen/querymaster/config"
)

var keyCmd = &cobra.Command{
	Use:   "key",
	Short: "Manage API keys stored in the OS keyring",
}

var keySetCmd = &cobra.Command{
	Use:       "set <provider>",
	Short:     "Store an API key (read from stdin)",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.KeyNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := keyName(args[0])
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Paste the %s API key and press Enter: ", name)
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read key: %w", err)
		}
		secret := strings.TrimSpace(line)
		if secret == "" {
			return fmt.Errorf("empty key")
		}

		ring, err := config.OpenKeyring()
		if err != nil {
			return err
		}
		if err := ring.Set(name, secret); err != nil {
			return fmt.Errorf("store key: %w", err)
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Stored %s key %s", name, config.Mask(secret))
		return nil
	},
}

var keyDeleteCmd = &cobra.Command{
	Use:       "delete <provider>",
	Short:     "Remove a stored API key",
	Args:      cobra.ExactArgs(1),
	ValidArgs: config.KeyNames(),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, err := keyName(args[0])
		if err != nil {
			return err
		}
		ring, err := config.OpenKeyring()
		if err != nil {
			return err
		}
		if err := ring.Delete(name); err != nil {
			return fmt.Errorf("delete key: %w", err)
		}
		pterm.Success.WithWriter(cmd.OutOrStdout()).Printfln("Removed %s key", name)
		return nil
	},
}

func keyName(arg string) (string, error) {
	name := strings.ToLower(strings.TrimSpace(arg))
	if !config.NeedsAPIKey(name) {
		return "", fmt.Errorf("unknown key %q (one of %s)", arg, strings.Join(config.KeyNames(), ", "))
	}
	return name, nil
}

func init() {
	keyCmd.AddCommand(keySetCmd, keyDeleteCmd)
	rootCmd.AddCommand(keyCmd)
}
