package main

import (
	"bufio"
	"fmt"
	"strings"

	"github.com/hupe1980/semkernel/config"
	"github.com/spf13/cobra"
)

func credentialsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "credentials",
		Short: "Manage API keys in the OS keyring",
		Long: `Stores API keys in the OS keyring. Keys from the keyring are used when
the matching environment variable is empty.

Keys: azure_openai_api_key, openai_api_key, anthropic_api_key`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "set <key> [value]",
		Short: "Store a key (reads the value from stdin when omitted)",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.ParseKey(args[0])
			if err != nil {
				return err
			}

			var value string
			if len(args) == 2 {
				value = args[1]
			} else {
				fmt.Fprintf(cmd.ErrOrStderr(), "Enter %s: ", key)
				line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read %s: %w", key, err)
				}
				value = strings.TrimSpace(line)
			}
			if value == "" {
				return fmt.Errorf("empty value for %s", key)
			}

			if err := config.SetSecret(key, value); err != nil {
				return fmt.Errorf("store %s: %w", key, err)
			}
			a.logger.Debug("credentials.stored", "key", string(key))
			fmt.Fprintf(cmd.OutOrStdout(), "Stored %s\n", key)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <key>",
		Short: "Remove a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.ParseKey(args[0])
			if err != nil {
				return err
			}
			if err := config.DeleteSecret(key); err != nil {
				return fmt.Errorf("delete %s: %w", key, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", key)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show which keys are stored",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			configured := config.ListConfigured()
			for _, key := range config.Keys {
				status := "not set"
				if configured[key] {
					status = "set"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-22s %s\n", key, status)
			}
			return nil
		},
	})

	return cmd
}
