/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Helpers for the credential document",
}

var hashCost int

var usersHashPasswordCmd = &cobra.Command{
	Use:   "hash-password [password]",
	Short: "Print a bcrypt hash for use in the users file",
	Long: `Prints a bcrypt hash of the given password. Without an argument the
password is read from the first line of stdin. The hash can replace a
plaintext "password" entry in USERS_FILE.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var password string
		if len(args) == 1 {
			password = args[0]
		} else {
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimRight(line, "\r\n")
		}
		if password == "" {
			return errors.New("password must not be empty")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(hash))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(usersCmd)
	usersCmd.AddCommand(usersHashPasswordCmd)
	usersHashPasswordCmd.Flags().IntVar(&hashCost, "cost", bcrypt.DefaultCost, "bcrypt cost")
}
