package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/jstrand/bt/internal/output"
	"github.com/jstrand/bt/internal/remote"
	"github.com/jstrand/bt/internal/syncconfig"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:     "auth",
	Short:   "Manage sync authentication",
	GroupID: "system",
}

var authLoginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to the sync server",
	RunE: func(cmd *cobra.Command, args []string) error {
		serverURL := syncconfig.GetServerURL()
		client := remote.New(serverURL, "", "")

		fmt.Print("Email: ")
		reader := bufio.NewReader(os.Stdin)
		email, err := reader.ReadString('\n')
		if err != nil {
			return fmt.Errorf("read email: %w", err)
		}
		email = strings.TrimSpace(email)
		if email == "" {
			return fmt.Errorf("email required")
		}

		hostname, _ := os.Hostname()
		resp, err := client.Signup(cmd.Context(), email, hostname)
		if err != nil {
			output.Error("login: %v", err)
			return err
		}

		deviceID, err := syncconfig.GetDeviceID()
		if err != nil {
			return fmt.Errorf("get device id: %w", err)
		}

		creds := &syncconfig.AuthCredentials{
			APIKey:    resp.APIKey,
			UserID:    resp.UserID,
			Email:     resp.Email,
			ServerURL: serverURL,
			DeviceID:  deviceID,
		}
		if err := syncconfig.SaveAuth(creds); err != nil {
			output.Error("save credentials: %v", err)
			return err
		}

		// Pull the account tier so premium users are recognized offline.
		authed := remote.New(serverURL, resp.APIKey, deviceID)
		if me, err := authed.Me(cmd.Context()); err == nil {
			cfg, err := syncconfig.LoadConfig()
			if err == nil && cfg.Premium != me.Premium {
				cfg.Premium = me.Premium
				if err := syncconfig.SaveConfig(cfg); err != nil {
					output.Warning("save config: %v", err)
				}
			}
		}

		output.Success("Logged in as %s", creds.Email)
		return nil
	},
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out from the sync server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := syncconfig.ClearAuth(); err != nil {
			output.Error("logout: %v", err)
			return err
		}
		fmt.Println("Logged out.")
		return nil
	},
}

var authStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show authentication status",
	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := syncconfig.LoadAuth()
		if err != nil {
			output.Error("load auth: %v", err)
			return err
		}

		if creds == nil || creds.APIKey == "" {
			fmt.Println("Not logged in.")
			return nil
		}

		keyPrefix := creds.APIKey
		if len(keyPrefix) > 12 {
			keyPrefix = keyPrefix[:12] + "..."
		}

		fmt.Printf("Email:  %s\n", creds.Email)
		fmt.Printf("Server: %s\n", creds.ServerURL)
		fmt.Printf("Key:    %s\n", keyPrefix)
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authLogoutCmd)
	authCmd.AddCommand(authStatusCmd)
	rootCmd.AddCommand(authCmd)
}
