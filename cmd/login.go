package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"parking-console/internal/auth"
	"parking-console/internal/config"
)

// Variables to hold flag values
var (
	loginEmail    string
	loginPassword string
	loginHost     string
	hashInput     string
)

// loginCmd represents the login command
var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Open an operator session",
	Long: `Checks the operator credentials against the configured bcrypt hash and
saves a signed session token locally for future commands.

Example:
  parking-console login --email ops@example.com --password secret --host http://10.0.0.5:5000`,
	Run: func(cmd *cobra.Command, args []string) {
		if loginHost != "" {
			// Save the Base URL so subsequent commands know where to connect.
			if err := config.Set(config.KeyBaseURL, strings.TrimRight(loginHost, "/")); err != nil {
				fmt.Printf("Failed to save configuration file: %v\n", err)
				os.Exit(1)
			}
		}

		s := config.Load()
		session := newSession(s)

		fmt.Printf("Signing in as '%s'...\n", loginEmail)

		if _, err := session.Login(loginEmail, loginPassword); err != nil {
			if errors.Is(err, auth.ErrNoSecret) {
				fmt.Printf("Error: %v (set %s or PARKING_SESSION_SECRET)\n", err, config.KeySessionSecret)
				os.Exit(1)
			}
			fmt.Printf("Login failed: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Session saved. Backend: %s\n", s.BaseURL)
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Close the operator session",
	Run: func(cmd *cobra.Command, args []string) {
		session := newSession(config.Load())
		exitOnError("clearing session", session.Logout())
		fmt.Println("Logged out.")
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the active operator session",
	Run: func(cmd *cobra.Command, args []string) {
		session := newSession(config.Load())
		if err := session.Init(); err != nil {
			fmt.Printf("Session expired or invalid: %v\n", err)
			os.Exit(1)
		}
		if !session.Authenticated() {
			fmt.Println("Not logged in.")
			return
		}
		fmt.Printf("Logged in as %s\n", session.Subject())
	},
}

// hashPasswordCmd produces the value for operator.password_hash.
var hashPasswordCmd = &cobra.Command{
	Use:   "hash-password",
	Short: "Print a bcrypt hash for the operator password setting",
	Run: func(cmd *cobra.Command, args []string) {
		hash, err := auth.HashPassword(hashInput)
		exitOnError("hashing password", err)
		fmt.Println(hash)
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(hashPasswordCmd)

	// We use local flags because these are specific only to the login action.
	loginCmd.Flags().StringVarP(&loginEmail, "email", "e", "", "Operator email")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Operator password")
	loginCmd.Flags().StringVar(&loginHost, "host", "", "Backend base URL to save (e.g. http://localhost:5000)")
	_ = loginCmd.MarkFlagRequired("email")
	_ = loginCmd.MarkFlagRequired("password")

	hashPasswordCmd.Flags().StringVarP(&hashInput, "password", "p", "", "Password to hash")
	_ = hashPasswordCmd.MarkFlagRequired("password")
}
