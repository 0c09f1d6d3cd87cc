package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Sign in and store the session",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Login")
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := readSecret("Password: ")
		if err != nil {
			return err
		}

		user, err := a.Login(cmd.Context(), args[0], password)
		if err != nil {
			return fmt.Errorf("login failed: %w", err)
		}

		fmt.Printf("Signed in as %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var registerCmd = &cobra.Command{
	Use:   "register EMAIL",
	Short: "Create an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")

		a, err := newApp("Register")
		if err != nil {
			return err
		}
		defer a.Close()

		password, err := readSecret("Password: ")
		if err != nil {
			return err
		}
		confirmPw, err := readSecret("Confirm password: ")
		if err != nil {
			return err
		}
		if password != confirmPw {
			return fmt.Errorf("passwords do not match")
		}
		if len(password) < 6 {
			return fmt.Errorf("password must be at least 6 characters")
		}

		user, signedIn, err := a.Register(cmd.Context(), name, args[0], password)
		if err != nil {
			return fmt.Errorf("registration failed: %w", err)
		}

		if user != nil {
			fmt.Printf("Account created for %s <%s>\n", user.Name, user.Email)
		} else {
			fmt.Println("Account created.")
		}
		if signedIn {
			fmt.Println("You are now signed in.")
		} else {
			fmt.Println("Run `blogctl login` to sign in.")
		}
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Sign out and clear the stored session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Logout")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Logout(cmd.Context()); err != nil {
			return fmt.Errorf("logout failed: %w", err)
		}

		fmt.Println("Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("Whoami")
		if err != nil {
			return err
		}
		defer a.Close()

		sess := a.Sessions().Current()
		if !sess.Authenticated {
			fmt.Println("Not signed in.")
			return nil
		}
		if sess.User == nil {
			fmt.Println("Signed in (stored profile unreadable; token retained).")
			return nil
		}

		fmt.Printf("User:  %s <%s>\n", sess.User.Name, sess.User.Email)
		fmt.Printf("Role:  %s\n", sess.User.Role)
		fmt.Printf("ID:    %s\n", sess.User.ID)
		return nil
	},
}

var passwdCmd = &cobra.Command{
	Use:   "passwd",
	Short: "Change your password",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ChangePassword")
		if err != nil {
			return err
		}
		defer a.Close()

		current, err := readSecret("Current password: ")
		if err != nil {
			return err
		}
		next, err := readSecret("New password: ")
		if err != nil {
			return err
		}
		confirmPw, err := readSecret("Confirm new password: ")
		if err != nil {
			return err
		}

		if err := a.ChangePassword(cmd.Context(), current, next, confirmPw); err != nil {
			return fmt.Errorf("changing password: %w", err)
		}

		fmt.Println("Password changed.")
		return nil
	},
}

func init() {
	registerCmd.Flags().String("name", "", "Display name for the new account")
	registerCmd.MarkFlagRequired("name")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(passwdCmd)
}
