package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage the login session",
}

var authLoginCmd = &cobra.Command{
	Use:   "login <identifier>",
	Short: "Log in with username/email/phone and password",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthLogin,
}

var authRegisterCmd = &cobra.Command{
	Use:   "register <username>",
	Short: "Register a new account and log in",
	Args:  cobra.ExactArgs(1),
	RunE:  runAuthRegister,
}

var authLogoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out and clear the local session",
	Args:  cobra.NoArgs,
	RunE:  runAuthLogout,
}

var authMeCmd = &cobra.Command{
	Use:   "me",
	Short: "Show the current logged-in user",
	Args:  cobra.NoArgs,
	RunE:  runAuthMe,
}

var (
	authPassword    string
	authConfirm     string
	authDisplayName string
)

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authLoginCmd, authRegisterCmd, authLogoutCmd, authMeCmd)

	authLoginCmd.Flags().StringVarP(&authPassword, "password", "p", "", "account password")
	_ = authLoginCmd.MarkFlagRequired("password")

	authRegisterCmd.Flags().StringVarP(&authPassword, "password", "p", "", "account password (at least 6 characters)")
	authRegisterCmd.Flags().StringVar(&authConfirm, "confirm", "", "repeat the password to confirm")
	authRegisterCmd.Flags().StringVar(&authDisplayName, "display-name", "", "display name (defaults to username)")
	_ = authRegisterCmd.MarkFlagRequired("password")
}

func runAuthLogin(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	user, err := a.session.Login(cmd.Context(), args[0], authPassword)
	if err != nil {
		return err
	}

	fmt.Printf("Logged in as %s\n", user.Username)
	return printJSON(user)
}

func runAuthRegister(cmd *cobra.Command, args []string) error {
	if authConfirm != "" && authConfirm != authPassword {
		return errors.New("两次输入的密码不一致")
	}

	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	user, err := a.session.Register(cmd.Context(), args[0], authPassword, authDisplayName)
	if err != nil {
		return err
	}

	fmt.Printf("Registered and logged in as %s\n", user.Username)
	return printJSON(user)
}

func runAuthLogout(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	if err := a.session.Logout(cmd.Context()); err != nil {
		return err
	}
	fmt.Println("Logged out")
	return nil
}

func runAuthMe(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context())
	if err != nil {
		return err
	}

	user := a.session.CurrentUser()
	if user == nil {
		fmt.Println("Not logged in")
		return nil
	}
	return printJSON(user)
}
