package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/existflow/ironmeet/internal/client"
	"github.com/spf13/cobra"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Manage your account on an ironmeet server, used with --remote.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Login to the server",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Logout from the server",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account on the server",
	RunE:  runRegister,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the server and logged-in user",
	RunE:  runAuthStatus,
}

var authServer string

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(statusCmd)

	authCmd.PersistentFlags().StringVar(&authServer, "server", "", "Server URL (saved for later commands)")
}

// authClient returns the API client, switching server when --server is set
func authClient() (*client.Client, error) {
	c, err := newClient()
	if err != nil {
		return nil, err
	}
	if authServer != "" {
		if err := c.SetServer(authServer); err != nil {
			return nil, fmt.Errorf("failed to save server: %w", err)
		}
	}
	return c, nil
}

func runLogin(cmd *cobra.Command, args []string) error {
	c, err := authClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}

	fmt.Println("🔄 Logging in...")
	if err := c.Login(context.Background(), username, password); err != nil {
		return err
	}

	fmt.Println("✅ Logged in successfully!")
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	c, err := authClient()
	if err != nil {
		return err
	}

	if !c.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	fmt.Println("🔄 Logging out...")
	if err := c.Logout(context.Background()); err != nil {
		// The local session is gone either way
		fmt.Printf("⚠️  Server logout failed: %v\n", err)
	}

	fmt.Println("✅ Logged out successfully.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	c, err := authClient()
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, _ := reader.ReadString('\n')
	username = strings.TrimSpace(username)

	fmt.Print("Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)

	password, err := readPassword("Password: ")
	if err != nil {
		return err
	}
	confirmPw, err := readPassword("Confirm Password: ")
	if err != nil {
		return err
	}

	if password != confirmPw {
		return fmt.Errorf("passwords do not match")
	}

	fmt.Println("🔄 Creating account...")
	if err := c.Register(context.Background(), username, email, password); err != nil {
		return err
	}

	fmt.Println("✅ Account created and logged in!")
	return nil
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	c, err := authClient()
	if err != nil {
		return err
	}

	server, _ := c.Status()
	fmt.Printf("Server: %s\n", server)
	if !c.IsLoggedIn() {
		fmt.Println("Not logged in.")
		return nil
	}

	me, err := c.Me(context.Background())
	if err != nil {
		return fmt.Errorf("session check failed: %w", err)
	}
	fmt.Printf("Logged in as %s <%s>\n", me.Username, me.Email)
	return nil
}
