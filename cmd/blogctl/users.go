package main

import (
	"fmt"

	"blogctl/internal/api"
	"blogctl/internal/blog"
	"blogctl/internal/model"

	"github.com/spf13/cobra"
)

// users command (admin)
var usersCmd = &cobra.Command{
	Use:   "users",
	Short: "Manage user accounts (admin)",
}

var usersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, _ := cmd.Flags().GetInt("page")
		search, _ := cmd.Flags().GetString("search")

		var f blog.Filters
		f.Role, _ = cmd.Flags().GetString("role")
		f.HasPosts, _ = cmd.Flags().GetString("has-posts")
		f.CreatedFrom, _ = cmd.Flags().GetString("created-from")
		f.CreatedTo, _ = cmd.Flags().GetString("created-to")
		sortBy, sortOrder := sortFlags(cmd)

		a, err := newApp("ListUsers")
		if err != nil {
			return err
		}
		defer a.Close()

		ctrl := a.UsersController(search, f)
		return runList(cmd.Context(), ctrl, page, sortBy, sortOrder, func(u model.User) {
			fmt.Printf("%-36s  %-6s  %4d posts  %-25s  %s\n",
				u.ID, u.Role, u.PostsCount, u.Email, u.Name)
		})
	},
}

var usersGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetUser")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Client().GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Name:    %s\n", user.Name)
		fmt.Printf("Email:   %s\n", user.Email)
		fmt.Printf("Role:    %s\n", user.Role)
		fmt.Printf("ID:      %s\n", user.ID)
		if !user.CreatedAt.IsZero() {
			fmt.Printf("Joined:  %s\n", user.CreatedAt.Format("2006-01-02"))
		}
		return nil
	},
}

var usersUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var in api.UserInput
		in.Name, _ = cmd.Flags().GetString("name")
		in.Email, _ = cmd.Flags().GetString("email")
		in.Role, _ = cmd.Flags().GetString("role")
		if in.Role != "" && in.Role != model.RoleUser && in.Role != model.RoleAdmin {
			return fmt.Errorf("role must be %s or %s", model.RoleUser, model.RoleAdmin)
		}

		a, err := newApp("UpdateUser")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Client().UpdateUser(cmd.Context(), args[0], in)
		if err != nil {
			return fmt.Errorf("updating user: %w", err)
		}

		fmt.Printf("Updated user %s <%s>\n", user.Name, user.Email)
		return nil
	},
}

var usersDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeleteUser")
		if err != nil {
			return err
		}
		defer a.Close()

		user, err := a.Client().GetUser(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !yes && !confirm(fmt.Sprintf("Delete user %s <%s>?", user.Name, user.Email)) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.Client().DeleteUser(cmd.Context(), user.ID); err != nil {
			return fmt.Errorf("deleting user: %w", err)
		}

		fmt.Printf("Deleted user %s\n", user.ID)
		return nil
	},
}

func init() {
	usersListCmd.Flags().IntP("page", "p", 1, "Page number")
	usersListCmd.Flags().StringP("search", "s", "", "Search in name and email")
	usersListCmd.Flags().String("role", "", "Filter by role: USER or ADMIN")
	usersListCmd.Flags().String("has-posts", "", "Filter by authorship: yes or no")
	usersListCmd.Flags().String("created-from", "", "Earliest join date (YYYY-MM-DD)")
	usersListCmd.Flags().String("created-to", "", "Latest join date (YYYY-MM-DD)")
	usersListCmd.Flags().String("sort", "", "Sort field (default createdAt)")
	usersListCmd.Flags().String("order", "", "Sort order: asc or desc")

	usersUpdateCmd.Flags().String("name", "", "New display name")
	usersUpdateCmd.Flags().String("email", "", "New email")
	usersUpdateCmd.Flags().String("role", "", "New role: USER or ADMIN")

	usersDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	usersCmd.AddCommand(usersListCmd)
	usersCmd.AddCommand(usersGetCmd)
	usersCmd.AddCommand(usersUpdateCmd)
	usersCmd.AddCommand(usersDeleteCmd)

	rootCmd.AddCommand(usersCmd)
}
