package main

import (
	"fmt"
	"strings"

	"blogctl/internal/api"
	"blogctl/internal/blog"
	"blogctl/internal/model"

	"github.com/spf13/cobra"
)

func printPostRow(p model.Post) {
	status := "published"
	if !p.Published {
		status = "draft"
	}
	category := "-"
	if p.Category != nil {
		category = p.Category.Name
	}
	fmt.Printf("%-36s  %-9s  %-20s  %-12s  %s\n",
		p.ID, status, p.Author.Name, category, p.Title)
}

// postListFlags reads the flags shared by the post list commands.
func postListFlags(cmd *cobra.Command) (page int, search string, f blog.Filters) {
	page, _ = cmd.Flags().GetInt("page")
	search, _ = cmd.Flags().GetString("search")
	f.CategoryID, _ = cmd.Flags().GetString("category")
	return page, search, f
}

// sortFlags reads the sort override flags shared by all list commands.
func sortFlags(cmd *cobra.Command) (sortBy, sortOrder string) {
	sortBy, _ = cmd.Flags().GetString("sort")
	sortOrder, _ = cmd.Flags().GetString("order")
	return sortBy, sortOrder
}

// posts command
var postsCmd = &cobra.Command{
	Use:   "posts",
	Short: "Browse and manage posts",
}

var postsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List published posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, search, filters := postListFlags(cmd)
		sortBy, sortOrder := sortFlags(cmd)

		a, err := newApp("ListPosts")
		if err != nil {
			return err
		}
		defer a.Close()

		ctrl := a.PublicPostsController(search, filters)
		return runList(cmd.Context(), ctrl, page, sortBy, sortOrder, printPostRow)
	},
}

var postsMineCmd = &cobra.Command{
	Use:   "mine",
	Short: "List your posts, drafts included",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, search, filters := postListFlags(cmd)
		filters.Status, _ = cmd.Flags().GetString("status")
		sortBy, sortOrder := sortFlags(cmd)

		a, err := newApp("ListMyPosts")
		if err != nil {
			return err
		}
		defer a.Close()

		ctrl := a.MyPostsController(search, filters)
		return runList(cmd.Context(), ctrl, page, sortBy, sortOrder, printPostRow)
	},
}

var postsAdminCmd = &cobra.Command{
	Use:   "admin",
	Short: "List all posts (admin)",
	RunE: func(cmd *cobra.Command, args []string) error {
		page, search, filters := postListFlags(cmd)
		filters.Status, _ = cmd.Flags().GetString("status")
		sortBy, sortOrder := sortFlags(cmd)

		a, err := newApp("ListAdminPosts")
		if err != nil {
			return err
		}
		defer a.Close()

		ctrl := a.AdminPostsController(search, filters)
		return runList(cmd.Context(), ctrl, page, sortBy, sortOrder, printPostRow)
	},
}

var postsGetCmd = &cobra.Command{
	Use:   "get ID",
	Short: "Show a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("GetPost")
		if err != nil {
			return err
		}
		defer a.Close()

		post, err := a.Client().GetPost(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		status := "published"
		if !post.Published {
			status = "draft"
		}
		fmt.Printf("Title:    %s\n", post.Title)
		fmt.Printf("Author:   %s\n", post.Author.Name)
		fmt.Printf("Status:   %s\n", status)
		if post.Category != nil {
			fmt.Printf("Category: %s\n", post.Category.Name)
		}
		if len(post.Tags) > 0 {
			names := make([]string, len(post.Tags))
			for i, t := range post.Tags {
				names[i] = t.Name
			}
			fmt.Printf("Tags:     %s\n", strings.Join(names, ", "))
		}
		fmt.Printf("Created:  %s\n", post.CreatedAt.Format("2006-01-02 15:04:05"))
		fmt.Printf("\n%s\n", post.Content)
		return nil
	},
}

// postInputFromFlags builds the create/update payload from command flags.
func postInputFromFlags(cmd *cobra.Command) api.PostInput {
	in := api.PostInput{}
	in.Title, _ = cmd.Flags().GetString("title")
	in.Content, _ = cmd.Flags().GetString("content")
	in.Published, _ = cmd.Flags().GetBool("published")
	in.ThumbnailURL, _ = cmd.Flags().GetString("thumbnail")
	in.TagIDs, _ = cmd.Flags().GetStringSlice("tag")
	if cat, _ := cmd.Flags().GetString("category"); cat != "" {
		in.CategoryID = &cat
	}
	return in
}

var postsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a post",
	RunE: func(cmd *cobra.Command, args []string) error {
		in := postInputFromFlags(cmd)
		if strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Content) == "" {
			return fmt.Errorf("--title and --content are required")
		}

		a, err := newApp("CreatePost")
		if err != nil {
			return err
		}
		defer a.Close()

		post, err := a.Client().CreatePost(cmd.Context(), in)
		if err != nil {
			return fmt.Errorf("creating post: %w", err)
		}

		fmt.Printf("Created post %s: %s\n", post.ID, post.Title)
		return nil
	},
}

var postsUpdateCmd = &cobra.Command{
	Use:   "update ID",
	Short: "Update a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := postInputFromFlags(cmd)

		a, err := newApp("UpdatePost")
		if err != nil {
			return err
		}
		defer a.Close()

		post, err := a.Client().UpdatePost(cmd.Context(), args[0], in)
		if err != nil {
			return fmt.Errorf("updating post: %w", err)
		}

		fmt.Printf("Updated post %s: %s\n", post.ID, post.Title)
		return nil
	},
}

var postsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeletePost")
		if err != nil {
			return err
		}
		defer a.Close()

		post, err := a.Client().GetPost(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if !yes && !confirm(fmt.Sprintf("Delete post %q?", post.Title)) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.Client().DeletePost(cmd.Context(), post.ID); err != nil {
			return fmt.Errorf("deleting post: %w", err)
		}

		fmt.Printf("Deleted post %s\n", post.ID)
		return nil
	},
}

func addPostListFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("page", "p", 1, "Page number")
	cmd.Flags().StringP("search", "s", "", "Search in title and content")
	cmd.Flags().String("category", "", "Filter by category ID")
	cmd.Flags().String("sort", "", "Sort field (default createdAt)")
	cmd.Flags().String("order", "", "Sort order: asc or desc")
}

func addPostInputFlags(cmd *cobra.Command) {
	cmd.Flags().String("title", "", "Post title")
	cmd.Flags().String("content", "", "Post body")
	cmd.Flags().Bool("published", false, "Publish the post")
	cmd.Flags().String("thumbnail", "", "Thumbnail image URL")
	cmd.Flags().String("category", "", "Category ID")
	cmd.Flags().StringSlice("tag", nil, "Tag ID (repeatable)")
}

func init() {
	addPostListFlags(postsListCmd)
	addPostListFlags(postsMineCmd)
	postsMineCmd.Flags().String("status", "", "Filter by status: published or draft")
	addPostListFlags(postsAdminCmd)
	postsAdminCmd.Flags().String("status", "", "Filter by status: published or draft")

	addPostInputFlags(postsCreateCmd)
	addPostInputFlags(postsUpdateCmd)
	postsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	postsCmd.AddCommand(postsListCmd)
	postsCmd.AddCommand(postsMineCmd)
	postsCmd.AddCommand(postsAdminCmd)
	postsCmd.AddCommand(postsGetCmd)
	postsCmd.AddCommand(postsCreateCmd)
	postsCmd.AddCommand(postsUpdateCmd)
	postsCmd.AddCommand(postsDeleteCmd)

	rootCmd.AddCommand(postsCmd)
}
