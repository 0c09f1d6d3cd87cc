package main

import (
	"fmt"

	"blogctl/internal/app"
	"blogctl/internal/blog"
	"blogctl/internal/model"

	"github.com/spf13/cobra"
)

func printComment(c model.Comment, indent string) {
	fmt.Printf("%s%s  %s  %s\n", indent, c.ID, c.Author.Name, c.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Printf("%s  %s\n", indent, c.Content)
}

// loadThread creates and loads the comment thread for a post.
func loadThread(cmd *cobra.Command, a *app.App, postID string) (*blog.CommentThread, error) {
	thread := a.CommentThread(postID)
	if err := thread.Load(cmd.Context()); err != nil {
		return nil, fmt.Errorf("loading comments: %w", err)
	}
	return thread, nil
}

// comments command
var commentsCmd = &cobra.Command{
	Use:   "comments",
	Short: "Read and write post comments",
}

var commentsListCmd = &cobra.Command{
	Use:   "list POST_ID",
	Short: "Show a post's comment thread",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")

		a, err := newApp("ListComments")
		if err != nil {
			return err
		}
		defer a.Close()

		thread, err := loadThread(cmd, a, args[0])
		if err != nil {
			return err
		}

		if thread.Count() == 0 {
			fmt.Println("No comments.")
			return nil
		}
		fmt.Printf("%d comment(s)\n\n", thread.Count())

		if all {
			thread.ShowAll()
		}
		for _, root := range thread.VisibleRoots() {
			printComment(root, "")
			for _, reply := range thread.Replies(root.ID) {
				printComment(reply, "    ")
			}
		}
		if thread.HasMore() {
			hidden := len(thread.Roots()) - len(thread.VisibleRoots())
			fmt.Printf("... %d more comment(s); pass --all to show them\n", hidden)
		}
		return nil
	},
}

var commentsAddCmd = &cobra.Command{
	Use:   "add POST_ID",
	Short: "Comment on a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")

		a, err := newApp("AddComment")
		if err != nil {
			return err
		}
		defer a.Close()

		thread, err := loadThread(cmd, a, args[0])
		if err != nil {
			return err
		}

		comment, err := thread.Add(cmd.Context(), message)
		if err != nil {
			return fmt.Errorf("adding comment: %w", err)
		}

		fmt.Printf("Added comment %s\n", comment.ID)
		return nil
	},
}

var commentsReplyCmd = &cobra.Command{
	Use:   "reply POST_ID COMMENT_ID",
	Short: "Reply to a comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")

		a, err := newApp("ReplyComment")
		if err != nil {
			return err
		}
		defer a.Close()

		thread, err := loadThread(cmd, a, args[0])
		if err != nil {
			return err
		}

		thread.StartReply(args[1])
		thread.SetDraft(message)
		comment, err := thread.SubmitReply(cmd.Context())
		if err != nil {
			return fmt.Errorf("replying: %w", err)
		}

		fmt.Printf("Added reply %s\n", comment.ID)
		return nil
	},
}

var commentsEditCmd = &cobra.Command{
	Use:   "edit POST_ID COMMENT_ID",
	Short: "Edit your comment",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		message, _ := cmd.Flags().GetString("message")

		a, err := newApp("EditComment")
		if err != nil {
			return err
		}
		defer a.Close()

		thread, err := loadThread(cmd, a, args[0])
		if err != nil {
			return err
		}

		thread.StartEdit(args[1])
		thread.SetDraft(message)
		comment, err := thread.SubmitEdit(cmd.Context())
		if err != nil {
			return fmt.Errorf("editing comment: %w", err)
		}

		fmt.Printf("Updated comment %s\n", comment.ID)
		return nil
	},
}

var commentsDeleteCmd = &cobra.Command{
	Use:   "delete POST_ID COMMENT_ID",
	Short: "Delete a comment and its replies",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeleteComment")
		if err != nil {
			return err
		}
		defer a.Close()

		thread, err := loadThread(cmd, a, args[0])
		if err != nil {
			return err
		}

		replies := len(thread.Replies(args[1]))
		prompt := "Delete this comment?"
		if replies > 0 {
			prompt = fmt.Sprintf("Delete this comment and %d direct replies?", replies)
		}
		if !yes && !confirm(prompt) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := thread.Delete(cmd.Context(), args[1]); err != nil {
			return fmt.Errorf("deleting comment: %w", err)
		}

		fmt.Println("Deleted.")
		return nil
	},
}

func init() {
	commentsListCmd.Flags().Bool("all", false, "Show every root comment")

	for _, c := range []*cobra.Command{commentsAddCmd, commentsReplyCmd, commentsEditCmd} {
		c.Flags().StringP("message", "m", "", "Comment text")
		c.MarkFlagRequired("message")
	}
	commentsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	commentsCmd.AddCommand(commentsListCmd)
	commentsCmd.AddCommand(commentsAddCmd)
	commentsCmd.AddCommand(commentsReplyCmd)
	commentsCmd.AddCommand(commentsEditCmd)
	commentsCmd.AddCommand(commentsDeleteCmd)

	rootCmd.AddCommand(commentsCmd)
}
