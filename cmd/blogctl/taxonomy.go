package main

import (
	"fmt"

	"blogctl/internal/model"

	"github.com/spf13/cobra"
)

// categories command
var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "Manage categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListCategories")
		if err != nil {
			return err
		}
		defer a.Close()

		cats, err := a.Client().ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		if len(cats) == 0 {
			fmt.Println("No categories.")
			return nil
		}
		for _, c := range cats {
			fmt.Printf("%-36s  %4d posts  %s\n", c.ID, model.PostCountOf(c.Count), c.Name)
		}
		return nil
	},
}

var categoriesCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CreateCategory")
		if err != nil {
			return err
		}
		defer a.Close()

		cat, err := a.Client().CreateCategory(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("creating category: %w", err)
		}

		fmt.Printf("Created category %s: %s\n", cat.ID, cat.Name)
		return nil
	},
}

var categoriesUpdateCmd = &cobra.Command{
	Use:   "update ID NAME",
	Short: "Rename a category",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UpdateCategory")
		if err != nil {
			return err
		}
		defer a.Close()

		cat, err := a.Client().UpdateCategory(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("updating category: %w", err)
		}

		fmt.Printf("Renamed category %s to %s\n", cat.ID, cat.Name)
		return nil
	},
}

var categoriesDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeleteCategory")
		if err != nil {
			return err
		}
		defer a.Close()

		// Fetch the list for the _count relation; deletion is refused
		// while posts still reference the category.
		cats, err := a.Client().ListCategories(cmd.Context())
		if err != nil {
			return err
		}
		var target *model.Category
		for i := range cats {
			if cats[i].ID == args[0] {
				target = &cats[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("category %s not found", args[0])
		}

		if !yes && !confirm(fmt.Sprintf("Delete category %q?", target.Name)) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.DeleteCategory(cmd.Context(), *target); err != nil {
			return err
		}

		fmt.Printf("Deleted category %s\n", target.ID)
		return nil
	},
}

// tags command
var tagsCmd = &cobra.Command{
	Use:   "tags",
	Short: "Manage tags",
}

var tagsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tags",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("ListTags")
		if err != nil {
			return err
		}
		defer a.Close()

		tags, err := a.Client().ListTags(cmd.Context())
		if err != nil {
			return err
		}
		if len(tags) == 0 {
			fmt.Println("No tags.")
			return nil
		}
		for _, t := range tags {
			fmt.Printf("%-36s  %4d posts  %s\n", t.ID, model.PostCountOf(t.Count), t.Name)
		}
		return nil
	},
}

var tagsCreateCmd = &cobra.Command{
	Use:   "create NAME",
	Short: "Create a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("CreateTag")
		if err != nil {
			return err
		}
		defer a.Close()

		tag, err := a.Client().CreateTag(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("creating tag: %w", err)
		}

		fmt.Printf("Created tag %s: %s\n", tag.ID, tag.Name)
		return nil
	},
}

var tagsUpdateCmd = &cobra.Command{
	Use:   "update ID NAME",
	Short: "Rename a tag",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp("UpdateTag")
		if err != nil {
			return err
		}
		defer a.Close()

		tag, err := a.Client().UpdateTag(cmd.Context(), args[0], args[1])
		if err != nil {
			return fmt.Errorf("updating tag: %w", err)
		}

		fmt.Printf("Renamed tag %s to %s\n", tag.ID, tag.Name)
		return nil
	},
}

var tagsDeleteCmd = &cobra.Command{
	Use:   "delete ID",
	Short: "Delete a tag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")

		a, err := newApp("DeleteTag")
		if err != nil {
			return err
		}
		defer a.Close()

		tags, err := a.Client().ListTags(cmd.Context())
		if err != nil {
			return err
		}
		var target *model.Tag
		for i := range tags {
			if tags[i].ID == args[0] {
				target = &tags[i]
				break
			}
		}
		if target == nil {
			return fmt.Errorf("tag %s not found", args[0])
		}

		if !yes && !confirm(fmt.Sprintf("Delete tag %q?", target.Name)) {
			fmt.Println("Aborted.")
			return nil
		}

		if err := a.DeleteTag(cmd.Context(), *target); err != nil {
			return err
		}

		fmt.Printf("Deleted tag %s\n", target.ID)
		return nil
	},
}

func init() {
	categoriesDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")
	tagsDeleteCmd.Flags().BoolP("yes", "y", false, "Skip confirmation")

	categoriesCmd.AddCommand(categoriesListCmd)
	categoriesCmd.AddCommand(categoriesCreateCmd)
	categoriesCmd.AddCommand(categoriesUpdateCmd)
	categoriesCmd.AddCommand(categoriesDeleteCmd)

	tagsCmd.AddCommand(tagsListCmd)
	tagsCmd.AddCommand(tagsCreateCmd)
	tagsCmd.AddCommand(tagsUpdateCmd)
	tagsCmd.AddCommand(tagsDeleteCmd)

	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(tagsCmd)
}
