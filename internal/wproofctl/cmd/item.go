package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/wrale/wrale-proof/api/types/v1alpha1"
	"github.com/wrale/wrale-proof/internal/wproofctl/util"
)

func newItemCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage content items",
		Long: `Content items are the snippets shown as overlays: reviews, quick
nuggets, FAQ answers and statistics. Each item is shown to the audience
groups it lists.`,
	}

	cmd.AddCommand(
		newItemAddCmd(o),
		newItemListCmd(o),
		newItemRemoveCmd(o),
	)

	return cmd
}

func newItemAddCmd(o *options) *cobra.Command {
	var (
		item     v1alpha1.ContentItem
		inactive bool
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a content item",
		Example: `  # Add a review shown to group 2
  wproofctl item add --type=review --content="Support answered in minutes" --author="Dana" --group=2

  # Add a linked statistic with a call to action
  wproofctl item add --type=stat --content="10k teams" --url=https://example.com/customers --cta="See stories" --group=0`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			item.Active = !inactive

			c, err := o.getClient()
			if err != nil {
				return err
			}

			created, err := c.AddItem(cmd.Context(), &item)
			if err != nil {
				return fmt.Errorf("error adding item: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Item %d added\n", created.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&item.Type, "type", "", "Item type: review, nugget, faq or stat (required)")
	cmd.Flags().StringVar(&item.Content, "content", "", "Rich text body (required)")
	cmd.Flags().StringVar(&item.Author, "author", "", "Attribution")
	cmd.Flags().StringVar(&item.URL, "url", "", "Link followed when the overlay is clicked")
	cmd.Flags().StringVar(&item.Target, "target", "", "new-window (default) or same-window")
	cmd.Flags().StringVar(&item.CTA, "cta", "", "Call to action label, at most 20 characters")
	cmd.Flags().StringArrayVar(&item.Groups, "group", nil, "Audience group id, repeatable")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Store the item without showing it")

	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("content")

	return cmd
}

func newItemListCmd(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List content items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.getClient()
			if err != nil {
				return err
			}

			s, err := c.GetSettings(cmd.Context())
			if err != nil {
				return fmt.Errorf("error listing items: %w", err)
			}

			switch output {
			case "json":
				return util.PrintJSON(cmd.OutOrStdout(), s.Items)
			default:
				tw := util.NewTabWriter(cmd.OutOrStdout())
				defer tw.Flush()

				fmt.Fprintf(tw, "ID\tTYPE\tACTIVE\tGROUPS\tURL\tCONTENT\n")
				for _, item := range s.Items {
					fmt.Fprintf(tw, "%d\t%s\t%v\t%s\t%s\t%s\n",
						item.ID,
						item.Type,
						item.Active,
						util.FormatGroups(item.Groups),
						item.URL,
						util.Excerpt(item.Content, 40))
				}
				return nil
			}
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	return cmd
}

func newItemRemoveCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "remove ID",
		Short: "Remove a content item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}

			c, err := o.getClient()
			if err != nil {
				return err
			}
			if err := c.RemoveItem(cmd.Context(), id); err != nil {
				return fmt.Errorf("error removing item: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Item %d removed\n", id)
			return nil
		},
	}
}
