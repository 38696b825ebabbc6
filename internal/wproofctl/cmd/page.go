package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPageCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "page",
		Short: "Manage page group assignments",
	}

	cmd.AddCommand(
		newPageGetGroupCmd(o),
		newPageSetGroupCmd(o),
	)

	return cmd
}

func newPageGetGroupCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get-group PAGE",
		Short: "Show the audience group of a page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := o.getClient()
			if err != nil {
				return err
			}

			pg, err := c.GetPageGroup(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("error getting page group: %w", err)
			}

			if pg.Group == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Page %q has no group\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Page %q shows group %s\n", args[0], pg.Group)
			return nil
		},
	}
}

func newPageSetGroupCmd(o *options) *cobra.Command {
	var clear bool

	cmd := &cobra.Command{
		Use:   "set-group PAGE [GROUP]",
		Short: "Assign a page to an audience group",
		Example: `  # Show group 2 on the pricing page
  wproofctl page set-group pricing 2

  # Stop showing overlays on the about page
  wproofctl page set-group about --clear`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			group := ""
			switch {
			case clear && len(args) == 2:
				return fmt.Errorf("--clear takes no group")
			case !clear && len(args) == 1:
				return fmt.Errorf("a group is required unless --clear is given")
			case len(args) == 2:
				group = args[1]
			}

			c, err := o.getClient()
			if err != nil {
				return err
			}

			pg, err := c.SetPageGroup(cmd.Context(), args[0], group)
			if err != nil {
				return fmt.Errorf("error setting page group: %w", err)
			}

			if pg.Group == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Page %q cleared\n", args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Page %q assigned to group %s\n", args[0], pg.Group)
			return nil
		},
	}

	cmd.Flags().BoolVar(&clear, "clear", false, "Remove the page's group")

	return cmd
}
