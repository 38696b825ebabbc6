package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wrale/wrale-proof/internal/wproofctl/config"
	"github.com/wrale/wrale-proof/internal/wproofctl/util"
)

func newConfigCmd(o *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage CLI contexts",
		Long: `A context names a wproofd server. Commands talk to the current context
unless --context, --server or WPROOF_API_URL say otherwise.`,
	}
	cmd.AddCommand(
		newConfigGetContextCmd(o),
		newConfigSetContextCmd(o),
		newConfigDeleteContextCmd(o),
		newConfigUseContextCmd(o),
		newConfigViewCmd(o),
	)
	return cmd
}

// sortedContexts returns the contexts ordered by name
func sortedContexts(cfg *config.Config) []*config.Context {
	out := make([]*config.Context, 0, len(cfg.Contexts))
	for _, c := range cfg.Contexts {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *config.Context) int { return strings.Compare(a.Name, b.Name) })
	return out
}

func newConfigGetContextCmd(o *options) *cobra.Command {
	return &cobra.Command{
		Use:   "get-context [name]",
		Short: "List contexts or show one",
		Example: `  wproofctl config get-context
  wproofctl config get-context production`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if len(args) == 1 {
				c, err := o.cfg.Lookup(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "Name: %s\nServer: %s\nInsecure Skip Verify: %v\n",
					c.Name, c.Server, c.InsecureSkipVerify)
				return nil
			}

			tw := util.NewTabWriter(out)
			fmt.Fprintln(tw, "CURRENT\tNAME\tSERVER")
			for _, c := range sortedContexts(o.cfg) {
				mark := ""
				if c.Name == o.cfg.CurrentContext {
					mark = "*"
				}
				fmt.Fprintf(tw, "%s\t%s\t%s\n", mark, c.Name, c.Server)
			}
			return tw.Flush()
		},
	}
}

func newConfigSetContextCmd(o *options) *cobra.Command {
	c := &config.Context{}

	cmd := &cobra.Command{
		Use:     "set-context NAME",
		Short:   "Create or update a context",
		Example: `  wproofctl config set-context dev --server=http://localhost:8080`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			o.cfg.Set(args[0], c)
			if err := o.cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Context %q updated\n", args[0])
			return nil
		},
	}

	cmd.Flags().StringVar(&c.Server, "server", "", "Server URL (required)")
	cmd.Flags().BoolVar(&c.InsecureSkipVerify, "insecure-skip-tls", false, "Skip TLS certificate verification")
	_ = cmd.MarkFlagRequired("server")
	return cmd
}

// contextMutation builds a NAME command that changes the configuration and
// saves it
func contextMutation(o *options, use, short, done string, apply func(*config.Config, string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use + " NAME",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := apply(o.cfg, args[0]); err != nil {
				return err
			}
			if err := o.cfg.Save(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), done+"\n", args[0])
			return nil
		},
	}
}

func newConfigDeleteContextCmd(o *options) *cobra.Command {
	return contextMutation(o, "delete-context", "Delete a context", "Context %q deleted", (*config.Config).Delete)
}

func newConfigUseContextCmd(o *options) *cobra.Command {
	return contextMutation(o, "use-context", "Switch the current context", "Switched to context %q", (*config.Config).Use)
}

func newConfigViewCmd(o *options) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "view",
		Short: "Display the configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			if strings.EqualFold(output, "yaml") {
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(o.cfg)
			}

			fmt.Fprintf(out, "Config File: %s\nCurrent Context: %s\n\nContexts:\n", o.cfg.Path(), o.cfg.CurrentContext)
			for _, c := range sortedContexts(o.cfg) {
				fmt.Fprintf(out, "- %s:\n    Server: %s\n    InsecureSkipVerify: %v\n", c.Name, c.Server, c.InsecureSkipVerify)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "text", "Output format (text, yaml)")
	return cmd
}
