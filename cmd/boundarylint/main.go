package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"caseflow/boundary"
)

var errBlocked = errors.New("layer violations found")

func main() {
	if err := newRootCmd(os.Stdout).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out io.Writer) *cobra.Command {
	var root string

	rootCmd := &cobra.Command{
		Use:          "boundarylint",
		Short:        "Check package layering and print API contracts",
		SilenceUsage: true,
	}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.PersistentFlags().StringVar(&root, "root", ".", "module root directory")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "check",
			Short: "Check every Go file under the module root",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				rep, err := boundary.CheckTree(root)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n(%d files checked)\n", rep, rep.Files)
				if rep.Blocked() {
					return errBlocked
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "validate <file> [imports...]",
			Short: "Validate one file and the imports it declares",
			Args:  cobra.MinimumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				rep, err := boundary.CheckFile(root, args[0], args[1:])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), rep)
				if rep.Blocked() {
					return errBlocked
				}
				return nil
			},
		},
		&cobra.Command{
			Use:   "rules <layer>",
			Short: "Print what a layer may and may not import",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				text, err := boundary.Describe(args[0])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), text)
				return nil
			},
		},
		&cobra.Command{
			Use:   "contract <domain>",
			Short: "Print the API contract for a domain",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				c, err := boundary.LoadContract(root, args[0])
				if err != nil {
					return err
				}
				w := cmd.OutOrStdout()
				fmt.Fprintf(w, "# %s contract: %s %s\n", c.Domain, c.Title, c.Version)
				for _, p := range c.Paths {
					fmt.Fprintf(w, "#   %s\n", p)
				}
				fmt.Fprintln(w)
				fmt.Fprint(w, c.Raw)
				return nil
			},
		},
	)
	return rootCmd
}
