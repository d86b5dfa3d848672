package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"limeal.fr/mcengine/pkg/game/catalog"
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List versions available in the catalog, newest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEngine()
		defer e.Close()

		cat, err := e.catalog.FetchCatalog(cmd.Context())
		if err != nil {
			return err
		}

		types := []string{"release"}
		if v.GetBool("versions.snapshots") {
			types = append(types, "snapshot")
		}
		if v.GetBool("versions.all") {
			types = nil
		}

		out := cmd.OutOrStdout()
		for _, id := range catalog.SortedIDs(cat, types...) {
			switch id {
			case cat.Latest.Release:
				fmt.Fprintf(out, "%s (latest release)\n", id)
			case cat.Latest.Snapshot:
				fmt.Fprintf(out, "%s (latest snapshot)\n", id)
			default:
				fmt.Fprintln(out, id)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionsCmd)
	versionsCmd.Flags().BoolP("snapshots", "s", false, "Include snapshots")
	_ = v.BindPFlag("versions.snapshots", versionsCmd.Flags().Lookup("snapshots"))
	versionsCmd.Flags().BoolP("all", "a", false, "Include every version type (old_beta, old_alpha)")
	_ = v.BindPFlag("versions.all", versionsCmd.Flags().Lookup("all"))
}
