package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"limeal.fr/mcengine/pkg/game/shared"
	"limeal.fr/mcengine/pkg/utils"
)

var installCmd = &cobra.Command{
	Use:   "install <version> [instance]",
	Short: "Install a version into an instance directory",
	Long: `Install a version into an instance directory.

Arguments:
  <version>    The version id to install (e.g. 1.12.2, 1.20.4).
  [instance]   An instance name under instances_dir, or a path. Defaults to the version id.

With --profile, a loader profile (a version document with inheritsFrom, e.g.
from fabric) is imported first and installed together with its parent version.
<version> is then omitted:

  mcengine install --profile https://meta.fabricmc.net/v2/versions/loader/1.20.4/0.15.0/profile/json fabric

Files already present with the right hash are not downloaded again, so
running install on an existing instance repairs it.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if v.GetString("install.profile") != "" {
			return cobra.MaximumNArgs(1)(cmd, args)
		}
		return cobra.RangeArgs(1, 2)(cmd, args)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		e := newEngine()
		defer e.Close()

		var onProgress shared.ProgressCallback
		var bars *utils.ProgressBars
		if !v.GetBool("install.quiet") {
			bars = utils.NewProgressBars(cmd.ErrOrStderr())
			onProgress = bars.Handle
		}
		inst := e.installer(onProgress)

		var versionID, dir string
		if source := v.GetString("install.profile"); source != "" {
			name := "loader"
			if len(args) == 1 {
				name = args[0]
			}
			dir = cfg.InstanceDir(name)
			id, err := inst.ImportProfile(cmd.Context(), source, dir)
			if err != nil {
				return err
			}
			versionID = id
		} else {
			versionID = args[0]
			name := versionID
			if len(args) == 2 {
				name = args[1]
			}
			dir = cfg.InstanceDir(name)
		}

		installed, err := inst.Install(cmd.Context(), versionID, dir)
		if bars != nil {
			bars.Wait()
		}
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "installed %s into %s\n", installed.Version, installed.GameDir)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
	installCmd.Flags().BoolP("quiet", "q", false, "Do not render progress bars")
	_ = v.BindPFlag("install.quiet", installCmd.Flags().Lookup("quiet"))
	installCmd.Flags().StringP("profile", "p", "", "Loader profile to import (path, http(s), file or sftp url)")
	_ = v.BindPFlag("install.profile", installCmd.Flags().Lookup("profile"))
}
