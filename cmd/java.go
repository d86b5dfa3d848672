package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"limeal.fr/mcengine/pkg/game/java"
	"limeal.fr/mcengine/pkg/utils"
)

var javaCmd = &cobra.Command{
	Use:   "java",
	Short: "Locate or install java runtimes",
}

// parseMajor accepts a java major (17) or a game version (1.20.4).
func parseMajor(arg string) (int, error) {
	if major, err := strconv.Atoi(arg); err == nil && major > 0 {
		return major, nil
	}
	if _, err := utils.ParseGameVersion(arg); err != nil {
		return 0, fmt.Errorf("%q is neither a java major nor a game version", arg)
	}
	return java.RequiredMajorVersion(arg), nil
}

var javaLocateCmd = &cobra.Command{
	Use:   "locate <major|version>",
	Short: "Print the java binary used for a major or a game version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		major, err := parseMajor(args[0])
		if err != nil {
			return err
		}
		path, err := java.NewLocator(cfg.RuntimeDir, java.WithLogger(logger)).Locate(cmd.Context(), major)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var javaInstallCmd = &cobra.Command{
	Use:   "install <major|version>",
	Short: "Install the Mojang java runtime for a major or a game version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		major, err := parseMajor(args[0])
		if err != nil {
			return err
		}

		e := newEngine()
		defer e.Close()

		bars := utils.NewProgressBars(cmd.ErrOrStderr())
		path, err := e.runtimeInstaller(bars.Handle).Install(cmd.Context(), major)
		bars.Wait()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "java %d installed: %s\n", major, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(javaCmd)
	javaCmd.AddCommand(javaLocateCmd)
	javaCmd.AddCommand(javaInstallCmd)
}
