package cmd

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"limeal.fr/mcengine/pkg/game/folder"
	"limeal.fr/mcengine/pkg/game/launcher"
	"limeal.fr/mcengine/pkg/game/profile"
	"limeal.fr/mcengine/pkg/game/shared"
)

var (
	username    string
	uuidFlag    string
	accessToken string
	userType    string
	memoryMB    int
	javaPath    string
	width       int
	height      int
	mcServer    string
	detach      bool
)

var launchCmd = &cobra.Command{
	Use:   "launch <instance>",
	Short: "Launch an installed instance",
	Long: `Launch an installed instance.

Arguments:
  <instance>   An instance name under instances_dir, or a path.

Without --access-token the game runs with offline credentials derived from --username.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		inst, err := folder.LoadInstance(cfg.InstanceDir(args[0]))
		if err != nil {
			return err
		}

		auth := profile.Offline(username)
		if accessToken != "" {
			auth = profile.AuthInfo{
				Username:    username,
				UUID:        uuidFlag,
				AccessToken: accessToken,
				UserType:    profile.UserType(userType),
			}
		}

		e := newEngine()
		defer e.Close()

		exited := make(chan error, 1)
		spawner := &launcher.ExecSpawner{Logger: logger, OnExit: func(err error) { exited <- err }}
		if detach {
			spawner.OutputFile = launcher.DetachedOutputFile(inst.GameDir)
		}
		p := e.pipeline(launcher.WithSpawner(spawner))

		memory := memoryMB
		if memory <= 0 && inst.MemoryMB <= 0 {
			memory = cfg.MemoryMB
		}
		opts := launcher.LaunchOptions{
			MemoryMB: memory,
			JavaPath: javaPath,
			Width:    width,
			Height:   height,
		}
		if mcServer != "" {
			opts.QuickPlayPath = filepath.Join(inst.GameDir, "quickPlay", "log.json")
			opts.QuickPlayMultiplayer = mcServer
		}

		res, err := p.Launch(cmd.Context(), inst, auth, opts)
		if err != nil {
			var notFound *shared.RuntimeNotFoundError
			if errors.As(err, &notFound) {
				return fmt.Errorf("%w\nrun `mcengine java install %d` to install it", err, notFound.RequiredMajor)
			}
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "minecraft %s started with pid %d\n", inst.Version, res.PID)

		if detach {
			fmt.Fprintf(cmd.OutOrStdout(), "game output goes to %s\n", spawner.OutputFile)
			return nil
		}
		if err := <-exited; err != nil {
			return fmt.Errorf("minecraft exited: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(launchCmd)
	launchCmd.Flags().StringVarP(&username, "username", "u", "Steve", "Player name")
	launchCmd.Flags().StringVar(&uuidFlag, "uuid", "", "Player uuid from an external login")
	launchCmd.Flags().StringVar(&accessToken, "access-token", "", "Access token from an external login")
	launchCmd.Flags().StringVar(&userType, "user-type", string(profile.UserTypeMSA), "User type of the external login (msa, mojang, legacy)")
	launchCmd.Flags().IntVarP(&memoryMB, "memory", "m", 0, "Maximum heap in MB (defaults to the instance, then memory_mb)")
	launchCmd.Flags().StringVarP(&javaPath, "java", "j", "", "The path to the java executable")
	launchCmd.Flags().IntVar(&width, "width", 0, "Window width")
	launchCmd.Flags().IntVar(&height, "height", 0, "Window height")
	launchCmd.Flags().StringVar(&mcServer, "quickPlayMultiplayer", "", "Join a server on start (e.g mc.example.com)")
	launchCmd.Flags().BoolVar(&detach, "detach", false, "Return once the game is started")
}
