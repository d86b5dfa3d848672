package launcher

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/google/uuid"

	"limeal.fr/mcengine/pkg/game/catalog"
	"limeal.fr/mcengine/pkg/game/folder"
	"limeal.fr/mcengine/pkg/game/java"
	"limeal.fr/mcengine/pkg/game/libraries"
	"limeal.fr/mcengine/pkg/game/manifests"
	"limeal.fr/mcengine/pkg/game/natives"
	"limeal.fr/mcengine/pkg/game/profile"
	"limeal.fr/mcengine/pkg/game/rules"
)

const (
	DefaultMemoryMB  = 2048
	DefaultWidth     = 854
	DefaultHeight    = 480
	defaultLauncher  = "mcengine"
	defaultLauncherV = "1.0.0"
)

type LaunchOptions struct {
	MemoryMB     int
	JavaPath     string // skips runtime resolution when set
	ExtraJVMArgs []string
	Features     rules.FeatureSet
	Width        int
	Height       int

	QuickPlayPath         string
	QuickPlaySingleplayer string
	QuickPlayMultiplayer  string
	QuickPlayRealms       string
}

type LaunchResult struct {
	PID       int
	SessionID string
	Command   Command
}

// Pipeline turns an installed instance into a running game process.
type Pipeline struct {
	locator  *java.Locator
	spawner  Spawner
	platform rules.Platform

	launcherName    string
	launcherVersion string
	onStage         func(Stage)
	logger          *slog.Logger
}

type Option func(*Pipeline)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) { p.logger = logger }
}

func WithSpawner(s Spawner) Option {
	return func(p *Pipeline) { p.spawner = s }
}

func WithPlatform(platform rules.Platform) Option {
	return func(p *Pipeline) { p.platform = platform }
}

func WithLauncherBrand(name, version string) Option {
	return func(p *Pipeline) {
		p.launcherName = name
		p.launcherVersion = version
	}
}

// WithStageHook is called as each stage begins.
func WithStageHook(fn func(Stage)) Option {
	return func(p *Pipeline) { p.onStage = fn }
}

func NewPipeline(locator *java.Locator, opts ...Option) *Pipeline {
	p := &Pipeline{
		locator:         locator,
		platform:        rules.DetectPlatform(),
		launcherName:    defaultLauncher,
		launcherVersion: defaultLauncherV,
		logger:          slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.spawner == nil {
		p.spawner = &ExecSpawner{Logger: p.logger}
	}
	return p
}

// launchState carries what each stage hands to the next.
type launchState struct {
	folder    *folder.GameFolder
	meta      *manifests.VersionMetadata
	resolved  *libraries.Resolved
	javaPath  string
	classpath string
	jvm       []string
	game      []string
	mainClass string
}

// Launch runs Validate, ExtractNatives, ResolveRuntime, BuildClasspath,
// BuildArguments, ResolveMainClass and Spawn in that order. The first
// failing stage aborts the launch.
func (p *Pipeline) Launch(ctx context.Context, inst *folder.Instance, auth profile.AuthInfo, opts LaunchOptions) (*LaunchResult, error) {
	session := uuid.NewString()
	log := p.logger.With("instance", inst.ID, "version", inst.Version, "session", session)
	st := &launchState{folder: inst.Folder()}

	features := rules.FeatureSet{}
	for k, v := range opts.Features {
		features[k] = v
	}
	if opts.Width > 0 && opts.Height > 0 {
		features["has_custom_resolution"] = true
	}
	for flag, value := range map[string]string{
		"has_quick_plays_support":    opts.QuickPlayPath,
		"is_quick_play_singleplayer": opts.QuickPlaySingleplayer,
		"is_quick_play_multiplayer":  opts.QuickPlayMultiplayer,
		"is_quick_play_realms":       opts.QuickPlayRealms,
	} {
		if value != "" {
			features[flag] = true
		}
	}

	steps := []struct {
		stage Stage
		run   func() error
	}{
		{StageValidate, func() error { return p.validate(st, inst, features) }},
		{StageExtractNatives, func() error { return p.extractNatives(st, inst) }},
		{StageResolveRuntime, func() error { return p.resolveRuntime(ctx, st, inst, opts) }},
		{StageBuildClasspath, func() error { return p.buildClasspath(st, inst) }},
		{StageBuildArguments, func() error { return p.buildArguments(st, inst, auth, opts, features) }},
		{StageResolveMainClass, func() error { return p.resolveMainClass(st, inst, features) }},
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, &StageError{Stage: step.stage, Err: err}
		}
		p.enter(log, step.stage)
		if err := step.run(); err != nil {
			return nil, &StageError{Stage: step.stage, Err: err}
		}
	}

	p.enter(log, StageSpawn)
	args := make([]string, 0, len(st.jvm)+len(st.game)+3)
	args = append(args, st.jvm...)
	args = append(args, "-cp", st.classpath, st.mainClass)
	args = append(args, st.game...)
	cmd := Command{Path: st.javaPath, Args: args, Dir: st.folder.GetPath()}

	log.Debug("spawning game", "java", cmd.Path, "args", len(cmd.Args))
	pid, err := p.spawner.Spawn(ctx, cmd)
	if err != nil {
		return nil, &StageError{Stage: StageSpawn, Err: err}
	}
	log.Info("game launched", "pid", pid)
	return &LaunchResult{PID: pid, SessionID: session, Command: cmd}, nil
}

func (p *Pipeline) enter(log *slog.Logger, stage Stage) {
	log.Debug("launch stage", "stage", stage)
	if p.onStage != nil {
		p.onStage(stage)
	}
}

func (p *Pipeline) validate(st *launchState, inst *folder.Instance, features rules.FeatureSet) error {
	if err := st.folder.Validate(inst.Version); err != nil {
		return err
	}
	meta, err := catalog.LoadResolvedMetadata(st.folder.Path, inst.Version)
	if err != nil {
		return err
	}
	st.meta = meta

	resolver := libraries.NewResolver(st.folder.LibrariesDir(), p.platform)
	resolver.Features = features
	resolved, err := resolver.Resolve(meta.Libraries)
	if err != nil {
		return err
	}
	if err := resolved.Verify(); err != nil {
		return err
	}
	st.resolved = resolved
	return nil
}

// extractNatives rebuilds the natives directory from scratch.
func (p *Pipeline) extractNatives(st *launchState, inst *folder.Instance) error {
	dir := st.folder.NativesDir(inst.Version)
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("failed to clean natives directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	for _, n := range st.resolved.Natives {
		if err := natives.Extract(n.Path, dir, n.Exclude); err != nil {
			return err
		}
	}
	return nil
}

func (p *Pipeline) resolveRuntime(ctx context.Context, st *launchState, inst *folder.Instance, opts LaunchOptions) error {
	for _, path := range []string{opts.JavaPath, inst.JavaPath} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("configured java %s: %w", path, err)
		}
		st.javaPath = path
		return nil
	}

	major := java.RequiredMajorFor(st.meta)
	path, err := p.locator.Locate(ctx, major)
	if err != nil {
		return err
	}
	st.javaPath = path
	return nil
}

func (p *Pipeline) buildClasspath(st *launchState, inst *folder.Instance) error {
	entries := st.resolved.ClasspathWith(st.folder.ClientJar(inst.Version))
	st.classpath = libraries.JoinClasspath(entries, p.platform.OS)
	return nil
}

func (p *Pipeline) buildArguments(st *launchState, inst *folder.Instance, auth profile.AuthInfo, opts LaunchOptions, features rules.FeatureSet) error {
	builder, err := newArgBuilder(inst.Version, st.meta, p.platform, features)
	if err != nil {
		return err
	}
	values := p.placeholders(st, inst, auth, opts)

	memoryMB := opts.MemoryMB
	if memoryMB <= 0 {
		memoryMB = inst.MemoryMB
	}
	if memoryMB <= 0 {
		memoryMB = DefaultMemoryMB
	}

	jvm, err := builder.jvmArgs(values, profile.MemoryFor(memoryMB))
	if err != nil {
		return err
	}
	jvm = append(jvm, inst.JVMArgs...)
	st.jvm = append(jvm, opts.ExtraJVMArgs...)

	st.game, err = builder.gameArgs(values)
	return err
}

func (p *Pipeline) resolveMainClass(st *launchState, inst *folder.Instance, features rules.FeatureSet) error {
	if st.meta.MainClass != "" {
		st.mainClass = st.meta.MainClass
		return nil
	}
	builder, err := newArgBuilder(inst.Version, st.meta, p.platform, features)
	if err != nil {
		return err
	}
	st.mainClass = builder.defaultMainClass()
	return nil
}

func (p *Pipeline) placeholders(st *launchState, inst *folder.Instance, auth profile.AuthInfo, opts LaunchOptions) placeholders {
	gameDir := st.folder.GetPath()
	assetsDir := st.folder.AssetsDir()

	versionType := st.meta.Type
	if versionType == "" {
		versionType = "release"
	}
	width, height := opts.Width, opts.Height
	if width <= 0 || height <= 0 {
		width, height = DefaultWidth, DefaultHeight
	}

	return placeholders{
		"auth_player_name":      auth.Username,
		"auth_uuid":             auth.UUID,
		"auth_access_token":     auth.AccessToken,
		"auth_session":          auth.AccessToken,
		"auth_xuid":             "0",
		"clientid":              "0",
		"user_type":             string(auth.UserType),
		"user_properties":       "{}",
		"version_name":          inst.Version,
		"version_type":          versionType,
		"game_directory":        gameDir,
		"assets_root":           assetsDir,
		"game_assets":           assetsDir,
		"assets_index_name":     st.meta.AssetsID(),
		"natives_directory":     st.folder.NativesDir(inst.Version),
		"library_directory":     st.folder.LibrariesDir(),
		"classpath":             st.classpath,
		"classpath_separator":   libraries.Separator(p.platform.OS),
		"launcher_name":         p.launcherName,
		"launcher_version":      p.launcherVersion,
		"resolution_width":      strconv.Itoa(width),
		"resolution_height":     strconv.Itoa(height),
		"quickPlayPath":         opts.QuickPlayPath,
		"quickPlaySingleplayer": opts.QuickPlaySingleplayer,
		"quickPlayMultiplayer":  opts.QuickPlayMultiplayer,
		"quickPlayRealms":       opts.QuickPlayRealms,
	}
}
