package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"limeal.fr/mcengine/pkg/connectors"
	"limeal.fr/mcengine/pkg/game/folder"
	"limeal.fr/mcengine/pkg/game/shared"
)

const (
	AppName    = "mcengine"
	ConfigName = "mcengine"
	EnvPrefix  = "MCENGINE"

	MinMemoryMB = 512
)

var replacer = strings.NewReplacer(".", "_")

type SFTP struct {
	KnownHosts            string `mapstructure:"known_hosts"`
	PoolSize              int    `mapstructure:"pool_size"`
	InsecureIgnoreHostKey bool   `mapstructure:"insecure_ignore_host_key"`
}

type Config struct {
	CatalogURL         string `mapstructure:"catalog_url"`
	ResourcesURL       string `mapstructure:"resources_url"`
	LibrariesURL       string `mapstructure:"libraries_url"`
	RuntimeManifestURL string `mapstructure:"runtime_manifest_url"`

	RuntimeDir   string `mapstructure:"runtime_dir"`
	InstancesDir string `mapstructure:"instances_dir"`

	Workers         int    `mapstructure:"workers"`
	MemoryMB        int    `mapstructure:"memory_mb"`
	LauncherName    string `mapstructure:"launcher_name"`
	LauncherVersion string `mapstructure:"launcher_version"`
	UserAgent       string `mapstructure:"user_agent"`

	SFTP  SFTP `mapstructure:"sftp"`
	Debug bool `mapstructure:"debug"`
}

// DataDir is the per-user directory holding instances and runtimes.
func DataDir() string {
	dir, err := folder.GetGameFolderPathForFolder(AppName)
	if err != nil {
		return "." + AppName
	}
	return dir
}

func SetDefaults(v *viper.Viper) {
	data := DataDir()
	v.SetDefault("catalog_url", shared.PISTON_MANIFEST_URL)
	v.SetDefault("resources_url", shared.RESOURCES_URL)
	v.SetDefault("libraries_url", shared.LIBRARIES_URL)
	v.SetDefault("runtime_manifest_url", shared.RUNTIME_MANIFEST_URL)
	v.SetDefault("runtime_dir", filepath.Join(data, "runtime"))
	v.SetDefault("instances_dir", filepath.Join(data, "instances"))
	v.SetDefault("workers", 8)
	v.SetDefault("memory_mb", 2048)
	v.SetDefault("launcher_name", AppName)
	v.SetDefault("launcher_version", "1.0.0")
	v.SetDefault("user_agent", AppName+"/1.0.0")
	v.SetDefault("sftp.known_hosts", "")
	v.SetDefault("sftp.pool_size", 4)
	v.SetDefault("sftp.insecure_ignore_host_key", false)
	v.SetDefault("debug", false)
}

// New returns a viper instance reading mcengine.toml from the data directory
// or the working directory, overridden by MCENGINE_* variables.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName(ConfigName)
	v.SetConfigType("toml")
	v.AddConfigPath(DataDir())
	v.AddConfigPath(".")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(replacer)
	v.AutomaticEnv()
	return v
}

// Load reads the config file if one exists and decodes the result.
func Load(v *viper.Viper) (*Config, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	var errs []error
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.MemoryMB < MinMemoryMB {
		errs = append(errs, fmt.Errorf("memory_mb must be at least %d, got %d", MinMemoryMB, c.MemoryMB))
	}
	for key, value := range map[string]string{
		"catalog_url":          c.CatalogURL,
		"resources_url":        c.ResourcesURL,
		"libraries_url":        c.LibrariesURL,
		"runtime_manifest_url": c.RuntimeManifestURL,
		"runtime_dir":          c.RuntimeDir,
		"instances_dir":        c.InstancesDir,
	} {
		if value == "" {
			errs = append(errs, fmt.Errorf("%s must not be empty", key))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid configuration: %w", errors.Join(errs...))
	}
	return nil
}

func (c *Config) ConnectorOptions() connectors.Options {
	return connectors.Options{
		UserAgent:  c.UserAgent,
		KnownHosts: c.SFTP.KnownHosts,
		PoolSize:   c.SFTP.PoolSize,

		InsecureIgnoreHostKey: c.SFTP.InsecureIgnoreHostKey,
	}
}

// InstanceDir resolves a bare instance name under InstancesDir. Paths are
// returned unchanged.
func (c *Config) InstanceDir(nameOrPath string) string {
	if filepath.IsAbs(nameOrPath) || strings.ContainsRune(nameOrPath, filepath.Separator) || strings.HasPrefix(nameOrPath, ".") {
		return nameOrPath
	}
	return filepath.Join(c.InstancesDir, nameOrPath)
}
