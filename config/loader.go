package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/restkit/logger"
)

// FileSystem abstracts the file operations of the loader.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem is the FileSystem backed by the operating system.
type OSFileSystem struct{}

// Exists reports whether path can be stat'ed.
func (OSFileSystem) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// LoadEnv loads a .env file into the process environment. Variables that
// are already set keep their values.
func (OSFileSystem) LoadEnv(path string) error {
	return godotenv.Load(path)
}

// LoaderConfig holds loader dependencies and overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
	Log        *logger.Logger
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

// WithFileSystem replaces the filesystem used to find and load files.
func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile sets an explicit config file and skips the search.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile sets an explicit .env file and skips the search.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix restricts environment binding to variables starting with
// prefix followed by an underscore. The prefix is stripped before mapping.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = strings.TrimSuffix(strings.ToUpper(prefix), "_") }
}

// WithLogger sets the logger used for loader warnings.
func WithLogger(l *logger.Logger) LoaderOption {
	return func(lc *LoaderConfig) { lc.Log = l }
}

// ResolvedFiles are the files a load will read. Empty means none.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// Resolve returns the config and env files for serviceName, searching the
// usual locations for whichever was not given explicitly.
func Resolve(serviceName string, lc LoaderConfig) ResolvedFiles {
	fs := lc.FileSystem
	if fs == nil {
		fs = OSFileSystem{}
	}
	files := ResolvedFiles{ConfigFile: lc.ConfigFile, EnvFile: lc.EnvFile}
	if files.ConfigFile == "" {
		files.ConfigFile = firstExisting(fs, configCandidates(serviceName))
	}
	if files.EnvFile == "" {
		files.EnvFile = firstExisting(fs, envCandidates(serviceName))
	}
	return files
}

func configCandidates(serviceName string) []string {
	var paths []string
	for _, dir := range []string{".", "..", "../.."} {
		paths = append(paths, fmt.Sprintf("%s/cmd/%s/config.yml", dir, serviceName))
	}
	return append(paths, "./config/config.yml", "./config.yml")
}

func envCandidates(serviceName string) []string {
	var paths []string
	for _, name := range []string{".env." + serviceName, ".env"} {
		for _, dir := range []string{".", "./cmd/" + serviceName, "./config", ".."} {
			paths = append(paths, dir+"/"+name)
		}
	}
	return paths
}

func firstExisting(fs FileSystem, paths []string) string {
	for _, p := range paths {
		if fs.Exists(p) {
			return p
		}
	}
	return ""
}

// LoadConfig reads configuration for serviceName into cfg. The YAML file is
// read first, then the .env file is loaded into the environment, then
// matching environment variables override file values. A missing or
// unreadable file is logged and skipped; only unmarshal failures are errors.
func LoadConfig(serviceName string, cfg interface{}, opts ...LoaderOption) error {
	lc := LoaderConfig{FileSystem: OSFileSystem{}}
	for _, opt := range opts {
		opt(&lc)
	}
	log := logger.OrNop(lc.Log).WithComponent("config")
	files := Resolve(serviceName, lc)

	v := viper.New()
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			log.Warn("failed to read config file", map[string]interface{}{
				"file":            files.ConfigFile,
				logger.FieldError: err,
			})
		}
	}

	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			log.Warn("failed to load env file", map[string]interface{}{
				"file":            files.EnvFile,
				logger.FieldError: err,
			})
		}
	}
	bindEnv(v, lc.EnvPrefix, os.Environ())

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("config: unmarshal %s: %w", serviceName, err)
	}
	return nil
}

// bindEnv sets every KEY=value pair in environ on v under each nested key
// the variable could name. With a prefix, only PREFIX_ variables are used.
func bindEnv(v *viper.Viper, prefix string, environ []string) {
	for _, kv := range environ {
		key, value, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if prefix != "" {
			rest, found := strings.CutPrefix(key, prefix+"_")
			if !found || rest == "" {
				continue
			}
			key = rest
		}
		for _, variant := range keyVariants(key) {
			v.Set(variant, value)
		}
	}
}

// keyVariants returns the viper keys an environment variable may map to.
// Every split point between two underscore-separated parts may be a nesting
// dot or a literal underscore:
//
//	STORAGE_REDIS_OP_TIMEOUT -> storage_redis_op_timeout,
//	    storage.redis.op.timeout, storage.redis_op_timeout,
//	    storage.redis.op_timeout, ...
func keyVariants(envKey string) []string {
	parts := strings.Split(strings.ToLower(envKey), "_")
	if len(parts) == 1 {
		return parts
	}

	seen := make(map[string]bool)
	var out []string
	add := func(s string) {
		if !seen[s] {
			seen[s] = true
			out = append(out, s)
		}
	}

	add(strings.Join(parts, "_"))
	add(strings.Join(parts, "."))
	for i := 1; i < len(parts); i++ {
		head := strings.Join(parts[:i], ".")
		add(head + "." + strings.Join(parts[i:], "_"))
		if i < len(parts)-1 {
			add(strings.Join(parts[:i], "_") + "." + strings.Join(parts[i:], "."))
		}
	}
	return out
}
