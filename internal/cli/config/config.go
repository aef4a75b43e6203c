package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stackvity/utf-converter/pkg/converter"
	"github.com/stackvity/utf-converter/pkg/converter/codec"
)

const (
	EnvPrefix         = "CVT2UTF"
	DefaultConfigName = "cvt2utf"
)

// flagKeys maps command-line flag names to the configuration keys they override.
// Flags missing from a command's FlagSet are skipped.
var flagKeys = map[string]string{
	"verbose":       "verbose",
	"output-format": "outputFormat",
	"inc":           "include",
	"exc":           "exclude",
	"ignore":        "ignore",
	"skiputf":       "skipUTF",
	"target":        "target",
	"threshold":     "confidenceThreshold",
	"size-limit":    "sizeLimitMB",
	"keep-mtime":    "keepModTime",
	"retention":     "backupRetention",
}

// LoadAndValidate loads configuration from all sources (defaults, file, profile, env,
// flags), validates the merged result and sets up the logger. rootPath is the
// positional path argument of the command being run.
func LoadAndValidate(cfgFile, profileName, appVersion, rootPath string, flags *pflag.FlagSet) (converter.Options, *slog.Logger, error) {
	var opts converter.Options
	v := viper.New()

	// Temporary logger for errors raised before the configured level is known.
	tempLogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))

	setDefaults(v)

	// --- Load Config File ---
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(DefaultConfigName)
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", DefaultConfigName))
			v.AddConfigPath(filepath.Join(home, "."+DefaultConfigName))
		} else {
			tempLogger.Debug("No home directory, searching the working directory only", slog.Any("error", err))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			tempLogger.Debug("No configuration file found, using defaults/env/flags.")
		} else {
			used := cfgFile
			if used == "" {
				used = fmt.Sprintf("searched locations for %s.yaml/json/toml", DefaultConfigName)
			}
			tempLogger.Error("Error reading configuration file", slog.String("path", used), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error reading config file '%s': %w", used, err)
		}
	} else {
		opts.ConfigFilePath = v.ConfigFileUsed()
	}

	// --- Apply Profile ---
	if profileName != "" {
		profileKey := "profiles." + profileName
		profile := v.Sub(profileKey)
		if profile == nil {
			configPath := v.ConfigFileUsed()
			if configPath == "" {
				configPath = "(no config file found)"
			}
			err := fmt.Errorf("%w: profile '%s' not found in config file '%s'", converter.ErrConfigValidation, profileName, configPath)
			tempLogger.Error(err.Error())
			return opts, tempLogger, err
		}
		if err := v.MergeConfigMap(profile.AllSettings()); err != nil {
			tempLogger.Error("Error merging profile", slog.String("profile", profileName), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error merging profile '%s': %w", profileName, err)
		}
	}

	// --- Bind Environment Variables ---
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Bind Flags (Highest Priority) ---
	for name, key := range flagKeys {
		flag := flags.Lookup(name)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			tempLogger.Error("Error binding flag", slog.String("flag", name), slog.Any("error", err))
			return opts, tempLogger, fmt.Errorf("error binding flag '--%s': %w", name, err)
		}
	}

	if err := v.Unmarshal(&opts); err != nil {
		tempLogger.Error("Error unmarshalling configuration", slog.Any("error", err))
		return opts, tempLogger, fmt.Errorf("%w: error unmarshalling configuration: %w", converter.ErrConfigValidation, err)
	}
	opts.AppVersion = appVersion
	opts.ProfileName = profileName
	opts.RootPath = rootPath

	// --- Flags that do not map onto a single key ---
	if flags.Changed("verbose") {
		opts.Verbose, _ = flags.GetBool("verbose")
	}
	if flags.Changed("nobak") {
		if nobak, _ := flags.GetBool("nobak"); nobak {
			opts.Backup = false
		}
	}
	if flags.Changed("u8bom") {
		if bom, _ := flags.GetBool("u8bom"); bom {
			opts.Target = codec.NameUTF8BOM
		}
	}
	if flags.Changed("dry-run") {
		opts.DryRun, _ = flags.GetBool("dry-run")
	}

	// --- Setup Final Logger ---
	logLevel := slog.LevelInfo
	if opts.Verbose {
		logLevel = slog.LevelDebug
	}
	logHandler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger := slog.New(logHandler)
	opts.Logger = logHandler

	if opts.ConfigFilePath != "" {
		logger.Debug("Using configuration file", slog.String("path", opts.ConfigFilePath))
	}
	if profileName != "" {
		logger.Debug("Applied configuration profile", slog.String("profile", profileName))
	}

	if err := validateAndDeriveOptions(&opts, logger); err != nil {
		return opts, logger, err
	}

	logger.Debug("Configuration loading and validation complete",
		slog.String("configFile", opts.ConfigFilePath),
		slog.String("profile", opts.ProfileName),
		slog.Bool("verbose", opts.Verbose),
		slog.String("logLevel", logLevel.String()),
	)
	return opts, logger, nil
}

// setDefaults establishes the default values for configuration options in Viper.
func setDefaults(v *viper.Viper) {
	// --- File Selection ---
	v.SetDefault("include", converter.DefaultInclude)
	v.SetDefault("exclude", []string{})
	v.SetDefault("ignore", []string{})
	v.SetDefault("sizeLimitMB", converter.DefaultSizeLimitMB)
	v.SetDefault("skipBinary", converter.DefaultSkipBinary)

	// --- Detection ---
	v.SetDefault("confidenceThreshold", converter.DefaultConfidenceThreshold)
	v.SetDefault("detectChain", converter.DefaultOptions().DetectChain)

	// --- Conversion ---
	v.SetDefault("target", converter.DefaultTarget)
	v.SetDefault("skipUTF", converter.DefaultSkipUTF)
	v.SetDefault("skipASCII", converter.DefaultSkipASCII)
	v.SetDefault("backup", converter.DefaultBackup)
	v.SetDefault("keepModTime", converter.DefaultKeepModTime)
	v.SetDefault("verifyWrites", converter.DefaultVerifyWrites)

	// --- Backup Cleanup ---
	v.SetDefault("backupRetention", converter.DefaultBackupRetentionString)

	// --- Output ---
	v.SetDefault("outputFormat", string(converter.DefaultOutputFormat))
	v.SetDefault("verbose", converter.DefaultVerbose)
}

// isValidEnumValue checks if a given string value is present in a slice of allowed enum values.
func isValidEnumValue[T ~string](value T, allowedValues []T) bool {
	return slices.Contains(allowedValues, value)
}

// validateAndDeriveOptions performs semantic validation on the populated Options and
// calculates derived fields. Errors wrap converter.ErrConfigValidation.
func validateAndDeriveOptions(opts *converter.Options, logger *slog.Logger) error {
	// === Root Path ===
	if strings.TrimSpace(opts.RootPath) == "" {
		err := fmt.Errorf("%w: a path to scan is required", converter.ErrConfigValidation)
		logger.Error(err.Error())
		return err
	}
	absRoot, err := filepath.Abs(opts.RootPath)
	if err != nil {
		err = fmt.Errorf("%w: cannot resolve absolute path '%s': %w", converter.ErrConfigValidation, opts.RootPath, err)
		logger.Error(err.Error(), slog.String("value", opts.RootPath))
		return err
	}
	opts.RootPath = absRoot

	// === Enum String Validations ===
	allowedOutputFormat := []converter.OutputFormat{converter.OutputFormatText, converter.OutputFormatJSON, converter.OutputFormatTOML}
	if !isValidEnumValue(opts.OutputFormat, allowedOutputFormat) {
		err := fmt.Errorf("%w: invalid value '%s' for key 'outputFormat' (flag --output-format). Allowed: %v", converter.ErrConfigValidation, opts.OutputFormat, allowedOutputFormat)
		logger.Error(err.Error(), slog.String("key", "outputFormat"), slog.String("value", string(opts.OutputFormat)))
		return err
	}
	target, ok := codec.ParseTarget(opts.Target)
	if !ok {
		err := fmt.Errorf("%w: invalid value '%s' for key 'target' (flag --target). Allowed: [%s %s]", converter.ErrConfigValidation, opts.Target, codec.NameUTF8, codec.NameUTF8BOM)
		logger.Error(err.Error(), slog.String("key", "target"), slog.String("value", opts.Target))
		return err
	}
	opts.TargetCodec = target

	// === Numeric Range Validations ===
	if opts.SizeLimitMB <= 0 {
		err := fmt.Errorf("%w: invalid value '%d' for key 'sizeLimitMB' (flag --size-limit). Must be > 0", converter.ErrConfigValidation, opts.SizeLimitMB)
		logger.Error(err.Error(), slog.String("key", "sizeLimitMB"), slog.Int64("value", opts.SizeLimitMB))
		return err
	}
	opts.SizeLimit = opts.SizeLimitMB * 1024 * 1024

	if opts.ConfidenceThreshold < 0.0 || opts.ConfidenceThreshold > 1.0 {
		err := fmt.Errorf("%w: invalid value '%v' for key 'confidenceThreshold' (flag --threshold). Must be between 0.0 and 1.0", converter.ErrConfigValidation, opts.ConfidenceThreshold)
		logger.Error(err.Error(), slog.String("key", "confidenceThreshold"), slog.Float64("value", opts.ConfidenceThreshold))
		return err
	}

	// === Durations ===
	retention, err := time.ParseDuration(opts.BackupRetentionString)
	if err != nil || retention <= 0 {
		err := fmt.Errorf("%w: invalid value '%s' for key 'backupRetention' (flag --retention). Must be a positive duration such as 40m", converter.ErrConfigValidation, opts.BackupRetentionString)
		logger.Error(err.Error(), slog.String("key", "backupRetention"), slog.String("value", opts.BackupRetentionString))
		return err
	}
	opts.BackupRetention = retention

	// === Extension Sets ===
	opts.Include = cleanExtensions(opts.Include)
	opts.Exclude = cleanExtensions(opts.Exclude)
	if len(opts.Include) == 0 {
		err := fmt.Errorf("%w: key 'include' (flag --inc) must name at least one extension", converter.ErrConfigValidation)
		logger.Error(err.Error(), slog.String("key", "include"))
		return err
	}

	logger.Debug("Final derived settings validated",
		slog.String("root", opts.RootPath),
		slog.String("target", opts.TargetCodec.String()),
		slog.Any("include", opts.Include),
		slog.Any("exclude", opts.Exclude),
		slog.Int64("sizeLimitBytes", opts.SizeLimit),
		slog.Float64("confidenceThreshold", opts.ConfidenceThreshold),
		slog.Bool("backup", opts.Backup),
		slog.Duration("backupRetention", opts.BackupRetention),
	)
	return nil
}

// cleanExtensions lower-cases, trims and de-duplicates extension names, dropping any
// leading dot.
func cleanExtensions(exts []string) []string {
	out := make([]string, 0, len(exts))
	for _, e := range exts {
		e = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(e), "."))
		if e != "" && !slices.Contains(out, e) {
			out = append(out, e)
		}
	}
	return out
}
