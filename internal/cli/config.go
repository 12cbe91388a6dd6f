package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ralt/rpm-builder/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configFlag = "config"
	envPrefix  = "RPM_BUILDER"
)

// newViper layers an optional config file and RPM_BUILDER_* environment
// variables under the command line flags
func newViper(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if path, _ := flags.GetString(configFlag); path != "" {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("config file not found: %s", path)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		logrus.Debugf("Loaded configuration from %s", v.ConfigFileUsed())
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// loadBuildConfig resolves every build input from flags, the config file and
// the environment, in that order of precedence
func loadBuildConfig(flags *pflag.FlagSet, args []string, names models.ArgNames) (*models.BuildConfig, error) {
	v, err := newViper(flags)
	if err != nil {
		return nil, err
	}

	list := func(name string) []string {
		// Explicit flags are read directly so values are not re-split on commas
		if flags.Changed(name) {
			values, _ := flags.GetStringArray(name)
			return values
		}
		// Environment values are scalars: one entry per line, spaces kept
		if raw, ok := v.Get(name).(string); ok {
			return splitLines(raw)
		}
		return v.GetStringSlice(name)
	}

	config := &models.BuildConfig{
		Name:                v.GetString(names.Name),
		Version:             v.GetString(names.Version),
		Release:             v.GetString(names.Release),
		Epoch:               v.GetString(names.Epoch),
		License:             v.GetString(names.License),
		Arch:                v.GetString(names.Arch),
		Description:         v.GetString(names.Desc),
		Files:               list(names.File),
		ExecFiles:           list(names.ExecFile),
		ConfigFiles:         list(names.ConfigFile),
		DocFiles:            list(names.DocFile),
		Dirs:                list(names.Dir),
		Changelog:           list(names.Changelog),
		Requires:            list(names.Requires),
		Obsoletes:           list(names.Obsoletes),
		Conflicts:           list(names.Conflicts),
		Provides:            list(names.Provides),
		PreInstallScript:    v.GetString(names.PreInstallScript),
		PostInstallScript:   v.GetString(names.PostInstallScript),
		PreUninstallScript:  v.GetString(names.PreUninstallScript),
		PostUninstallScript: v.GetString(names.PostUninstallScript),
		Compression:         v.GetString(names.Compression),
		SigningKeyPath:      v.GetString(names.SignWithPGPAsc),
		SigningPassphrase:   v.GetString(names.PGPPassphrase),
		OutputPath:          v.GetString(names.Out),
	}
	if len(args) > 0 {
		config.Name = args[0]
	}
	return config, nil
}

func splitLines(raw string) []string {
	var out []string
	for _, line := range strings.Split(raw, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}
