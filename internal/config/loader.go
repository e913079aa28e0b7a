package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Load loads configuration with the following priority (highest to lowest):
//  1. Environment variables (FLASHMAP_*)
//  2. Config file (explicit path, or .flashmap.yaml in cwd then home)
//  3. Default values
func Load(cfgFile string) (*Config, error) {
	v := viper.New()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(".flashmap")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME")
	}

	v.SetEnvPrefix("FLASHMAP")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("report.top_count")
	v.BindEnv("report.name_width")
	v.BindEnv("report.human")
	v.BindEnv("report.region")
	v.BindEnv("report.demangle")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// No config file is fine; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	cfg := Default()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	def := Default()
	v.SetDefault("report.top_count", def.Report.TopCount)
	v.SetDefault("report.name_width", def.Report.NameWidth)
	v.SetDefault("report.human", def.Report.Human)
	v.SetDefault("report.region", def.Report.Region)
	v.SetDefault("report.demangle", def.Report.Demangle)
}
