// Package commands implements fluxlogctl's cobra command tree, grounded
// on the teacher's bb/cmd/bb/commands root command: a persistent config
// flag loaded via viper, with subcommands hanging off RootCmd.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/fluxlog/fluxlog/internal/version"
)

const (
	DefaultConfigDir = "~/"
	ConfigFileName   = ".fluxlogctl"
)

var defaultConfigFilePath = fmt.Sprintf("%s%s.yml", DefaultConfigDir, ConfigFileName)

// GlobalConfig holds fluxlogctl's persistent flags.
type GlobalConfig struct {
	Debug          bool
	ConfigFilePath string
	LogFilePath    string
}

var Global = &GlobalConfig{}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVarP(
		&Global.ConfigFilePath,
		"config",
		"c",
		defaultConfigFilePath,
		"The fluxlog configuration file to load.")

	RootCmd.PersistentFlags().BoolVarP(
		&Global.Debug,
		"debug",
		"d",
		false,
		"Enable verbose debug output.")

	RootCmd.PersistentFlags().StringVar(
		&Global.LogFilePath,
		"log-file",
		"",
		"Append fluxlogctl's own operational log to this file instead of stdout.")
}

// initConfig reads the config file and environment variables if set.
func initConfig() {
	if Global.ConfigFilePath != "" && Global.ConfigFilePath != defaultConfigFilePath {
		viper.SetConfigFile(Global.ConfigFilePath)
	} else {
		viper.SetConfigName(ConfigFileName)
		viper.AddConfigPath(DefaultConfigDir)
		viper.AddConfigPath(".")
	}
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		Global.ConfigFilePath = viper.ConfigFileUsed()
	} else if _, notFound := err.(viper.ConfigFileNotFoundError); !notFound {
		fmt.Fprintf(cmdErr, "error loading config file (%s): %s\n", viper.ConfigFileUsed(), err)
	}
}

// Execute runs RootCmd. Called once by main.main.
func Execute() error {
	return RootCmd.Execute()
}

var RootCmd = &cobra.Command{
	Use:     "fluxlogctl",
	Short:   "fluxlogctl validates and smoke-tests a fluxlog configuration",
	Long:    `fluxlogctl loads a fluxlog configuration file, starts the configured log and trace managers, reports whether they came up healthy, and stops them again.`,
	Version: version.VersionToString(),
}
