package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newConf reads settings from flags, GQLVALID_* environment variables and an
// optional config file, in that order of precedence.
func newConf(cmd *cobra.Command) *viper.Viper {
	conf := viper.New()
	conf.SetEnvPrefix("GQLVALID")
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	conf.AutomaticEnv()
	_ = conf.BindPFlags(cmd.Flags())
	_ = conf.BindPFlags(cmd.Root().PersistentFlags())
	return conf
}

func readConfigFile(conf *viper.Viper) error {
	path := conf.GetString("config")
	if path == "" {
		return nil
	}
	conf.SetConfigFile(path)
	return errors.Wrap(conf.ReadInConfig(), "reading config")
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "gqlvalid",
		Short:         "GraphQL endpoint with validated mutations",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("config", "",
		"Configuration file. Overridden by environment variables and flags.")
	root.PersistentFlags().String("log.level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().Bool("log.development", false, "Human-readable console logs")

	root.AddCommand(newServeCmd(), newSDLCmd())
	return root
}
