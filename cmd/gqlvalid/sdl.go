package main

import (
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	demo "github.com/hanpama/gqlvalid/internal/demo"
	schema "github.com/hanpama/gqlvalid/internal/schema"
	validation "github.com/hanpama/gqlvalid/internal/validation"
)

func newSDLCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sdl",
		Short: "Print the validation error payload types",
		Long: "Print the FieldValidationError and MutationValidationError type definitions\n" +
			"to include in a schema. With --demo, print the whole demo schema.",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf := newConf(cmd)
			if err := readConfigFile(conf); err != nil {
				return err
			}
			out := validation.PayloadSDL
			if conf.GetBool("demo") {
				app, err := demo.New()
				if err != nil {
					return err
				}
				out = schema.Render(app.Schema)
			}
			if path := conf.GetString("out"); path != "" {
				return errors.Wrap(os.WriteFile(path, []byte(out), 0o644), "write sdl")
			}
			_, err := cmd.OutOrStdout().Write([]byte(out))
			return err
		},
	}
	cmd.Flags().Bool("demo", false, "Print the complete demo schema")
	cmd.Flags().String("out", "", "Write to file instead of stdout")
	return cmd
}
