package cmd

import (
	"fmt"
	"os"

	log "github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	u "github.com/tanq16/contaix/utils"
)

var rootFlags struct {
	debug      bool
	render     bool
	configFile string
}

var ContaixVersion = "dev"

// conf and v hold the configuration of the running command
var (
	conf settings
	v    *viper.Viper
)

var rootCmd = &cobra.Command{
	Use:     "contaix",
	Short:   "Aggregate code bases, documents and web pages into AI context files.",
	Version: ContaixVersion,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		u.SetupLogger(rootFlags.debug)
		var err error
		v, err = newViper(rootFlags.configFile)
		if err != nil {
			return err
		}
		if err := bindFlags(v, cmd.Flags()); err != nil {
			return err
		}
		conf, err = loadSettings(v)
		return err
	},
}

func Execute() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// fail prints a user-facing error and exits
func fail(msg string, err error) {
	if err != nil {
		msg += ": " + err.Error()
	}
	u.PrintError(msg)
	os.Exit(1)
}

// printDocument writes a document to stdout, styled when --render is set
func printDocument(doc string) {
	if rootFlags.render {
		rendered, err := u.RenderMarkdown(doc, 100)
		if err == nil {
			fmt.Print(rendered)
			return
		}
		log.Debug().Err(err).Msg("failed to render markdown")
	}
	fmt.Println(doc)
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootFlags.debug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&rootFlags.render, "render", false, "Render markdown printed to stdout for the terminal")
	rootCmd.PersistentFlags().StringVarP(&rootFlags.configFile, "config", "c", "", "Config file (default ./contaix.yaml)")
}
