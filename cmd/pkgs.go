package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tanq16/contaix/contaix"
	u "github.com/tanq16/contaix/utils"
)

var pkgsFlags struct {
	dir    string
	output string
}

var pkgsCmd = &cobra.Command{
	Use:   "pkgs <import path...>",
	Short: "Save the code of Go packages as context files.",
	Long: `Save the code of locally available Go packages (GOROOT, GOPATH or the module cache).
Without --output each package is written to <dir>/<import_path>.go.md; with --output all
packages are combined under "# <import path>" headings into one file.`,
	Args: cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		resolver := contaix.NewResolver(contaix.DefaultKeyFilter)
		resolver.Ignore = conf.Code.Ignore
		resolver.SkipNoise = true
		saver := contaix.NewPackageContexts(pkgsFlags.dir, resolver)
		if pkgsFlags.output != "" {
			path, err := saver.Multiple(cmd.Context(), args, pkgsFlags.output)
			if err != nil {
				fail("failed to save packages", err)
			}
			u.PrintSuccess("wrote " + path)
			return
		}
		for _, name := range args {
			path, err := saver.SaveSingle(cmd.Context(), name)
			if err != nil {
				fail(fmt.Sprintf("failed to save %s", name), err)
			}
			u.PrintSuccess("wrote " + path)
		}
	},
}

func init() {
	rootCmd.AddCommand(pkgsCmd)
	pkgsCmd.Flags().StringVarP(&pkgsFlags.dir, "dir", "d", ".", "Directory the context files are saved in")
	pkgsCmd.Flags().StringVarP(&pkgsFlags.output, "output", "o", "", "Combine all packages into this file")
	pkgsCmd.Flags().StringSliceP("ignore", "i", nil, "Additional patterns to ignore")
}
