// Command imgfscmd is the offline administration tool for ImgFS stores:
// list, create, read, insert, and delete operate directly on a store
// file without going through imgfs_server.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/prasoul/imgfs/internal/cliout"
)

var (
	jsonFlag    bool
	verboseFlag bool
)

func main() {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if cliout.IsJSON() {
			cliout.PrintError(os.Stderr, err)
		} else {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(cliout.ExitCodeFor(err))
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "imgfscmd",
		Short:         "imgFS command line interpreter for imgFS core commands",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cliout.SetFlags(jsonFlag, verboseFlag)
			if cliout.IsVerbose() {
				logrus.SetLevel(logrus.DebugLevel)
			}
			return nil
		},
	}
	cmd.PersistentFlags().BoolVarP(&jsonFlag, "json", "j", false, "output as JSON")
	cmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "v", false, "extra detail to stderr")

	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newCreateCmd())
	cmd.AddCommand(newReadCmd())
	cmd.AddCommand(newInsertCmd())
	cmd.AddCommand(newDeleteCmd())
	return cmd
}
