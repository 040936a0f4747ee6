package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prasoul/imgfs/internal/cliout"
	"github.com/prasoul/imgfs/internal/store"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list <imgFS_filename>",
		Short: "list imgFS content",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(args[0], store.ReadOnly)
			if err != nil {
				return err
			}
			defer s.Close()

			mode := store.ListText
			if cliout.IsJSON() {
				mode = store.ListJSON
			}
			out, err := s.List(mode)
			if err != nil {
				return err
			}
			if mode == store.ListJSON {
				fmt.Fprintln(cmd.OutOrStdout(), out)
			} else {
				fmt.Fprint(cmd.OutOrStdout(), out)
			}
			return nil
		},
	}
}
