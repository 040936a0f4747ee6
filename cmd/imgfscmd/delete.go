package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prasoul/imgfs/internal/store"
)

func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <imgFS_filename> <imgID>",
		Short: "delete image imgID from imgFS",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store.Open(args[0], store.ReadWrite)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Delete(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "image %s deleted\n", args[1])
			return nil
		},
	}
}
