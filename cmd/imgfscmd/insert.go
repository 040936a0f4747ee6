package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prasoul/imgfs/internal/ferrors"
	"github.com/prasoul/imgfs/internal/store"
)

func newInsertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insert <imgFS_filename> <imgID> <filename>",
		Short: "insert a new image in the imgFS",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(args[2])
			if err != nil {
				return ferrors.Wrap(ferrors.IO, "reading image file", err)
			}

			s, err := store.Open(args[0], store.ReadWrite)
			if err != nil {
				return err
			}
			defer s.Close()

			if err := s.Insert(blob, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "image %s inserted\n", args[1])
			return nil
		},
	}
}
