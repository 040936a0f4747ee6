package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/prasoul/imgfs/internal/ferrors"
	"github.com/prasoul/imgfs/internal/store"
)

func newReadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "read <imgFS_filename> <imgID> [original|orig|thumbnail|thumb|small]",
		Short: "read an image from the imgFS and save it to a file",
		Args:  cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			resName := "original"
			if len(args) == 3 {
				resName = args[2]
			}
			res, ok := store.ParseResolution(resName)
			if !ok {
				return ferrors.New(ferrors.InvalidArgument, fmt.Sprintf("unknown resolution %q", resName))
			}

			s, err := store.Open(args[0], store.ReadWrite)
			if err != nil {
				return err
			}
			defer s.Close()

			blob, err := s.Read(args[1], res)
			if err != nil {
				return err
			}

			outName := fmt.Sprintf("%s_%s.jpg", args[1], res.Suffix())
			if err := os.WriteFile(outName, blob, 0o644); err != nil {
				return ferrors.Wrap(ferrors.IO, "writing output file", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d bytes written to %s\n", len(blob), outName)
			return nil
		},
	}
}
