package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/prasoul/imgfs/internal/config"
	"github.com/prasoul/imgfs/internal/ferrors"
	"github.com/prasoul/imgfs/internal/store"
)

func newCreateCmd() *cobra.Command {
	var maxFiles uint32
	var thumbRes, smallRes []uint

	cmd := &cobra.Command{
		Use:   "create <imgFS_filename>",
		Short: "create a new imgFS",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return ferrors.Wrap(ferrors.IO, "loading config defaults", err)
			}
			opts := cfg.CreateOptions()

			if cmd.Flags().Changed("max_files") {
				opts.MaxFiles = maxFiles
			}
			if cmd.Flags().Changed("thumb_res") {
				if len(thumbRes) != 2 {
					return ferrors.New(ferrors.InvalidArgument, "-thumb_res takes exactly two values")
				}
				opts.ThumbResW, opts.ThumbResH = uint16(thumbRes[0]), uint16(thumbRes[1])
			}
			if cmd.Flags().Changed("small_res") {
				if len(smallRes) != 2 {
					return ferrors.New(ferrors.InvalidArgument, "-small_res takes exactly two values")
				}
				opts.SmallResW, opts.SmallResH = uint16(smallRes[0]), uint16(smallRes[1])
			}

			if err := store.Create(args[0], opts); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imgFS file %s created: max_files=%d, thumb_res=%dx%d, small_res=%dx%d\n",
				args[0], opts.MaxFiles, opts.ThumbResW, opts.ThumbResH, opts.SmallResW, opts.SmallResH)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&maxFiles, "max_files", store.DefaultMaxFiles,
		fmt.Sprintf("maximum number of files (default %d)", store.DefaultMaxFiles))
	cmd.Flags().UintSliceVar(&thumbRes, "thumb_res", nil,
		fmt.Sprintf("resolution for thumbnail images, X,Y (default %d,%d, max %d,%d)",
			store.DefaultThumbRes, store.DefaultThumbRes, store.MaxThumbRes, store.MaxThumbRes))
	cmd.Flags().UintSliceVar(&smallRes, "small_res", nil,
		fmt.Sprintf("resolution for small images, X,Y (default %d,%d, max %d,%d)",
			store.DefaultSmallRes, store.DefaultSmallRes, store.MaxSmallRes, store.MaxSmallRes))

	return cmd
}
