package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/worldseed/internal/importer"
	"github.com/cory-johannsen/worldseed/internal/pack"
	"github.com/cory-johannsen/worldseed/internal/world"
)

type exportFlags struct {
	manifest string
	packs    string
}

func newExportCmd() *cobra.Command {
	var flags exportFlags

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Annotate the world with name flags and write it out as a manifest and packs",
		Long: "Rewrites every folder, document, note and token reference as a name flag,\n" +
			"then writes the folder manifest and one pack per document type.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.manifest, "manifest", "m", "", "Manifest output path (default: world.manifest)")
	cmd.Flags().StringVarP(&flags.packs, "packs", "p", "", "Pack output directory (default: world.packs_dir)")
	return cmd
}

func runExport(cmd *cobra.Command, flags exportFlags) error {
	ctx := cmd.Context()
	return withDeps(ctx, func(d *Deps) error {
		manifestPath := flags.manifest
		if manifestPath == "" {
			manifestPath = d.Config.World.Manifest
		}
		packsDir := flags.packs
		if packsDir == "" {
			packsDir = d.Config.World.PacksDir
		}

		exporter := importer.NewExporter(d.World, d.Config.World.Module, d.Logger)
		report, err := exporter.Annotate(ctx)
		if err != nil {
			return err
		}
		capture, err := exporter.Capture(ctx)
		if err != nil {
			return err
		}

		if err := pack.WriteManifest(manifestPath, capture.Manifest); err != nil {
			return err
		}
		names := d.Config.World.PackNames()
		packNames := map[world.DocumentType]string{
			world.JournalEntry: names.Journals,
			world.Actor:        names.Actors,
			world.Item:         names.Items,
			world.Scene:        names.Scenes,
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "wrote %d folders to %s\n", len(capture.Manifest), manifestPath)
		for _, t := range world.DocumentTypes {
			docs := capture.Documents[t]
			if err := pack.WriteFile(packsDir, packNames[t], docs); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %d %s to %s\n", len(docs), t, filepath.Join(packsDir, packNames[t]+pack.Extension))
		}
		printReport(out, report)
		return nil
	})
}

func newMergeJournalsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "merge-journals <folder>",
		Short: "Merge the first text and image page of every journal in a folder into one entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				merged, err := importer.MergeJournals(ctx, d.World, args[0], d.Logger)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "created %q (%s)\n", merged.Name, merged.ID)
				return nil
			})
		},
	}
}
