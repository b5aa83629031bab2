package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/cory-johannsen/worldseed/internal/importer"
	"github.com/cory-johannsen/worldseed/internal/world"
)

var errAlreadyInitialized = errors.New("world is already initialized (use --force or reset)")

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show whether the world is initialized and what the packs hold",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				done, err := d.Initializer.Initialized(ctx)
				if err != nil {
					return err
				}
				summary, err := d.Initializer.Summarize(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "%s (%s)\n", d.Config.World.Title, d.Config.World.Module)
				fmt.Fprintf(out, "initialized: %v\n", done)
				printSummary(out, summary)
				return nil
			})
		},
	}
}

func newPromptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prompt",
		Short: "Ask whether to initialize the world, as shown to a game master on first load",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				show, err := d.Initializer.NeedsPrompt(ctx, true)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if !show {
					fmt.Fprintln(out, "world is already initialized")
					return nil
				}
				summary, err := d.Initializer.Summarize(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintln(out, summary.Prompt(d.Config.World.Title))

				switch answer := ask(cmd.InOrStdin(), out, "[i]nitialize / [s]kip: "); answer {
				case "i", "initialize":
					report, err := d.Initializer.Initialize(ctx)
					printReport(out, report)
					return err
				case "s", "skip":
					if err := d.Initializer.Skip(ctx); err != nil {
						return err
					}
					fmt.Fprintln(out, "Skipped Initialization.")
					return nil
				default:
					fmt.Fprintln(out, "no choice made; the prompt will be shown again")
					return nil
				}
			})
		},
	}
}

func newInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Import the content packs into the world",
		Long: "Marks the world initialized and imports folders, journals, actors, items and scenes.\n" +
			"Running it again with --force imports everything a second time.",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				done, err := d.Initializer.Initialized(ctx)
				if err != nil {
					return err
				}
				if done && !force {
					return errAlreadyInitialized
				}
				report, err := d.Initializer.Initialize(ctx)
				printReport(cmd.OutOrStdout(), report)
				return err
			})
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Import even if the world is already initialized")
	return cmd
}

func newSkipCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "skip",
		Short: "Mark the world initialized without importing",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				return d.Initializer.Skip(ctx)
			})
		},
	}
}

func newResetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Clear the initialized flag so the prompt is shown again",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			return withDeps(ctx, func(d *Deps) error {
				if err := d.Initializer.Reset(ctx); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "initialized flag cleared")
				return nil
			})
		},
	}
}

// ask prints question and returns the first answer line, lowercased.
func ask(in io.Reader, out io.Writer, question string) string {
	fmt.Fprint(out, question)
	scanner := bufio.NewScanner(in)
	if !scanner.Scan() {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(scanner.Text()))
}

func printSummary(out io.Writer, s importer.Summary) {
	fmt.Fprintf(out, "folders:  %d\n", s.Folders)
	fmt.Fprintf(out, "journals: %d\n", s.Journals)
	fmt.Fprintf(out, "actors:   %d\n", s.Actors)
	fmt.Fprintf(out, "items:    %d\n", s.Items)
	fmt.Fprintf(out, "scenes:   %d\n", s.Scenes)
}

func printReport(out io.Writer, r *importer.Report) {
	if r == nil {
		return
	}
	fmt.Fprintf(out, "folders created: %d\n", r.Folders)
	for _, t := range world.DocumentTypes {
		fmt.Fprintf(out, "%s created: %d\n", t, r.Created[t])
	}
	if len(r.Problems) == 0 {
		return
	}
	fmt.Fprintf(out, "problems: %d\n", len(r.Problems))
	for _, p := range r.Problems {
		fmt.Fprintf(out, "  [%s/%s] %v\n", p.Stage, p.Tier, p.Err)
	}
}
