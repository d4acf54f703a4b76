package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cory-johannsen/eoschar/internal/creation"
	"github.com/cory-johannsen/eoschar/internal/frontend/console"
	"github.com/cory-johannsen/eoschar/internal/game/dice"
	"github.com/cory-johannsen/eoschar/internal/render"
	"github.com/cory-johannsen/eoschar/internal/storage/file"
)

var (
	randomWalk bool
	seed       uint64
	outPath    string
)

var newCmd = &cobra.Command{
	Use:   "new",
	Short: "Create a character",
	Long:  `Walk every creation tree, interactively or at random, then save the character.`,
	Args:  cobra.NoArgs,
	RunE:  runNew,
}

var loadCmd = &cobra.Command{
	Use:   "load <file|id>",
	Short: "Restore a saved character and print its sheet",
	Args:  cobra.ExactArgs(1),
	RunE:  runLoad,
}

var renderCmd = &cobra.Command{
	Use:   "render <file|id> <out.txt>",
	Short: "Restore a saved character and write its sheet to a file",
	Args:  cobra.ExactArgs(2),
	RunE:  runRender,
}

var treeCmd = &cobra.Command{
	Use:   "tree",
	Short: "Print the creation trees",
	Args:  cobra.NoArgs,
	RunE:  runTree,
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved characters",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a saved character",
	Args:  cobra.ExactArgs(1),
	RunE:  runDelete,
}

func init() {
	newCmd.Flags().BoolVar(&randomWalk, "random", false, "make every decision at random")
	newCmd.Flags().Uint64Var(&seed, "seed", 0, "seed for --random and 'random' answers (unset = unpredictable)")
	newCmd.Flags().StringVar(&outPath, "out", "", "also write the character document to this file")
}

// withApp runs fn with a ready app and an interrupt-aware context.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, a *app) error) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()
	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer a.close()
	if err := fn(ctx, a); err != nil {
		a.logger.Error("command failed", zap.String("command", cmd.Name()), zap.Error(err))
		return err
	}
	return nil
}

// source returns a seeded source when --seed was given, any value included.
func source(cmd *cobra.Command) dice.Source {
	if cmd.Flags().Changed("seed") {
		return dice.NewSeededSource(seed)
	}
	return dice.NewCryptoSource()
}

func runNew(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		var sel creation.Selector
		if randomWalk {
			sel = creation.NewRandomSelector(source(cmd), a.catalog)
		} else {
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, console.Colorize(console.BrightCyan, "=== Character Creation ==="))
			fmt.Fprintln(out, "Type 'abort' at any prompt to stop.")
			sel = console.NewPrompter(cmd.InOrStdin(), out, source(cmd), a.catalog, a.logger)
		}

		s := a.walker.NewSheet()
		if err := a.walker.Run(ctx, s, sel); err != nil {
			if errors.Is(err, creation.ErrAbort) {
				fmt.Fprintln(cmd.OutOrStdout(), console.Colorize(console.Yellow, "Character creation aborted; nothing was saved."))
				return nil
			}
			return fmt.Errorf("creating character: %w", err)
		}

		doc, err := creation.Save(s)
		if err != nil {
			return err
		}
		if err := a.store.Save(ctx, doc); err != nil {
			return fmt.Errorf("saving character: %w", err)
		}
		if outPath != "" {
			if err := file.WriteDocument(outPath, doc); err != nil {
				return fmt.Errorf("writing %s: %w", outPath, err)
			}
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Text(s.Snapshot()))
		fmt.Fprintf(cmd.OutOrStdout(), "Saved %s as %s\n", doc.Name, doc.ID)
		return nil
	})
}

func runLoad(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		doc, err := a.document(ctx, args[0])
		if err != nil {
			return err
		}
		s, err := a.walker.Restore(ctx, doc)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), render.Text(s.Snapshot()))
		return nil
	})
}

func runRender(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		doc, err := a.document(ctx, args[0])
		if err != nil {
			return err
		}
		s, err := a.walker.Restore(ctx, doc)
		if err != nil {
			return err
		}
		if err := render.WriteFile(s, args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", args[1])
		return nil
	})
}

func runTree(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(_ context.Context, a *app) error {
		for _, tree := range a.walker.Forest() {
			if err := tree.Display(cmd.OutOrStdout()); err != nil {
				return err
			}
		}
		return nil
	})
}

func runList(cmd *cobra.Command, _ []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		entries, err := a.store.List(ctx)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No saved characters.")
		}
		for _, e := range entries {
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", e.ID, e.Name)
		}
		return nil
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, a *app) error {
		if err := a.store.Delete(ctx, args[0]); err != nil {
			return fmt.Errorf("deleting %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", args[0])
		return nil
	})
}
