package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/mark3labs/stepform/internal/stepform"
	"github.com/mark3labs/stepform/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

var snapshotFlags struct {
	all bool
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect and clear saved form progress",
}

var snapshotListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved forms",
	Args:  cobra.NoArgs,
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store storage.Store, codec stepform.Codec, args []string) error {
		return listSnapshots(ctx, cmd.OutOrStdout(), store, codec)
	}),
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <key>",
	Short: "Print a saved form as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store storage.Store, codec stepform.Codec, args []string) error {
		return showSnapshot(ctx, cmd.OutOrStdout(), store, codec, args[0])
	}),
}

var snapshotClearCmd = &cobra.Command{
	Use:   "clear [key]",
	Short: "Delete saved progress for a key, or every key with --all",
	Args: func(cmd *cobra.Command, args []string) error {
		if snapshotFlags.all {
			return cobra.NoArgs(cmd, args)
		}
		return cobra.ExactArgs(1)(cmd, args)
	},
	RunE: withStore(func(ctx context.Context, cmd *cobra.Command, store storage.Store, codec stepform.Codec, args []string) error {
		return clearSnapshots(ctx, cmd.OutOrStdout(), store, args, snapshotFlags.all)
	}),
}

func init() {
	snapshotClearCmd.Flags().BoolVarP(&snapshotFlags.all, "all", "a", false, "Clear every saved form")

	snapshotCmd.AddCommand(snapshotListCmd)
	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotClearCmd)
}

type storeFunc func(ctx context.Context, cmd *cobra.Command, store storage.Store, codec stepform.Codec, args []string) error

// withStore opens the configured backend around fn.
func withStore(fn storeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		codec, err := stepform.CodecByName(cfg.Codec)
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		store, closeStore, err := openStore(ctx, afero.NewOsFs(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = closeStore() }()

		return fn(ctx, cmd, store, codec, args)
	}
}

func listSnapshots(ctx context.Context, w io.Writer, store storage.Store, codec stepform.Codec) error {
	keys, err := storage.Keys(ctx, store)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		fmt.Fprintln(w, "No saved forms.")
		return nil
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tSTEP\tDONE\tFIELDS\tSAVED")
	for _, key := range keys {
		snap, err := readSnapshot(ctx, store, codec, key)
		if err != nil {
			fmt.Fprintf(tw, "%s\t-\t-\t-\t%v\n", key, err)
			continue
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n",
			key, snap.ActiveStep+1, len(snap.CompletedSteps), len(snap.FormData),
			snap.SavedAt.Local().Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}

func showSnapshot(ctx context.Context, w io.Writer, store storage.Store, codec stepform.Codec, key string) error {
	snap, err := readSnapshot(ctx, store, codec, key)
	if err != nil {
		return err
	}
	b, err := stepform.JSONCodec{}.Encode(snap)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}

func clearSnapshots(ctx context.Context, w io.Writer, store storage.Store, args []string, all bool) error {
	keys := args
	if all {
		var err error
		keys, err = storage.Keys(ctx, store)
		if err != nil {
			return err
		}
	}

	var errs []error
	for _, key := range keys {
		if err := store.Remove(ctx, key); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", key, err))
			continue
		}
		fmt.Fprintf(w, "Cleared %s\n", key)
	}
	return errors.Join(errs...)
}

// readSnapshot loads key. A route such as "/admin/students/new" is accepted
// in place of the key it maps to.
func readSnapshot(ctx context.Context, store storage.Store, codec stepform.Codec, key string) (stepform.Snapshot, error) {
	if strings.HasPrefix(key, "/") {
		key = stepform.KeyForRoute(key)
	}
	b, err := store.Get(ctx, key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return stepform.Snapshot{}, fmt.Errorf("no saved form under %q", key)
		}
		return stepform.Snapshot{}, err
	}
	snap, err := codec.Decode(b)
	if err != nil {
		return stepform.Snapshot{}, fmt.Errorf("%s: %w", key, err)
	}
	return snap, nil
}
