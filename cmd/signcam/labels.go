package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ayusman/signcam/internal/app"
	"github.com/ayusman/signcam/internal/store"
	"github.com/spf13/cobra"
)

func newLabelsCmd(opts *options) *cobra.Command {
	var sync bool

	cmd := &cobra.Command{
		Use:   "labels",
		Short: "Print the class index to label mapping read from the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			labels, err := app.LoadLabels(opts.cfg)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "INDEX\tLABEL")
			fmt.Fprintln(w, "-----\t-----")
			for i, l := range labels.Classes() {
				fmt.Fprintf(w, "%d\t%s\n", i, l)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if !sync {
				return nil
			}
			st, err := store.New(opts.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			changed, err := st.Labels().Sync(labels.Classes())
			if err != nil {
				return fmt.Errorf("sync labels: %w", err)
			}
			if changed {
				fmt.Println("Stored label ordering replaced.")
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&sync, "sync", false, "also store the mapping in the database")
	return cmd
}
