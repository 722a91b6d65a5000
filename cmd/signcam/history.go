package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ayusman/signcam/internal/store"
	"github.com/spf13/cobra"
)

func newHistoryCmd(opts *options) *cobra.Command {
	var (
		session string
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded sessions or the signs recognized in one",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.New(opts.cfg.DBPath)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			if session != "" {
				return printPredictions(os.Stdout, st, session)
			}
			return printSessions(os.Stdout, st, limit)
		},
	}
	cmd.Flags().StringVar(&session, "session", "", "show the predictions of this session")
	cmd.Flags().IntVar(&limit, "limit", 20, "number of sessions to list")
	return cmd
}

func printSessions(out io.Writer, st *store.Store, limit int) error {
	sessions, err := st.Sessions().List()
	if err != nil {
		return fmt.Errorf("list sessions: %w", err)
	}
	if len(sessions) == 0 {
		fmt.Fprintln(out, "No sessions recorded.")
		return nil
	}
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tCAMERA\tFRAMES\tSTARTED\tENDED")
	fmt.Fprintln(w, "--\t------\t------\t-------\t-----")
	for _, s := range sessions {
		ended := "-"
		if s.EndedAt != nil {
			ended = s.EndedAt.Local().Format("2006-01-02 15:04:05")
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%s\t%s\n", s.ID, s.CameraID, s.Frames, s.StartedAt.Local().Format("2006-01-02 15:04:05"), ended)
	}
	return w.Flush()
}

func printPredictions(out io.Writer, st *store.Store, sessionID string) error {
	if _, err := st.Sessions().GetByID(sessionID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("session %s not found", sessionID)
		}
		return err
	}

	preds, err := st.Predictions().ListBySession(sessionID)
	if err != nil {
		return fmt.Errorf("list predictions: %w", err)
	}
	if len(preds) == 0 {
		fmt.Fprintln(out, "No signs recognized in this session.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "TIME\tLABEL\tCONFIDENCE\tHAND")
	fmt.Fprintln(w, "----\t-----\t----------\t----")
	for _, p := range preds {
		fmt.Fprintf(w, "%s\t%s\t%.2f\t%s\n", p.CreatedAt.Local().Format("15:04:05.000"), p.Label, p.Confidence, p.Handedness)
	}
	return w.Flush()
}
