package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/ashwch/jarvis/internal/journal"
	"github.com/spf13/cobra"
)

func newStatsCmd(a *app) *cobra.Command {
	var reset bool
	var recent int
	cmd := &cobra.Command{
		Use:     "stats",
		Aliases: []string{"statistik"},
		Short:   "Summarize routed utterances from the journal",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			if j == nil {
				return errors.New("the journal is disabled (journal.enabled = false)")
			}
			if reset {
				if err := j.Clear(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(a.stdout, "journal cleared")
				return err
			}

			summary := j.Summary()
			if a.flags.JSON {
				payload := struct {
					journal.Summary
					Recent []journal.Entry `json:"recent,omitempty"`
				}{Summary: summary}
				if recent > 0 {
					payload.Recent = j.Entries(recent)
				}
				encoded, err := json.MarshalIndent(payload, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.stdout, string(encoded))
				return err
			}
			writeSummary(a.stdout, summary)
			if recent > 0 {
				fmt.Fprintln(a.stdout, "recent:")
				for _, e := range j.Entries(recent) {
					fmt.Fprintf(a.stdout, "  %s  %-12s %s\n", e.At.Local().Format(time.DateTime), e.Status, e.Utterance)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&reset, "reset", false, "clear the journal")
	cmd.Flags().IntVarP(&recent, "recent", "n", 0, "also list the last n utterances")
	return cmd
}

func writeSummary(w io.Writer, s journal.Summary) {
	fmt.Fprintf(w, "total: %d\n", s.Total)
	if s.Total == 0 {
		return
	}
	fmt.Fprintf(w, "period: %s - %s\n", s.First.Local().Format(time.DateTime), s.Last.Local().Format(time.DateTime))
	fmt.Fprintf(w, "average confidence: %.2f\n", s.AverageConfidence)
	fmt.Fprintf(w, "average time: %.0f ms\n", s.AverageElapsedMS)
	fmt.Fprintln(w, "status:")
	for _, sc := range s.Statuses {
		fmt.Fprintf(w, "  %-14s %5d  %5.1f%%\n", sc.Status, sc.Count, sc.Rate)
	}
	if len(s.TopActions) > 0 {
		fmt.Fprintln(w, "top actions:")
		for _, ac := range s.TopActions {
			fmt.Fprintf(w, "  %-14s %5d\n", ac.Action, ac.Count)
		}
	}
}
