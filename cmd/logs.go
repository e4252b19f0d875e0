package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/store"
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Inspect the batch log",
}

var logsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent batches, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.logs.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list batches: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No batches logged yet.")
			return nil
		}

		fmt.Printf("%-36s  %-19s  %-28s  %-16s  %5s  %7s\n",
			"ID", "Timestamp", "Mode/Model", "Types", "Qs", "Secs")
		fmt.Println(strings.Repeat("\u2500", 122))

		shown := 0
		for i := len(records) - 1; i >= 0; i-- {
			r := records[i]
			fmt.Printf("%-36s  %-19s  %-28s  %-16s  %5d  %7.1f\n",
				r.ID,
				r.Timestamp.Local().Format("2006-01-02 15:04:05"),
				truncate(r.Mode+"/"+r.Model, 28),
				truncate(formatTypeCounts(r.QuestionTypes), 16),
				r.QuestionsGenerated,
				r.TotalElapsedSeconds,
			)
			shown++
			if limit > 0 && shown == limit {
				break
			}
		}
		return nil
	},
}

var logsViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "View one batch with its prompts and responses",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		r, err := st.logs.FindByID(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get batch: %w", err)
		}
		if r == nil {
			return fmt.Errorf("batch %s not found", args[0])
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(r)
		}

		sep := strings.Repeat("\u2500", 60)

		fmt.Printf("ID:        %s\n", r.ID)
		fmt.Printf("Time:      %s\n", r.Timestamp.Local().Format("2006-01-02 15:04:05"))
		fmt.Printf("Model:     %s/%s\n", r.Mode, r.Model)
		fmt.Printf("Types:     %s\n", formatTypeCounts(r.QuestionTypes))
		fmt.Printf("Questions: %d in %.1fs\n", r.QuestionsGenerated, r.TotalElapsedSeconds)
		if r.Origin != nil {
			fmt.Printf("Source:    %s\n", describeOrigin(r.Origin))
		}

		fmt.Println()
		fmt.Println(sep)
		fmt.Println("TRANSCRIPT")
		fmt.Println(sep)
		fmt.Println(r.Transcript)

		for i, p := range r.Prompts {
			status := "ok"
			if p.Failed() {
				status = "FAILED: " + p.Error
			}
			fmt.Println(sep)
			fmt.Printf("ATTEMPT %d  [%s]  %.1fs  %s\n", i+1, p.QuestionType, p.ElapsedSeconds, status)
			fmt.Println(sep)
			fmt.Println(p.Response)
		}
		return nil
	},
}

var logsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete every logged batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to clear the batch log without --yes")
		}

		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.logs.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("clear batches: %w", err)
		}
		fmt.Println("Batch log cleared.")
		return nil
	},
}

var logsPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete batches logged before a cutoff",
	RunE: func(cmd *cobra.Command, args []string) error {
		age, _ := cmd.Flags().GetDuration("older-than")
		if age <= 0 {
			return fmt.Errorf("--older-than must be positive")
		}

		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		pruner, ok := st.logs.(store.Pruner)
		if !ok {
			return fmt.Errorf("batch log backend cannot prune")
		}
		n, err := pruner.Prune(cmd.Context(), time.Now().Add(-age))
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d batch(es).\n", n)
		return nil
	},
}

var logsStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Summarise generation success by model and question type",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		records, err := st.logs.List(cmd.Context())
		if err != nil {
			return fmt.Errorf("list batches: %w", err)
		}
		if len(records) == 0 {
			fmt.Println("No batches logged yet.")
			return nil
		}

		byModel := tallyAttempts(records, func(r quiz.BatchLogRecord, _ quiz.PromptLogEntry) string {
			return r.Mode + "/" + r.Model
		})
		byType := tallyAttempts(records, func(_ quiz.BatchLogRecord, p quiz.PromptLogEntry) string {
			return string(p.QuestionType)
		})

		fmt.Printf("Batches: %d\n\n", len(records))
		printTally("Model", byModel)
		fmt.Println()
		printTally("Type", byType)
		return nil
	},
}

type attemptTally struct {
	Key       string
	Attempts  int
	Succeeded int
	Seconds   float64
}

func tallyAttempts(records []quiz.BatchLogRecord, key func(quiz.BatchLogRecord, quiz.PromptLogEntry) string) []attemptTally {
	idx := make(map[string]*attemptTally)
	for _, r := range records {
		for _, p := range r.Prompts {
			k := key(r, p)
			t, ok := idx[k]
			if !ok {
				t = &attemptTally{Key: k}
				idx[k] = t
			}
			t.Attempts++
			t.Seconds += p.ElapsedSeconds
			if !p.Failed() {
				t.Succeeded++
			}
		}
	}

	out := make([]attemptTally, 0, len(idx))
	for _, t := range idx {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func printTally(label string, rows []attemptTally) {
	fmt.Printf("%-32s  %8s  %8s  %8s  %8s\n", label, "Attempts", "OK", "Rate", "Avg s")
	fmt.Println(strings.Repeat("\u2500", 72))
	for _, t := range rows {
		rate, avg := 0.0, 0.0
		if t.Attempts > 0 {
			rate = float64(t.Succeeded) / float64(t.Attempts) * 100
			avg = t.Seconds / float64(t.Attempts)
		}
		fmt.Printf("%-32s  %8d  %8d  %7.0f%%  %8.1f\n",
			truncate(t.Key, 32), t.Attempts, t.Succeeded, rate, avg)
	}
}

func formatTypeCounts(counts map[quiz.QuestionType]int) string {
	parts := make([]string, 0, len(counts))
	for qt, n := range counts {
		parts = append(parts, fmt.Sprintf("%s=%d", qt, n))
	}
	sort.Strings(parts)
	return strings.Join(parts, ",")
}

func describeOrigin(o *quiz.Origin) string {
	switch o.Kind {
	case quiz.OriginPDF:
		return "pdf " + o.FileName
	case quiz.OriginYouTube:
		s := fmt.Sprintf("youtube %s (%s)", o.VideoID, o.Method)
		if o.Title != "" {
			s += " " + o.Title
		}
		return s
	}
	if o.FileName != "" {
		return "text " + o.FileName
	}
	return string(o.Kind)
}

func init() {
	logsListCmd.Flags().IntP("limit", "n", 20, "Number of batches to show (0 = all)")
	logsViewCmd.Flags().Bool("json", false, "Print the full record as JSON")
	logsClearCmd.Flags().Bool("yes", false, "Confirm deletion")
	logsPruneCmd.Flags().Duration("older-than", 30*24*time.Hour, "Remove batches older than this")

	logsCmd.AddCommand(logsListCmd)
	logsCmd.AddCommand(logsViewCmd)
	logsCmd.AddCommand(logsClearCmd)
	logsCmd.AddCommand(logsPruneCmd)
	logsCmd.AddCommand(logsStatsCmd)
}
