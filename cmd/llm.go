package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgokul695/Winterthon/internal/llm"
	"github.com/pgokul695/Winterthon/internal/store"
)

const questionGenPurpose = "question-gen:"

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the model calls behind each batch",
	Long: `Every model call made while generating questions is recorded in the
sqlite database with its prompt, completion, token counts and latency,
tagged with the batch it belonged to.`,
}

var llmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recorded model calls, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := store.QueryOpts{}
		opts.Limit, _ = cmd.Flags().GetInt("limit")
		opts.BatchID, _ = cmd.Flags().GetString("batch")
		if qt, _ := cmd.Flags().GetString("type"); qt != "" {
			opts.Purpose = questionGenPurpose + strings.ToUpper(qt)
		}
		failedOnly, _ := cmd.Flags().GetBool("failed")

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		events, err := s.EventRepo().QueryLLMEvents(cmd.Context(), opts)
		if err != nil {
			return fmt.Errorf("query model calls: %w", err)
		}

		shown := 0
		for _, e := range events {
			if failedOnly && e.Success {
				continue
			}
			if shown == 0 {
				fmt.Printf("%-5s  %-19s  %-4s  %-8s  %-24s  %6s  %6s  %7s  %s\n",
					"ID", "Timestamp", "Type", "Batch", "Model", "In", "Out", "Ms", "OK")
				fmt.Println(strings.Repeat("─", 104))
			}
			fmt.Printf("%-5d  %-19s  %-4s  %-8s  %-24s  %6d  %6d  %7d  %s\n",
				e.ID,
				e.Timestamp.Local().Format("2006-01-02 15:04:05"),
				strings.TrimPrefix(e.Purpose, questionGenPurpose),
				truncate(e.BatchID, 8),
				truncate(e.Model, 24),
				e.InputTokens,
				e.OutputTokens,
				e.LatencyMs,
				checkMark(e.Success),
			)
			shown++
		}
		if shown == 0 {
			fmt.Println("No model calls recorded.")
		}
		return nil
	},
}

var llmViewCmd = &cobra.Command{
	Use:   "view <id>",
	Short: "Show the prompt and completion of one model call",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid call id %q", args[0])
		}

		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		e, err := s.EventRepo().GetLLMEvent(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("get model call: %w", err)
		}
		if e == nil {
			return fmt.Errorf("model call %d not found", id)
		}

		fmt.Printf("Call %d  %s  %s/%s  %s\n", e.ID,
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Provider, e.Model, e.Purpose)
		fmt.Printf("%d in / %d out tokens, %dms, ok=%v\n", e.InputTokens, e.OutputTokens, e.LatencyMs, e.Success)
		if e.BatchID != "" {
			fmt.Printf("Batch %s (winterthon logs view %s)\n", e.BatchID, e.BatchID)
		}
		if e.ErrorMessage != "" {
			fmt.Printf("Error: %s\n", e.ErrorMessage)
		}

		printSection("PROMPT", e.RequestBody)
		printSection("COMPLETION", e.ResponseBody)
		return nil
	},
}

var llmStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Token usage per question type and estimated cost per model",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := openEventStore(cmd)
		if err != nil {
			return err
		}
		defer s.Close()

		repo := s.EventRepo()
		byPurpose, err := repo.LLMUsageByPurpose(cmd.Context())
		if err != nil {
			return fmt.Errorf("usage by purpose: %w", err)
		}
		if len(byPurpose) == 0 {
			fmt.Println("No model calls recorded.")
			return nil
		}
		byModel, err := repo.LLMUsageByModel(cmd.Context())
		if err != nil {
			return fmt.Errorf("usage by model: %w", err)
		}

		fmt.Printf("%-16s  %6s  %10s  %10s  %8s\n", "Type", "Calls", "Input", "Output", "Avg Ms")
		fmt.Println(strings.Repeat("─", 58))
		var sum store.Usage
		for _, u := range byPurpose {
			fmt.Printf("%-16s  %6d  %10d  %10d  %8d\n",
				truncate(strings.TrimPrefix(u.Key, questionGenPurpose), 16),
				u.Calls, u.InputTokens, u.OutputTokens, u.AvgLatencyMs)
			sum.Calls += u.Calls
			sum.InputTokens += u.InputTokens
			sum.OutputTokens += u.OutputTokens
		}
		fmt.Println(strings.Repeat("─", 58))
		fmt.Printf("%-16s  %6d  %10d  %10d\n\n", "TOTAL", sum.Calls, sum.InputTokens, sum.OutputTokens)

		fmt.Printf("%-32s  %6s  %10s\n", "Model", "Calls", "Cost (USD)")
		fmt.Println(strings.Repeat("─", 52))
		var total float64
		var unpriced []string
		for _, u := range byModel {
			cost := "?"
			if p, ok := llm.PriceOf(u.Key); ok {
				c := p.USD(u.InputTokens, u.OutputTokens)
				total += c
				cost = formatCost(c)
			} else {
				unpriced = append(unpriced, u.Key)
			}
			fmt.Printf("%-32s  %6d  %10s\n", truncate(u.Key, 32), u.Calls, cost)
		}
		fmt.Println(strings.Repeat("─", 52))
		fmt.Printf("%-32s  %6s  %10s\n", "TOTAL", "", formatCost(total))
		if len(unpriced) > 0 {
			fmt.Printf("\nNo pricing for %s; local models are free.\n", strings.Join(unpriced, ", "))
		}
		return nil
	},
}

func printSection(title, body string) {
	sep := strings.Repeat("─", 60)
	fmt.Printf("\n%s\n%s\n%s\n", sep, title, sep)
	if body == "" {
		body = "(not captured)"
	}
	fmt.Println(body)
}

func checkMark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

// openEventStore opens the sqlite store that holds model call events,
// whichever backend holds the batch log.
func openEventStore(cmd *cobra.Command) (*store.Store, error) {
	dbPath, err := resolveDBPath(cmd)
	if err != nil {
		return nil, fmt.Errorf("resolve database path: %w", err)
	}
	s, err := store.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return s, nil
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}

func init() {
	llmListCmd.Flags().IntP("limit", "n", 20, "Number of calls to show (0 = all)")
	llmListCmd.Flags().StringP("batch", "b", "", "Only calls made for this batch id")
	llmListCmd.Flags().StringP("type", "t", "", "Only calls for this question type (e.g. MCQ)")
	llmListCmd.Flags().Bool("failed", false, "Only failed calls")

	llmCmd.AddCommand(llmListCmd, llmViewCmd, llmStatsCmd)
}
