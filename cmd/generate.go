package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pgokul695/Winterthon/internal/questiongen"
	"github.com/pgokul695/Winterthon/internal/quiz"
	"github.com/pgokul695/Winterthon/internal/source"
	"github.com/pgokul695/Winterthon/internal/ui/components"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate questions from a text file, PDF or YouTube video",
	Example: `  winterthon generate --text lecture.txt --types SOL=3,TF=2
  winterthon generate --pdf notes.pdf --types MCQ=5 --mode gemini
  winterthon generate --youtube https://youtu.be/dQw4w9WgXcQ --start 60 --end 600`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		typesFlag, _ := cmd.Flags().GetString("types")
		counts, err := parseTypeCounts(typesFlag)
		if err != nil {
			return err
		}

		text, origin, err := readSource(cmd)
		if err != nil {
			return err
		}

		st, err := openStores(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		gen, reg, err := newGenerator(cmd, st)
		if err != nil {
			return err
		}

		mode, _ := cmd.Flags().GetString("mode")
		if mode == "" {
			mode = reg.Default()
		}
		model, _ := cmd.Flags().GetString("model")

		res, err := gen.GenerateBatch(ctx, questiongen.BatchRequest{
			SourceText:    text,
			QuestionTypes: counts,
			Model:         quiz.ModelSelector{Provider: mode, Name: model},
			Origin:        origin,
		})
		if err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(res)
		}

		printBatch(res)
		return nil
	},
}

// parseTypeCounts reads "SOL=3,TF=2" into a count map.
func parseTypeCounts(s string) (map[quiz.QuestionType]int, error) {
	counts := make(map[quiz.QuestionType]int)
	for part := range strings.SplitSeq(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		code, n, ok := strings.Cut(part, "=")
		if !ok {
			n = "1"
		}
		count, err := strconv.Atoi(strings.TrimSpace(n))
		if err != nil {
			return nil, fmt.Errorf("invalid count in %q: %w", part, err)
		}
		counts[quiz.QuestionType(strings.ToUpper(strings.TrimSpace(code)))] = count
	}
	return counts, nil
}

func readSource(cmd *cobra.Command) (string, *quiz.Origin, error) {
	textPath, _ := cmd.Flags().GetString("text")
	pdfPath, _ := cmd.Flags().GetString("pdf")
	video, _ := cmd.Flags().GetString("youtube")

	set := 0
	for _, v := range []string{textPath, pdfPath, video} {
		if v != "" {
			set++
		}
	}
	if set != 1 {
		return "", nil, fmt.Errorf("exactly one of --text, --pdf or --youtube is required")
	}

	ctx := cmd.Context()
	fetcher := source.NewFetcher()

	switch {
	case textPath != "":
		var data []byte
		var err error
		if textPath == "-" {
			data, err = io.ReadAll(os.Stdin)
		} else {
			data, err = os.ReadFile(textPath)
		}
		if err != nil {
			return "", nil, fmt.Errorf("read transcript: %w", err)
		}
		return string(data), &quiz.Origin{Kind: quiz.OriginText, FileName: textPath}, nil

	case pdfPath != "":
		text, err := fetcher.PDFText(ctx, pdfPath)
		if err != nil {
			return "", nil, err
		}
		return text, &quiz.Origin{Kind: quiz.OriginPDF, FileName: pdfPath}, nil

	default:
		id, err := source.ExtractVideoID(video)
		if err != nil {
			return "", nil, err
		}
		start, _ := cmd.Flags().GetFloat64("start")
		end, _ := cmd.Flags().GetFloat64("end")
		tr, err := fetcher.YouTubeTranscript(ctx, id, source.Window{Start: start, End: end})
		if err != nil {
			return "", nil, err
		}
		return tr.Text, &tr.Origin, nil
	}
}

func printBatch(res *questiongen.BatchResult) {
	sep := strings.Repeat("─", 60)

	for i, q := range res.Questions {
		fmt.Printf("%d. [%s] %s\n", i+1, q.QuestionType, q.QuestionText)
		for j, opt := range q.Options {
			mark := " "
			if opt.Correct {
				mark = "✓"
			}
			fmt.Printf("   %s %s) %s\n", mark, components.OptionLabel(j), opt.Text)
		}
		fmt.Println()
	}

	failed := 0
	for _, p := range res.Prompts {
		if p.Failed() {
			failed++
		}
	}

	fmt.Println(sep)
	fmt.Printf("Batch:     %s\n", res.BatchID)
	fmt.Printf("Model:     %s/%s\n", res.Model.Provider, res.Model.Name)
	fmt.Printf("Questions: %d generated, %d failed attempts\n", res.QuestionsGenerated, failed)
	fmt.Printf("Time:      %.1fs\n", res.TotalElapsedSeconds)
}

func init() {
	generateCmd.Flags().String("text", "", "Transcript file to read (- for stdin)")
	generateCmd.Flags().String("pdf", "", "PDF file to extract text from")
	generateCmd.Flags().String("youtube", "", "YouTube URL or video id")
	generateCmd.Flags().Float64("start", 0, "Start of the caption window in seconds")
	generateCmd.Flags().Float64("end", 0, "End of the caption window in seconds (0 = end of video)")
	generateCmd.Flags().StringP("types", "t", "SOL=3", "Question types and counts, e.g. SOL=3,TF=2")
	generateCmd.Flags().StringP("mode", "m", "", "LLM provider (default from WINTERTHON_LLM_PROVIDER)")
	generateCmd.Flags().String("model", "", "Model name (default: the provider's default model)")
	generateCmd.Flags().String("format", string(questiongen.FormatText), "Completion format requested from the model: text or json")
	generateCmd.Flags().Bool("json", false, "Print the batch result as JSON")
}
