package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"text/tabwriter"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/ats-screener/internal/ai"
	"github.com/spigell/ats-screener/internal/ai/gemini"
	"github.com/spigell/ats-screener/internal/analysis"
	"github.com/spigell/ats-screener/internal/documents"
	"github.com/spigell/ats-screener/internal/filtering"
	"github.com/spigell/ats-screener/internal/logger"
	"github.com/spigell/ats-screener/internal/secrets"
)

const (
	PromptLeaderboard     = "Show leaderboard"
	PromptCandidateReport = "Show candidate report"
	PromptReportToFile    = "Dump report to file"
	PromptExit            = "Exit"
	PromptBack            = "back"
)

var errExit = errors.New("exit requested")

var prompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptLeaderboard, PromptCandidateReport, PromptReportToFile, PromptExit},
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] RESUME_FILE|DIR...",
	Short: "Score resumes against a job description and rank them",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		analyze(cmd, args)
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().String("jd", "", "file with the job description (.txt or .md)")
	analyzeCmd.Flags().String("jd-text", "", "job description text, used instead of --jd")
	analyzeCmd.Flags().StringP("output", "o", "", "write the JSON report to this file")
	analyzeCmd.Flags().BoolP("yes", "y", false, "do not ask what to do with the results, just print the report")
	analyzeCmd.Flags().Bool("keep-failed", false, "keep candidates that could not be analyzed in the shortlist")
	analyzeCmd.Flags().Bool("ai", false, "ask the AI reviewer for strengths and improvements")
	analyzeCmd.Flags().Int("workers", 0, "number of candidates analyzed concurrently (default is number of CPUs)")
	analyzeCmd.Flags().Int("top", 0, "keep only the best N candidates")
	analyzeCmd.Flags().Float64("minimum-score", 0, "drop candidates scoring under this ATS score")
	analyzeCmd.Flags().StringP("exclude-file", "e", "", "file with candidate names to exclude, one per line")

	viper.BindPFlag("ai.enabled", analyzeCmd.Flags().Lookup("ai"))
	viper.BindPFlag("analysis.workers", analyzeCmd.Flags().Lookup("workers"))
	viper.BindPFlag("shortlist.top", analyzeCmd.Flags().Lookup("top"))
	viper.BindPFlag("shortlist.minimum-score", analyzeCmd.Flags().Lookup("minimum-score"))
	viper.BindPFlag("shortlist.exclude-file", analyzeCmd.Flags().Lookup("exclude-file"))
}

func analyze(cmd *cobra.Command, args []string) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	if config == nil {
		logger.Fatal("config is required")
	}

	logger.Info("starting the ats-screener", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	jdPath, _ := cmd.Flags().GetString("jd")
	jdText, _ := cmd.Flags().GetString("jd-text")
	jd, err := loadJobDescription(jdPath, jdText)
	if err != nil {
		logger.Fatal("loading the job description", zap.Error(err))
	}

	docs, err := documents.LoadAll(args)
	if err != nil {
		logger.Fatal("loading resumes", zap.Error(err))
	}
	candidates := toCandidates(docs)
	logger.Info("loaded resumes", zap.Int("count", len(candidates)))

	reviewer, err := newReviewer(ctx, config.AI, logger)
	if err != nil {
		logger.Warn("AI reviewer is not available, using rule based tips", zap.Error(err))
		reviewer = ai.Nop{}
	}

	analyzer, err := analysis.New(analysis.Options{
		Weights:          config.Scoring,
		Requirements:     config.Requirements,
		Workers:          config.Analysis.Workers,
		CandidateTimeout: config.Analysis.CandidateTimeout,
		Reviewer:         reviewer,
		Logger:           logger,
	})
	if err != nil {
		logger.Fatal("configuring the analysis", zap.Error(err))
	}

	board, err := analyzer.AnalyzeAll(ctx, jd, candidates)
	if err != nil {
		logger.Fatal("analysis failed", zap.Error(err))
	}

	steps := filtering.Default()
	if keep, _ := cmd.Flags().GetBool("keep-failed"); keep {
		filtering.DisableByName(steps, "failed", "keep-failed flag is set")
	}

	board, err = filtering.Run(ctx, &config.Shortlist, filtering.Deps{Logger: logger}, steps, board)
	if err != nil {
		logger.Fatal("building the shortlist", zap.Error(err))
	}

	if output, _ := cmd.Flags().GetString("output"); output != "" {
		if err := board.ToFile(output); err != nil {
			logger.Fatal("writing the report", zap.Error(err))
		}
		logger.Info("report written", zap.String("filename", output))
	}

	if board.Len() == 0 {
		logger.Info("exiting", zap.String("reason", "no candidates left after filters"))
		return
	}

	logger.Info("top match",
		zap.String("filename", board.Top().Filename),
		zap.Float64("ats_score", board.Top().ATSScore),
	)

	out := cmd.OutOrStdout()
	if yes, _ := cmd.Flags().GetBool("yes"); yes {
		if output, _ := cmd.Flags().GetString("output"); output == "" {
			if err := board.WriteJSON(out); err != nil {
				logger.Fatal("writing the report", zap.Error(err))
			}
		}
		return
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, out, logger, board); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, out io.Writer, logger *zap.Logger, board *analysis.Leaderboard) error {
	switch action {
	case PromptLeaderboard:
		return printLeaderboard(out, board)
	case PromptCandidateReport:
		return candidateReport(out, board)
	case PromptReportToFile:
		filename, err := board.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump report to file: %w", err)
		}
		logger.Info("dumping report to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func candidateReport(out io.Writer, board *analysis.Leaderboard) error {
	candidatePrompt := promptui.Select{
		Label: "Choose a candidate and press ENTER",
		Items: append(board.Filenames(), PromptBack),
	}

	_, selected, err := candidatePrompt.Run()
	if err != nil {
		return err
	}
	if selected == PromptBack {
		return nil
	}

	return printCandidate(out, board, selected)
}

func printCandidate(out io.Writer, board *analysis.Leaderboard, filename string) error {
	result := board.FindByFilename(filename)
	if result == nil {
		return fmt.Errorf("there is no such candidate %s", filename)
	}

	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

// printLeaderboard renders the ranked results with scores rounded to one decimal.
func printLeaderboard(out io.Writer, board *analysis.Leaderboard) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "#\tCANDIDATE\tATS\tSEMANTIC\tKEYWORD\tHARD REQS\tNOTE")
	for i, r := range board.Results {
		fmt.Fprintf(w, "%d\t%s\t%.1f\t%.1f\t%.1f\t%.1f\t%s\n",
			i+1, r.Filename, r.ATSScore,
			r.Components.Semantic, r.Components.Keyword, r.Components.HardRequirements,
			r.Error,
		)
	}
	return w.Flush()
}

func loadJobDescription(path, text string) (string, error) {
	path = strings.TrimSpace(path)
	switch {
	case path != "" && strings.TrimSpace(text) != "":
		return "", errors.New("use either --jd or --jd-text, not both")
	case path != "":
		return documents.ReadText(path)
	case strings.TrimSpace(text) != "":
		return text, nil
	default:
		return "", errors.New("a job description is required (--jd or --jd-text)")
	}
}

func toCandidates(docs []documents.Document) []analysis.Candidate {
	candidates := make([]analysis.Candidate, 0, len(docs))
	for _, doc := range docs {
		candidates = append(candidates, analysis.Candidate{
			Filename: doc.Path,
			Text:     doc.Text,
			Err:      doc.Err,
		})
	}
	return candidates
}

func newReviewer(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Reviewer, error) {
	if cfg == nil || !cfg.Enabled {
		return ai.Nop{}, nil
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}
	if cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
		Env:   []string{"GOOGLE_API_KEY"},
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file, GEMINI_API_KEY_FILE or GEMINI_API_KEY)", err)
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Gemini.Model),
		zap.Int("ai_retry_attempts", cfg.Gemini.MaxRetries),
	)

	generator, err := gemini.NewGenerator(ctx, gemini.Options{
		APIKey:      apiKey,
		Model:       cfg.Gemini.Model,
		Temperature: cfg.Gemini.Temperature,
		MaxRetries:  cfg.Gemini.MaxRetries,
	}, genLogger)
	if err != nil {
		return nil, err
	}

	return gemini.NewReviewer(generator, logger.With(zap.String("provider", "gemini")), cfg.Gemini.MaxLogLength, cfg.Gemini.Timeout), nil
}

// redacted hides inline secrets before the config is logged.
func redacted(config *Config) *Config {
	if config == nil || config.AI == nil || config.AI.Gemini == nil || config.AI.Gemini.APIKey == "" {
		return config
	}
	clone := *config
	aiConfig := *config.AI
	g := *config.AI.Gemini
	g.APIKey = "***"
	aiConfig.Gemini = &g
	clone.AI = &aiConfig
	return &clone
}
