package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"jobscout/internal/adzuna"
	"jobscout/internal/ai"
	"jobscout/internal/ai/gemini"
	"jobscout/internal/contacts"
	"jobscout/internal/logger"
	"jobscout/internal/pipeline"
	"jobscout/internal/secrets"
	"jobscout/internal/sheets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultThreshold = 80
	defaultAIDelay   = 250 * time.Millisecond
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the jobscout main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().Bool("dry-run", false, "enrich postings but do not write to the sheet")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before writing to the sheet")
	runCmd.Flags().String("contacts-file", "", "YAML file with contact company names. Overrides the sheet tab.")

	viper.BindPFlag("contacts.file", runCmd.Flags().Lookup("contacts-file"))
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the jobscout", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Search == nil || strings.TrimSpace(config.Search.What) == "" {
		logger.Fatal("search phrase is required under search.what")
	}

	if config.Sheets == nil || config.Sheets.SpreadsheetID == "" {
		logger.Fatal("spreadsheet id is required under sheets.spreadsheet-id")
	}

	if config.ProfileFile == "" {
		logger.Fatal("applicant profile is required under profile-file")
	}

	dryRun := cmd.Flag("dry-run").Value.String() == "true"

	store, err := sheets.New(ctx, logger, sheets.Config{
		CredentialsFile: config.Sheets.CredentialsFile,
		SpreadsheetID:   config.Sheets.SpreadsheetID,
		JobsRange:       config.Sheets.JobsRange,
		ContactsRange:   config.Sheets.ContactsRange,
	})
	if err != nil {
		logger.Fatal("creating the sheets client", zap.Error(err))
	}

	knownIDs, err := store.KnownIDs()
	if err != nil {
		logger.Fatal("reading persisted ids", zap.Error(err))
	}

	logger.Info("read persisted ids", zap.Int("count", len(knownIDs)))

	postings, err := searchPostings(ctx, config, logger)
	if err != nil {
		logger.Fatal("searching postings", zap.Error(err))
	}

	logger.Info("getting postings", zap.Int("count", len(postings)))

	if len(postings) == 0 {
		logger.Info("exiting", zap.String("reason", "no postings found"))
		return
	}

	directory, err := loadDirectory(config, store)
	if err != nil {
		logger.Fatal(
			"loading contact directory",
			zap.Error(err),
			zap.String("hint", "set contacts.file or sheets.contacts-range; an empty directory aborts the run"),
		)
	}

	logger.Info("loaded contact directory", zap.Int("count", directory.Len()))

	profile, err := ai.LoadProfile(config.ProfileFile)
	if err != nil {
		logger.Fatal("loading applicant profile", zap.Error(err))
	}

	evaluator, err := newEvaluator(ctx, config.AI, logger)
	if err != nil {
		logger.Fatal(
			"building ai evaluator",
			zap.Error(err),
			zap.String("hint", "set ai.gemini.api-key-file or GEMINI_API_KEY_FILE"),
		)
	}

	threshold := defaultThreshold
	if config.Contacts != nil && config.Contacts.MatchThreshold > 0 {
		threshold = config.Contacts.MatchThreshold
	}

	delay := defaultAIDelay
	if config.AI != nil && config.AI.Delay > 0 {
		delay = config.AI.Delay
	}

	deps := pipeline.Deps{
		Store:     store,
		Evaluator: evaluator,
		Directory: directory,
		Delay:     pipeline.NewFixedDelay(delay),
		Logger:    logger,
	}

	if cmd.Flag("auto-approve").Value.String() == "false" && !dryRun {
		deps.Confirm = confirmPersist
	}

	result, err := pipeline.Run(ctx, postings, knownIDs, deps, pipeline.Options{
		Threshold: threshold,
		DryRun:    dryRun,
		Profile:   profile,
	})
	if errors.Is(err, pipeline.ErrDeclined) {
		logger.Info("exiting", zap.String("reason", "got no from prompt"))
		return
	}
	if err != nil {
		logger.Fatal("pipeline failed", zap.Error(err))
	}

	if dryRun && result.Records.Len() > 0 {
		filename, err := result.Records.DumpToTmpFile()
		if err != nil {
			logger.Fatal("dump results to file", zap.Error(err))
		}
		logger.Info("dumping enriched records to file", zap.String("filename", filename))
	}

	skipReasons := make(map[string]int)
	for reason, count := range result.SkipsByReason() {
		skipReasons[string(reason)] = count
	}

	logger.Info("run complete",
		zap.Bool("dry_run", dryRun),
		zap.Int("enriched", result.Records.Len()),
		zap.Int("persisted", result.Persisted),
		zap.Int("skipped", len(result.Skips)),
		zap.Any("skip_reasons", skipReasons),
	)
}

func confirmPersist(count int) (bool, error) {
	prompt := promptui.Select{
		Label: fmt.Sprintf("Evaluate and record %d new postings?", count),
		Items: []string{PromptYes, PromptNo},
	}

	_, action, err := prompt.Run()
	if err != nil {
		return false, err
	}

	return action == PromptYes, nil
}

func searchPostings(ctx context.Context, config *Config, logger *zap.Logger) ([]*adzuna.Posting, error) {
	if config.Adzuna == nil {
		return nil, errors.New("adzuna credentials are required under adzuna")
	}

	appID, err := secrets.Load(secrets.Source{
		Name:  "adzuna app id",
		Value: config.Adzuna.AppID,
		File:  config.Adzuna.AppIDFile,
	})
	if err != nil {
		return nil, err
	}

	appKey, err := secrets.Load(secrets.Source{
		Name:  "adzuna app key",
		Value: config.Adzuna.AppKey,
		File:  config.Adzuna.AppKeyFile,
	})
	if err != nil {
		return nil, err
	}

	client := adzuna.New(ctx, logger, appID, appKey)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	logger.Info("starting the search", zap.String("search", config.Search.What))

	return client.Search(config.Search)
}

// loadDirectory prefers the local contacts file; the sheet tab is the
// fallback so the directory can live next to the job rows.
func loadDirectory(config *Config, store *sheets.Client) (*contacts.Directory, error) {
	if file := viper.GetString("contacts.file"); file != "" {
		names, err := contacts.FromFile(file)
		if err != nil {
			return nil, err
		}
		return contacts.NewDirectory(names)
	}

	names, err := store.Contacts()
	if err != nil {
		return nil, err
	}

	return contacts.NewDirectory(names)
}

func newEvaluator(ctx context.Context, cfg *AIConfig, logger *zap.Logger) (ai.Evaluator, error) {
	if cfg == nil || cfg.Gemini == nil {
		return nil, errors.New("gemini configuration is required under ai.gemini")
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != "gemini" {
		return nil, fmt.Errorf("unsupported ai provider: %s", cfg.Provider)
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: cfg.Gemini.APIKey,
		File:  cfg.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, err
	}

	generator, err := gemini.NewGenerator(ctx, apiKey, cfg.Gemini.Model)
	if err != nil {
		return nil, err
	}

	evalLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", generator.Model()),
	)

	return gemini.NewEvaluator(generator, evalLogger, cfg.Gemini.MaxLogLength), nil
}
