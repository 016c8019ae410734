package cmd

import (
	"log"
	"time"

	"jobscout/internal/adzuna"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "jobscout"
)

type Config struct {
	Search      *adzuna.SearchParams `mapstructure:"search"`
	Adzuna      *AdzunaConfig        `mapstructure:"adzuna"`
	Sheets      *SheetsConfig        `mapstructure:"sheets"`
	Contacts    *ContactsConfig      `mapstructure:"contacts"`
	AI          *AIConfig            `mapstructure:"ai"`
	ProfileFile string               `mapstructure:"profile-file"`
	UserAgent   string               `mapstructure:"user-agent"`
}

type AdzunaConfig struct {
	AppID      string `mapstructure:"app-id"`
	AppIDFile  string `mapstructure:"app-id-file"`
	AppKey     string `mapstructure:"app-key"`
	AppKeyFile string `mapstructure:"app-key-file"`
}

type SheetsConfig struct {
	CredentialsFile string `mapstructure:"credentials-file"`
	SpreadsheetID   string `mapstructure:"spreadsheet-id"`
	JobsRange       string `mapstructure:"jobs-range"`
	ContactsRange   string `mapstructure:"contacts-range"`
}

type ContactsConfig struct {
	File           string `mapstructure:"file"`
	MatchThreshold int    `mapstructure:"match-threshold"`
}

type AIConfig struct {
	Provider string        `mapstructure:"provider"`
	Delay    time.Duration `mapstructure:"delay"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string `mapstructure:"api-key"`
	APIKeyFile   string `mapstructure:"api-key-file"`
	Model        string `mapstructure:"model"`
	MaxLogLength int    `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "jobscout fetches job postings from Adzuna, evaluates them with AI and records them in a Google Sheet",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("adzuna.app-id", "ADZUNA_APP_ID"); err != nil {
		log.Fatalf("binding ADZUNA_APP_ID environment variable: %v", err)
	}
	if err := viper.BindEnv("adzuna.app-key", "ADZUNA_APP_KEY"); err != nil {
		log.Fatalf("binding ADZUNA_APP_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is jobscout.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
