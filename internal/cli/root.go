package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/rohmanhakim/campus-crawler/internal/build"
	"github.com/rohmanhakim/campus-crawler/internal/config"
	"github.com/rohmanhakim/campus-crawler/internal/crawler"
)

var (
	cfgFile        string
	seedURLs       []string
	threadsCount   int
	timeDelay      time.Duration
	randomSeed     int64
	cacheServer    string
	timeout        time.Duration
	userAgent      string
	saveFile       string
	outputDir      string
	stopwordsFile  string
	dictionaryFile string
	restart        bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "campus-crawler",
	Short: "A polite multi-worker crawler over the UCI computing domains.",
	Long: `campus-crawler discovers pages under a small set of allowlisted academic
domains, fetching through a cache server, respecting a per-host politeness
delay, and persisting discovery state across restarts.

At the end of a crawl it reports four deliverables: the number of unique
pages, the longest page by word count, the 50 most common dictionary words,
and per-subdomain page counts.`,
	Version: build.FullVersion(),
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := initConfig()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			os.Exit(1)
		}

		c, buildErr := crawler.New(cfg, restart)
		if buildErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", buildErr)
			os.Exit(1)
		}

		if runErr := c.Start(context.Background()); runErr != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", runErr)
			os.Exit(1)
		}

		fmt.Printf("Deliverables written under %s\n", cfg.OutputDir())
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config-file", "", "config file path (e.g., /home/myuser/config.json)")
	rootCmd.PersistentFlags().StringArrayVar(&seedURLs, "seed-url", []string{}, "one or more starting URLs (can be repeated)")
	rootCmd.PersistentFlags().IntVar(&threadsCount, "threads", 0, "number of concurrent crawl workers")
	rootCmd.PersistentFlags().DurationVar(&timeDelay, "time-delay", 0, "minimum delay between two dispatches to the same host")
	rootCmd.PersistentFlags().Int64Var(&randomSeed, "random-seed", 0, "seed for backoff jitter (0 for current time)")
	rootCmd.PersistentFlags().StringVar(&cacheServer, "cache-server", "", "address of the cache/proxy server to fetch through")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "timeout for a single fetch request")
	rootCmd.PersistentFlags().StringVar(&userAgent, "user-agent", "", "user agent string for HTTP requests")
	rootCmd.PersistentFlags().StringVar(&saveFile, "save-file", "", "path prefix for the frontier's durable seen-set")
	rootCmd.PersistentFlags().StringVar(&outputDir, "output-dir", "", "directory for aggregate shelves, reports, and dumps")
	rootCmd.PersistentFlags().StringVar(&stopwordsFile, "stopwords-file", "", "whitespace-separated stopword file")
	rootCmd.PersistentFlags().StringVar(&dictionaryFile, "dictionary-file", "", "whitespace-separated English dictionary file")
	rootCmd.PersistentFlags().BoolVar(&restart, "restart", false, "discard any previous save and start from the seeds")
}

// initConfig builds the effective config: a config file when given,
// otherwise defaults overridden by CLI flags.
func initConfig() (config.Config, error) {
	if cfgFile != "" {
		cfg, err := config.WithConfigFile(cfgFile)
		if err != nil {
			return cfg, fmt.Errorf("error initializing config from file: %w", err)
		}
		return cfg, nil
	}

	if len(seedURLs) == 0 {
		return config.Config{}, fmt.Errorf("%w: --seed-url is required without --config-file", config.ErrInvalidConfig)
	}

	configBuilder := config.WithDefault(seedURLs)

	if threadsCount > 0 {
		configBuilder = configBuilder.WithThreadsCount(threadsCount)
	}
	if timeDelay > 0 {
		configBuilder = configBuilder.WithTimeDelay(timeDelay)
	}
	if randomSeed != 0 {
		configBuilder = configBuilder.WithRandomSeed(randomSeed)
	}
	if cacheServer != "" {
		configBuilder = configBuilder.WithCacheServer(cacheServer)
	}
	if timeout > 0 {
		configBuilder = configBuilder.WithTimeout(timeout)
	}
	if userAgent != "" {
		configBuilder = configBuilder.WithUserAgent(userAgent)
	}
	if saveFile != "" {
		configBuilder = configBuilder.WithSaveFile(saveFile)
	}
	if outputDir != "" {
		configBuilder = configBuilder.WithOutputDir(outputDir)
	}
	if stopwordsFile != "" {
		configBuilder = configBuilder.WithStopwordsFile(stopwordsFile)
	}
	if dictionaryFile != "" {
		configBuilder = configBuilder.WithDictionaryFile(dictionaryFile)
	}

	return configBuilder.Build()
}

// ResetFlags restores flag state between CLI tests.
func ResetFlags() {
	cfgFile = ""
	seedURLs = []string{}
	threadsCount = 0
	timeDelay = 0
	randomSeed = 0
	cacheServer = ""
	timeout = 0
	userAgent = ""
	saveFile = ""
	outputDir = ""
	stopwordsFile = ""
	dictionaryFile = ""
	restart = false
}

// SetConfigFileForTest sets the config file flag from tests.
func SetConfigFileForTest(path string) {
	cfgFile = path
}

// SetSeedURLsForTest sets the seed URL flag from tests.
func SetSeedURLsForTest(urls []string) {
	seedURLs = urls
}

// InitConfigForTest exposes config construction to CLI tests.
func InitConfigForTest() (config.Config, error) {
	return initConfig()
}
