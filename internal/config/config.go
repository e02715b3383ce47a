package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"time"
)

type Config struct {
	//===============
	//  Crawl scope
	//===============
	// Initial pages given to the crawler to begin discovering and traversing other pages.
	seedURLs []string

	//===============
	// Workers
	//===============
	// Number of crawl worker goroutines pulling from the frontier concurrently.
	threadsCount int

	//===============
	// Politeness
	//===============
	// Minimum waiting time enforced between two dispatches to the same authority.
	timeDelay time.Duration
	// Controls the random number generator used for backoff jitter.
	randomSeed int64

	//===============
	// Fetch
	//===============
	// Opaque address of the cache/proxy server all page fetches go through.
	// Empty means fetch origin servers directly.
	cacheServer string
	// Maximum time of a single fetch request
	timeout time.Duration
	// User agent used in the request header. In raw string
	userAgent string

	//===============
	// Durable state
	//===============
	// Path prefix for the frontier's seen-set shelf
	saveFile string
	// Directory in which aggregate shelves, reports, and JSON dumps are written
	outputDir string

	//===============
	// Lexicon
	//===============
	// Whitespace-separated stopword file, loaded once at startup
	stopwordsFile string
	// Whitespace-separated English dictionary file, loaded once at startup
	dictionaryFile string
}

type configDTO struct {
	SeedURLs       []string      `json:"seedUrls"`
	ThreadsCount   int           `json:"threadsCount,omitempty"`
	TimeDelay      float64       `json:"timeDelay,omitempty"` // seconds
	RandomSeed     int64         `json:"randomSeed,omitempty"`
	CacheServer    string        `json:"cacheServer,omitempty"`
	Timeout        time.Duration `json:"timeout,omitempty"`
	UserAgent      string        `json:"userAgent,omitempty"`
	SaveFile       string        `json:"saveFile,omitempty"`
	OutputDir      string        `json:"outputDir,omitempty"`
	StopwordsFile  string        `json:"stopwordsFile,omitempty"`
	DictionaryFile string        `json:"dictionaryFile,omitempty"`
}

func newConfigFromDTO(dto configDTO) (Config, error) {
	// Start with default config
	cfg, err := WithDefault(dto.SeedURLs).Build()
	if err != nil {
		return Config{}, err
	}

	// Only override when a non-zero value is provided
	if dto.ThreadsCount != 0 {
		cfg.threadsCount = dto.ThreadsCount
	}
	if dto.TimeDelay != 0 {
		cfg.timeDelay = time.Duration(dto.TimeDelay * float64(time.Second))
	}
	if dto.RandomSeed != 0 {
		cfg.randomSeed = dto.RandomSeed
	}
	if dto.CacheServer != "" {
		cfg.cacheServer = dto.CacheServer
	}
	if dto.Timeout != 0 {
		cfg.timeout = dto.Timeout
	}
	if dto.UserAgent != "" {
		cfg.userAgent = dto.UserAgent
	}
	if dto.SaveFile != "" {
		cfg.saveFile = dto.SaveFile
	}
	if dto.OutputDir != "" {
		cfg.outputDir = dto.OutputDir
	}
	if dto.StopwordsFile != "" {
		cfg.stopwordsFile = dto.StopwordsFile
	}
	if dto.DictionaryFile != "" {
		cfg.dictionaryFile = dto.DictionaryFile
	}

	return cfg, nil
}

func WithConfigFile(path string) (Config, error) {
	_, err := os.Stat(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrFileDoesNotExist, err.Error())
	}
	configContent, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrReadConfigFail, err.Error())
	}
	cfgDTO := configDTO{}

	err = json.Unmarshal(configContent, &cfgDTO)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s", ErrConfigParsingFail, err.Error())
	}

	cfg, err := newConfigFromDTO(cfgDTO)
	if err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// WithDefault creates a new Config with the provided seed URLs and default values for
// all other fields. seedUrls is mandatory and must not be empty - an error will be
// returned from Build if it is.
func WithDefault(seedUrls []string) *Config {
	defaultConfig := Config{
		seedURLs:       seedUrls,
		threadsCount:   4,
		timeDelay:      500 * time.Millisecond,
		randomSeed:     time.Now().UnixNano(),
		cacheServer:    "",
		timeout:        10 * time.Second,
		userAgent:      "campus-crawler/1.0",
		saveFile:       "frontier.shelve",
		outputDir:      "Output",
		stopwordsFile:  "data/stopwords.txt",
		dictionaryFile: "data/words.txt",
	}
	return &defaultConfig
}

func (c *Config) WithSeedUrls(urls []string) *Config {
	c.seedURLs = urls
	return c
}

func (c *Config) WithThreadsCount(count int) *Config {
	c.threadsCount = count
	return c
}

func (c *Config) WithTimeDelay(delay time.Duration) *Config {
	c.timeDelay = delay
	return c
}

func (c *Config) WithRandomSeed(seed int64) *Config {
	c.randomSeed = seed
	return c
}

func (c *Config) WithCacheServer(server string) *Config {
	c.cacheServer = server
	return c
}

func (c *Config) WithTimeout(timeout time.Duration) *Config {
	c.timeout = timeout
	return c
}

func (c *Config) WithUserAgent(agent string) *Config {
	c.userAgent = agent
	return c
}

func (c *Config) WithSaveFile(path string) *Config {
	c.saveFile = path
	return c
}

func (c *Config) WithOutputDir(dir string) *Config {
	c.outputDir = dir
	return c
}

func (c *Config) WithStopwordsFile(path string) *Config {
	c.stopwordsFile = path
	return c
}

func (c *Config) WithDictionaryFile(path string) *Config {
	c.dictionaryFile = path
	return c
}

func (c *Config) Build() (Config, error) {
	if len(c.seedURLs) == 0 {
		return Config{}, fmt.Errorf("%w: seedUrls cannot be empty", ErrInvalidConfig)
	}
	for _, seed := range c.seedURLs {
		if _, err := url.Parse(seed); err != nil {
			return Config{}, fmt.Errorf("%w: seed URL %q: %s", ErrInvalidConfig, seed, err.Error())
		}
	}
	if c.threadsCount < 1 {
		return Config{}, fmt.Errorf("%w: threadsCount must be at least 1", ErrInvalidConfig)
	}
	if c.timeDelay < 0 {
		return Config{}, fmt.Errorf("%w: timeDelay cannot be negative", ErrInvalidConfig)
	}

	return *c, nil
}

func (c Config) SeedURLs() []string {
	urls := make([]string, len(c.seedURLs))
	copy(urls, c.seedURLs)
	return urls
}

func (c Config) ThreadsCount() int {
	return c.threadsCount
}

func (c Config) TimeDelay() time.Duration {
	return c.timeDelay
}

func (c Config) RandomSeed() int64 {
	return c.randomSeed
}

func (c Config) CacheServer() string {
	return c.cacheServer
}

func (c Config) Timeout() time.Duration {
	return c.timeout
}

func (c Config) UserAgent() string {
	return c.userAgent
}

func (c Config) SaveFile() string {
	return c.saveFile
}

func (c Config) OutputDir() string {
	return c.outputDir
}

func (c Config) StopwordsFile() string {
	return c.stopwordsFile
}

func (c Config) DictionaryFile() string {
	return c.dictionaryFile
}
