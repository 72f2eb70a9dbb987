package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Crawler  CrawlerConfig
	Browser  BrowserConfig
	Firebase FirebaseConfig
	Logging  LoggingConfig
}

type CrawlerConfig struct {
	// PolitenessDelay is the mandatory pause between detail-page visits.
	PolitenessDelay time.Duration
	// SettleDelay is applied after every navigation and pagination trigger;
	// the listing is rendered by client script and is empty before it.
	SettleDelay     time.Duration
	SelectorTimeout time.Duration
	NavRetries      int
	BatchSize       int
	// ExcludeKeywords marks spec-table rows that are not physical components
	// (add-on options, MD picks, services, OS line items).
	ExcludeKeywords []string
}

type BrowserConfig struct {
	Headless       bool
	Timeout        time.Duration
	ViewportWidth  int
	ViewportHeight int
	AcceptLanguage string
	TimezoneID     string
	Locale         string
}

// FirebaseConfig is the storage credential bundle. Either CredentialsFile
// points at a service-account JSON file, or the three discrete fields are set
// (the shape GitHub Actions secrets arrive in).
type FirebaseConfig struct {
	ProjectID       string
	ClientEmail     string
	PrivateKey      string
	CredentialsFile string
}

type LoggingConfig struct {
	Level  string
	Format string
}

// Catalog is one scraped product line. The table is fixed at startup; ids are
// the Korean brand labels the dashboard uses as Firestore collection names.
type Catalog struct {
	ID           string
	Slug         string
	ListURL      string
	ItemsPerPage int
}

func Catalogs() []Catalog {
	return []Catalog{
		{
			ID:           "프리미엄PC",
			Slug:         "premium-pc",
			ListURL:      "https://www.compuzone.co.kr/product/compuzone_premium_pc.htm?rtq=",
			ItemsPerPage: 20,
		},
		{
			ID:           "추천조립PC",
			Slug:         "recommend-pc",
			ListURL:      "https://www.compuzone.co.kr/product/compuzone_recommend_pc.htm?rtq=",
			ItemsPerPage: 20,
		},
		{
			ID:           "아이웍스",
			Slug:         "iworks",
			ListURL:      "https://www.compuzone.co.kr/product/compuzone_iworks_pc.htm?rtq=",
			ItemsPerPage: 20,
		},
	}
}

func Load() (*Config, error) {
	// .env for local runs; silently absent in CI
	_ = godotenv.Load()

	cfg := &Config{
		Crawler: CrawlerConfig{
			PolitenessDelay: getDurationOrDefault("CRAWLER_POLITENESS_DELAY", 1500*time.Millisecond),
			SettleDelay:     getDurationOrDefault("CRAWLER_SETTLE_DELAY", 2*time.Second),
			SelectorTimeout: getDurationOrDefault("CRAWLER_SELECTOR_TIMEOUT", 10*time.Second),
			NavRetries:      getIntOrDefault("CRAWLER_NAV_RETRIES", 3),
			BatchSize:       getIntOrDefault("CRAWLER_BATCH_SIZE", 400),
			ExcludeKeywords: getStringSliceOrDefault("CRAWLER_EXCLUDE_KEYWORDS", defaultExcludeKeywords()),
		},
		Browser: BrowserConfig{
			Headless:       getBoolOrDefault("BROWSER_HEADLESS", true),
			Timeout:        getDurationOrDefault("BROWSER_TIMEOUT", 30*time.Second),
			ViewportWidth:  getIntOrDefault("BROWSER_VIEWPORT_WIDTH", 1920),
			ViewportHeight: getIntOrDefault("BROWSER_VIEWPORT_HEIGHT", 1080),
			AcceptLanguage: getEnvOrDefault("BROWSER_ACCEPT_LANGUAGE", "ko-KR,ko;q=0.9,en;q=0.8"),
			TimezoneID:     getEnvOrDefault("BROWSER_TIMEZONE", "Asia/Seoul"),
			Locale:         getEnvOrDefault("BROWSER_LOCALE", "ko-KR"),
		},
		Firebase: FirebaseConfig{
			ProjectID:       getEnvOrDefault("FIREBASE_PROJECT_ID", ""),
			ClientEmail:     getEnvOrDefault("FIREBASE_CLIENT_EMAIL", ""),
			PrivateKey:      normalizePrivateKey(os.Getenv("FIREBASE_PRIVATE_KEY")),
			CredentialsFile: getEnvOrDefault("FIREBASE_CREDENTIALS_FILE", ""),
		},
		Logging: LoggingConfig{
			Level:  getEnvOrDefault("LOG_LEVEL", "info"),
			Format: getEnvOrDefault("LOG_FORMAT", "json"),
		},
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Crawler.PolitenessDelay <= 0 {
		return fmt.Errorf("CRAWLER_POLITENESS_DELAY must be positive")
	}

	if c.Crawler.BatchSize < 1 || c.Crawler.BatchSize > 500 {
		return fmt.Errorf("CRAWLER_BATCH_SIZE must be between 1 and 500 (Firestore batch limit)")
	}

	if c.Firebase.CredentialsFile == "" {
		if c.Firebase.ProjectID == "" || c.Firebase.ClientEmail == "" || c.Firebase.PrivateKey == "" {
			return fmt.Errorf("either FIREBASE_CREDENTIALS_FILE or FIREBASE_PROJECT_ID/FIREBASE_CLIENT_EMAIL/FIREBASE_PRIVATE_KEY must be set")
		}
	}

	return nil
}

func defaultExcludeKeywords() []string {
	return []string{"옵션추가", "MD추천", "서비스", "운영체제"}
}

// normalizePrivateKey undoes the newline escaping that CI secret stores apply
// to PEM keys.
func normalizePrivateKey(key string) string {
	return strings.ReplaceAll(key, `\n`, "\n")
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getStringSliceOrDefault(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
