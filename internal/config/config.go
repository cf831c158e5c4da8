package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/county-home-values/internal/domain"
)

// DefaultDataFile is the October 2021 county ZHVI export.
const DefaultDataFile = "County_zhvi_uc_sfrcondo_tier_0.33_0.67_sm_sa_month.csv"

// Config holds all service settings, populated from environment variables.
type Config struct {
	DataFile        string
	ProfileFile     string
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration
	RenderCacheSize int

	// Optional publishing of derived tables.
	KafkaEnabled   bool
	KafkaBrokers   []string
	KafkaSinkTopic string
}

// Load reads configuration from environment variables, applying defaults where unset.
func Load() (*Config, error) {
	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	var brokers []string
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		brokers = sharedcfg.ParseBrokers(v)
	}
	kafkaEnabled := len(brokers) > 0
	if v := os.Getenv("KAFKA_ENABLED"); v != "" {
		kafkaEnabled = v == "true"
	}

	cfg := &Config{
		DataFile:        sharedcfg.EnvOrDefault("DATA_FILE", DefaultDataFile),
		ProfileFile:     os.Getenv("PROFILE_FILE"),
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8050"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,
		RenderCacheSize: parseRenderCacheSize(),
		KafkaEnabled:    kafkaEnabled,
		KafkaBrokers:    brokers,
		KafkaSinkTopic:  sharedcfg.EnvOrDefault("KAFKA_SINK_TOPIC", "county-home-values"),
	}

	if cfg.DataFile == "" {
		return nil, errors.New("DATA_FILE is required")
	}
	if cfg.KafkaEnabled && len(cfg.KafkaBrokers) == 0 {
		return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is not set")
	}
	if cfg.KafkaEnabled && cfg.KafkaSinkTopic == "" {
		return nil, errors.New("KAFKA_SINK_TOPIC is required")
	}

	return cfg, nil
}

func parseRenderCacheSize() int {
	if s := os.Getenv("RENDER_CACHE_SIZE"); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n >= 0 {
			return n
		}
	}
	return 256
}

type binsFile struct {
	Min   *float64 `yaml:"min"`
	Max   *float64 `yaml:"max"`
	Count *int     `yaml:"count"`
}

type windowFile struct {
	Window      string `yaml:"window"`
	Numerator   string `yaml:"numerator"`
	Denominator string `yaml:"denominator"`
	Months      int    `yaml:"months"`
}

type profileFile struct {
	AsOf           string       `yaml:"as_of"`
	Windows        []windowFile `yaml:"windows"`
	RankingDates   []string     `yaml:"ranking_dates"`
	TopN           *int         `yaml:"top_n"`
	MapDateChoices *int         `yaml:"map_date_choices"`
	MapBins        *binsFile    `yaml:"map_bins"`
	DefaultStates  []string     `yaml:"default_states"`
}

// LoadProfile reads a YAML dataset profile from path and overlays it on
// domain.DefaultProfile. An empty path returns the default profile.
func LoadProfile(path string) (domain.Profile, error) {
	p := domain.DefaultProfile()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Profile{}, fmt.Errorf("read profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile overlays YAML profile data on domain.DefaultProfile. Keys that
// are absent keep their defaults.
func ParseProfile(data []byte) (domain.Profile, error) {
	p := domain.DefaultProfile()

	var f profileFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return domain.Profile{}, fmt.Errorf("parse profile: %w", err)
	}

	if f.AsOf != "" {
		p.AsOf = f.AsOf
	}
	if len(f.Windows) > 0 {
		p.Windows = make([]domain.GrowthSpec, 0, len(f.Windows))
		for _, w := range f.Windows {
			window, err := domain.ParseGrowthWindow(w.Window)
			if err != nil {
				return domain.Profile{}, fmt.Errorf("parse profile: %w", err)
			}
			num := w.Numerator
			if num == "" {
				num = p.AsOf
			}
			p.Windows = append(p.Windows, domain.GrowthSpec{
				Window:      window,
				Numerator:   num,
				Denominator: w.Denominator,
				Months:      w.Months,
			})
		}
	}
	if len(f.RankingDates) > 0 {
		p.RankingDates = f.RankingDates
	}
	if f.TopN != nil {
		p.TopN = *f.TopN
	}
	if f.MapDateChoices != nil {
		p.MapDateChoices = *f.MapDateChoices
	}
	if b := f.MapBins; b != nil {
		if b.Min != nil {
			p.MapBins.Min = *b.Min
		}
		if b.Max != nil {
			p.MapBins.Max = *b.Max
		}
		if b.Count != nil {
			p.MapBins.Count = *b.Count
		}
	}
	if len(f.DefaultStates) > 0 {
		p.DefaultStates = f.DefaultStates
	}

	if err := p.Validate(); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}
