package config

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Astemirdum/library-lending/library/internal/fine"
	"github.com/Astemirdum/library-lending/library/internal/model"
	"github.com/Astemirdum/library-lending/pkg/kafka"
	"github.com/Astemirdum/library-lending/pkg/logger"
	"github.com/Astemirdum/library-lending/pkg/postgres"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type HTTPServer struct {
	Host         string        `yaml:"host" envconfig:"HTTP_HOST" default:"0.0.0.0"`
	Port         string        `yaml:"port" envconfig:"HTTP_PORT" default:"8060"`
	ReadTimeout  time.Duration `yaml:"readTimeout" envconfig:"HTTP_READ" default:"10s"`
	WriteTimeout time.Duration `yaml:"writeTimeout" envconfig:"HTTP_WRITE" default:"10s"`
}

type StorageDriver string

const (
	StoragePostgres StorageDriver = "postgres"
	StorageMemory   StorageDriver = "memory"
)

type FinePolicy struct {
	DailyRate decimal.Decimal `yaml:"dailyRate" envconfig:"FINE_DAILY_RATE" default:"0.50"`
	GraceDays int             `yaml:"graceDays" envconfig:"FINE_GRACE_DAYS" default:"0"`
	// Cap of zero means uncapped.
	Cap decimal.Decimal `yaml:"cap" envconfig:"FINE_CAP" default:"0"`
}

func (p FinePolicy) Policy() fine.Policy {
	out := fine.Policy{DailyRate: p.DailyRate, GraceDays: p.GraceDays}
	if p.Cap.IsPositive() {
		limit := p.Cap
		out.Cap = &limit
	}
	return out
}

type Policy struct {
	Fine FinePolicy       `yaml:"fine"`
	Loan model.LoanPolicy `yaml:"loan"`
}

type Sweep struct {
	Enabled  bool          `yaml:"enabled" envconfig:"SWEEP_ENABLED" default:"true"`
	Interval time.Duration `yaml:"interval" envconfig:"SWEEP_INTERVAL" default:"1m"`
}

type Config struct {
	Server   HTTPServer    `yaml:"server"`
	Database postgres.DB   `yaml:"db"`
	Storage  StorageDriver `yaml:"storage" envconfig:"STORAGE_DRIVER" default:"postgres"`
	Kafka    kafka.Config  `yaml:"kafka"`
	Log      logger.Log    `yaml:"log"`
	Policy   Policy        `yaml:"policy"`
	Sweep    Sweep         `yaml:"sweep"`
}

var (
	once sync.Once
	cfg  *Config
)

// NewConfig reads config from environment. Options set values that the
// environment does not override.
func NewConfig(ops ...Option) *Config {
	once.Do(func() {
		var config Config
		if err := envconfig.Process("", &config); err != nil {
			log.Fatal("NewConfig ", err)
		}
		for _, op := range ops {
			op(&config)
		}
		cfg = &config
		printConfig(cfg)
	})

	return cfg
}

func printConfig(cfg *Config) {
	masked := *cfg
	if masked.Database.Password != "" {
		masked.Database.Password = "***"
	}
	jscfg, _ := json.MarshalIndent(masked, "", "	") //nolint:errcheck
	fmt.Println(string(jscfg))
}
