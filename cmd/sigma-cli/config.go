package sigmacli

import (
	"fmt"
	"os"
	"path"

	"github.com/BurntSushi/toml"

	"github.com/zutxo/sigma/common/log"
	"github.com/zutxo/sigma/cost"
	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/interpreter"
)

// ConfigFileName is the name of the optional config file in the folder.
const ConfigFileName = "sigma.toml"

// DefaultCostLimit is the cost limit used when the config sets none.
const DefaultCostLimit cost.JitCost = 1_000_000

// Config is the TOML config of the command line tool.
type Config struct {
	Scheme         string
	CostLimit      int64
	AcceptSoftFork bool
	Workers        int
	// LogLevel is one of debug, info, warn or error. --verbose overrides it.
	LogLevel string
	// KeyFolder and HintFolder default to the base folder.
	KeyFolder  string
	HintFolder string

	level int
}

func defaultConfig(folder string) *Config {
	return &Config{
		level:      log.InfoLevel,
		Scheme:     crypto.DefaultSchemeID,
		CostLimit:  int64(DefaultCostLimit),
		KeyFolder:  folder,
		HintFolder: folder,
	}
}

// loadConfig reads the config of folder, or explicit when set. A missing
// default config file is not an error.
func loadConfig(folder, explicit string) (*Config, error) {
	conf := defaultConfig(folder)
	file := explicit
	if file == "" {
		file = path.Join(folder, ConfigFileName)
		if _, err := os.Stat(file); os.IsNotExist(err) {
			return conf, nil
		}
	}
	_, err := toml.DecodeFile(file, conf)
	if err != nil {
		return nil, fmt.Errorf("config %s: %w", file, err)
	}
	if conf.CostLimit <= 0 {
		return nil, fmt.Errorf("config %s: cost limit must be positive", file)
	}
	if conf.level, err = log.LevelFromString(conf.LogLevel); err != nil {
		return nil, fmt.Errorf("config %s: %w", file, err)
	}
	return conf, nil
}

func (c *Config) limit() cost.JitCost {
	return cost.JitCost(c.CostLimit)
}

func (c *Config) scheme() (*crypto.Scheme, error) {
	return crypto.SchemeFromName(c.Scheme)
}

func (c *Config) interpreter(l log.Logger) (*interpreter.Interpreter, error) {
	sch, err := c.scheme()
	if err != nil {
		return nil, err
	}
	return interpreter.New(
		interpreter.WithScheme(sch),
		interpreter.WithLogger(l),
		interpreter.WithSoftForkAcceptance(c.AcceptSoftFork),
		interpreter.WithWorkers(c.Workers),
	)
}
