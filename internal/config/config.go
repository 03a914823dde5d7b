package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"entroflow/internal/hydro"
)

const (
	DefaultT9         = 10.0
	DefaultRho        = 1.0e8
	DefaultRho1       = 9.0e7
	DefaultTau        = 0.1
	DefaultDelta      = 0.1
	DefaultRootFactor = 1.001
	DefaultDtime      = 1.0e-15
	DefaultTEnd       = 10.0
	DefaultSteps      = 20
)

type Config struct {
	T9         float64 `yaml:"t9"`
	Rho        float64 `yaml:"rho"`
	Rho1       float64 `yaml:"rho_1"`
	Tau        float64 `yaml:"tau"`
	Delta      float64 `yaml:"delta"`
	RootFactor float64 `yaml:"root_factor"`

	Time  float64 `yaml:"time"`
	Dtime float64 `yaml:"dtime"`
	TEnd  float64 `yaml:"tend"`
	Steps int     `yaml:"steps"`

	Integrator      string `yaml:"integrator"`
	T9Guess         bool   `yaml:"t9_guess"`
	Observe         bool   `yaml:"observe"`
	SdotView        string `yaml:"sdot_view"`
	OutputEveryDump bool   `yaml:"output_every_dump"`
}

func DefaultConfig() *Config {
	return &Config{
		T9:         DefaultT9,
		Rho:        DefaultRho,
		Rho1:       DefaultRho1,
		Tau:        DefaultTau,
		Delta:      DefaultDelta,
		RootFactor: DefaultRootFactor,
		Dtime:      DefaultDtime,
		TEnd:       DefaultTEnd,
		Steps:      DefaultSteps,
		Integrator: "adams-bashforth",
		T9Guess:    true,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Params builds and validates the trajectory parameters described by the
// configuration.
func (c *Config) Params() (*hydro.Params, error) {
	p := &hydro.Params{
		T9Init:       c.T9,
		RhoInit:      c.Rho,
		RhoSecondary: c.Rho1,
		Tau:          c.Tau,
		Delta:        c.Delta,
		RootFactor:   c.RootFactor,
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return p, nil
}
