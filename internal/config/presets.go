package config

var Presets = map[string]*Config{
	"fiducial": {
		T9: 10.0, Rho: 1.0e8, Rho1: 9.0e7, Tau: 0.1, Delta: 0.1,
		RootFactor: 1.001, Dtime: 1.0e-15, TEnd: 10.0, Steps: 20,
		Integrator: "adams-bashforth", T9Guess: true,
	},
	"fast-expansion": {
		T9: 10.0, Rho: 1.0e8, Rho1: 9.0e7, Tau: 0.01, Delta: 0.01,
		RootFactor: 1.001, Dtime: 1.0e-15, TEnd: 1.0, Steps: 20,
		Integrator: "adams-bashforth", T9Guess: true,
	},
	"slow-burn": {
		T9: 5.0, Rho: 1.0e7, Rho1: 5.0e6, Tau: 1.0, Delta: 1.0,
		RootFactor: 1.001, Dtime: 1.0e-12, TEnd: 100.0, Steps: 50,
		Integrator: "adams-bashforth", T9Guess: true,
	},
}

func GetPreset(name string) *Config {
	cfg, ok := Presets[name]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	return names
}
