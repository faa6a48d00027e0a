package validator

import "github.com/ilyakaznacheev/cleanenv"

// Policy holds the allow-lists a delta is validated against.
type Policy struct {
	// Operators lists the allowed update operators, such as "$set".
	Operators []string `yaml:"allowed_operators" json:"allowed_operators" toml:"allowed_operators" env:"DOCOPS_ALLOWED_OPERATORS"`

	// Paths lists the allowed path patterns. A "*" segment matches any one
	// segment and a trailing "**" matches the rest of the path, if any.
	Paths []string `yaml:"allowed_paths" json:"allowed_paths" toml:"allowed_paths" env:"DOCOPS_ALLOWED_PATHS"`
}

// Read fills the policy from the given configuration file (YAML, JSON, TOML
// or .env, by extension), or from the environment if no file is given.
// Lists in the environment are comma separated.
func (p *Policy) Read(fileName ...string) error {
	if len(fileName) > 0 {
		return cleanenv.ReadConfig(fileName[0], p)
	}
	return cleanenv.ReadEnv(p)
}
