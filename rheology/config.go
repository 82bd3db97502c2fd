package rheology

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Config is the TOML parameter file layout
//
//	[mevp]
//	pstar = 27500.0
//	[meb]
//	young = 5.96e8
type Config struct {
	MEVP VPParameters  `toml:"mevp"`
	MEB  MEBParameters `toml:"meb"`
}

func DefaultConfig() Config {
	return Config{MEVP: DefaultVPParameters(), MEB: DefaultMEBParameters()}
}

// LoadConfig decodes r over the defaults. Unknown keys are an error.
func LoadConfig(r io.Reader) (Config, error) {
	cfg := DefaultConfig()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return cfg, fmt.Errorf("rheology: decoding parameters: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, fmt.Errorf("%w: unknown keys %s", ErrParameter, strings.Join(keys, ", "))
	}
	if err = cfg.MEVP.Validate(); err != nil {
		return cfg, err
	}
	if err = cfg.MEB.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func LoadConfigFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("rheology: %w", err)
	}
	defer f.Close()
	return LoadConfig(f)
}
