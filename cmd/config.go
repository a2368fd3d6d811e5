package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	log "github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/tanq16/contaix/contaix"
)

// settings mirrors contaix.yaml
type settings struct {
	Code struct {
		Exclude    []string `mapstructure:"exclude"`
		DedupLines int      `mapstructure:"dedup_lines"`
		MaxChars   int      `mapstructure:"max_chars"`
		ChunkSize  int      `mapstructure:"chunk_size"`
		Ignore     []string `mapstructure:"ignore"`
		Threads    int      `mapstructure:"threads"`
	} `mapstructure:"code"`
	HTTP struct {
		Timeout time.Duration `mapstructure:"timeout"`
	} `mapstructure:"http"`
	Verify struct {
		Workers int `mapstructure:"workers"`
	} `mapstructure:"verify"`
	Repos struct {
		CacheDir string `mapstructure:"cache_dir"`
	} `mapstructure:"repos"`
	Serve struct {
		Port string `mapstructure:"port"`
	} `mapstructure:"serve"`
}

// flagKeys maps command flags to their configuration keys
var flagKeys = map[string]string{
	"exclude":     "code.exclude",
	"dedup-lines": "code.dedup_lines",
	"max-chars":   "code.max_chars",
	"chunk-size":  "code.chunk_size",
	"ignore":      "code.ignore",
	"threads":     "code.threads",
	"timeout":     "http.timeout",
	"workers":     "verify.workers",
	"cache-dir":   "repos.cache_dir",
	"port":        "serve.port",
}

func newViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	v.SetDefault("code.threads", 4)
	v.SetDefault("http.timeout", contaix.DefaultTimeout)
	v.SetDefault("verify.workers", 20)
	v.SetDefault("serve.port", "8080")

	v.SetEnvPrefix("CONTAIX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", configFile, err)
		}
		return v, nil
	}
	v.SetConfigName("contaix")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if dir, err := os.UserConfigDir(); err == nil {
		v.AddConfigPath(filepath.Join(dir, "contaix"))
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		return v, nil
	}
	log.Debug().Str("file", v.ConfigFileUsed()).Msg("loaded config")
	return v, nil
}

// bindFlags lets explicitly set flags override the file and environment
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		key, ok := flagKeys[f.Name]
		if !ok || err != nil {
			return
		}
		err = v.BindPFlag(key, f)
	})
	return err
}

func loadSettings(v *viper.Viper) (settings, error) {
	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return s, fmt.Errorf("failed to decode config: %w", err)
	}
	return s, nil
}
