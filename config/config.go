package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/Yuvraj-cyborg/deduck/internal"
)

type Config struct {
	Database struct {
		Path string
	}
	Store struct {
		Dir string
	}
	Scanner struct {
		Extensions    []string
		AllExtensions bool `mapstructure:"all_extensions"`
	}
	Similarity struct {
		Threshold  int
		Extensions []string
	}
	Performance struct {
		Workers int
	}
	Logging struct {
		Level string
		File  string
	}
}

var cfg Config

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.AddConfigPath("$HOME/" + internal.ConfigDirName)
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/deduck")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	return unmarshal(v)
}

// LoadFile 从指定文件加载配置
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return unmarshal(v)
}

func Get() *Config {
	return &cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("database.path", internal.DefaultDatabasePath)
	v.SetDefault("store.dir", internal.DefaultStoreDir)
	v.SetDefault("scanner.extensions", internal.DefaultExtensions)
	v.SetDefault("scanner.all_extensions", false)
	v.SetDefault("similarity.threshold", internal.DefaultSimilarityThreshold)
	v.SetDefault("similarity.extensions", internal.DefaultImageExtensions)
	v.SetDefault("performance.workers", internal.DefaultWorkers)
	v.SetDefault("logging.level", "info")

	v.SetEnvPrefix("DEDUCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func unmarshal(v *viper.Viper) (*Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, err
	}

	if c.Performance.Workers <= 0 {
		c.Performance.Workers = internal.DefaultWorkers
	}

	cfg = c
	return &cfg, nil
}

// ExpandPath 展开路径开头的 ~
func ExpandPath(path string) (string, error) {
	if len(path) >= 2 && path[0] == '~' && (path[1] == '/' || path[1] == '\\') {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[2:]), nil
	}
	return path, nil
}
