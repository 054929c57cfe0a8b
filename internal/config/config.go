// Package config loads pipeline settings from defaults, an optional config
// file, FRAMECAST_* environment variables and command-line flags, in
// increasing order of precedence.
package config

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/lanikai/framecast/internal/logging"
)

var log = logging.DefaultLogger.WithTag("config")

const envPrefix = "FRAMECAST"

type Config struct {
	// Frame source spec, e.g. "v4l2:/dev/video0" or "pattern:".
	Source string `mapstructure:"source"`

	Capture  Capture `mapstructure:"capture"`
	Encode   Encode  `mapstructure:"encode"`
	Queue    Queue   `mapstructure:"queue"`
	Server   Server  `mapstructure:"server"`
	Monitor  Monitor `mapstructure:"monitor"`
	Realtime bool    `mapstructure:"realtime"`
	LogLevel string  `mapstructure:"loglevel"`
}

type Capture struct {
	Width        int           `mapstructure:"width"`
	Height       int           `mapstructure:"height"`
	WarmupFrames int           `mapstructure:"warmup_frames"`
	PoolDepth    int           `mapstructure:"pool_depth"`
	Period       time.Duration `mapstructure:"period"`
	Slack        time.Duration `mapstructure:"slack"`

	// Frames to capture before shutting down cleanly. Zero runs until
	// interrupted.
	NumFrames int `mapstructure:"num_frames"`
}

type Encode struct {
	Format           string `mapstructure:"format"`
	Dir              string `mapstructure:"dir"`
	MaxFrames        int    `mapstructure:"max_frames"`
	PayloadPoolDepth int    `mapstructure:"payload_pool_depth"`
	Gamma            bool   `mapstructure:"gamma"`
	JPEGQuality      int    `mapstructure:"jpeg_quality"`
}

type Queue struct {
	FrameName   string `mapstructure:"frame_name"`
	FrameDepth  int    `mapstructure:"frame_depth"`
	ServerName  string `mapstructure:"server_name"`
	ServerDepth int    `mapstructure:"server_depth"`
}

type Server struct {
	Addr            string        `mapstructure:"addr"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	DiscardWhenIdle bool          `mapstructure:"discard_when_idle"`
}

type Monitor struct {
	// HTTP listen address for /metrics, /healthz and /preview. Empty
	// disables the monitor.
	Addr string `mapstructure:"addr"`
}

var defaults = map[string]interface{}{
	"source":                    "v4l2:/dev/video0",
	"capture.width":             640,
	"capture.height":            480,
	"capture.warmup_frames":     40,
	"capture.pool_depth":        4,
	"capture.period":            100 * time.Millisecond,
	"capture.slack":             100 * time.Microsecond,
	"capture.num_frames":        100,
	"encode.format":             "jpeg",
	"encode.dir":                "",
	"encode.max_frames":         100,
	"encode.payload_pool_depth": 4,
	"encode.gamma":              false,
	"encode.jpeg_quality":       50,
	"queue.frame_name":          "/frame_queue",
	"queue.frame_depth":         4,
	"queue.server_name":         "/server_queue",
	"queue.server_depth":        4,
	"server.addr":               ":12345",
	"server.write_timeout":      2 * time.Second,
	"server.discard_when_idle":  true,
	"monitor.addr":              "",
	"realtime":                  false,
	"loglevel":                  "",
}

// New returns a viper instance carrying the defaults and the environment
// binding. Keys map to variables by upper-casing and replacing dots, e.g.
// FRAMECAST_CAPTURE_PERIOD.
func New() *viper.Viper {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Default returns the built-in configuration, ignoring files and environment.
func Default() *Config {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	cfg, err := decode(v)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads file (YAML, TOML or JSON by extension) if non-empty, otherwise
// looks for framecast.* in the working directory and /etc/framecast. A missing
// default file is not an error.
func Load(v *viper.Viper, file string) (*Config, error) {
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("framecast")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/framecast")
	}
	if err := v.ReadInConfig(); err != nil {
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if file != "" || !notFound {
			return nil, errors.Wrap(err, "read config")
		}
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}
	log.Low("Using config file %q", v.ConfigFileUsed())
	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode config")
	}
	if cfg.Encode.Dir == "" {
		cfg.Encode.Dir = "capture_" + cfg.Encode.Format
	}
	return &cfg, nil
}

// BindFlags registers command-line overrides for the commonly tuned keys.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.StringP("source", "s", defaults["source"].(string), "Frame source (v4l2:<device>, pattern:, ppm:<dir>)")
	fs.IntP("width", "W", defaults["capture.width"].(int), "Frame width in pixels")
	fs.IntP("height", "H", defaults["capture.height"].(int), "Frame height in pixels")
	fs.DurationP("period", "p", defaults["capture.period"].(time.Duration), "Capture period")
	fs.IntP("frames", "n", defaults["capture.num_frames"].(int), "Frames to capture, 0 for unlimited")
	fs.StringP("format", "f", defaults["encode.format"].(string), "Output format (jpeg, ppm)")
	fs.StringP("dir", "d", "", "Output directory (default capture_<format>)")
	fs.IntP("max-frames", "m", defaults["encode.max_frames"].(int), "Files kept besides the newest")
	fs.Bool("gamma", false, "Apply the NetPBM transfer function to PPM output")
	fs.StringP("listen", "l", defaults["server.addr"].(string), "Server listen address")
	fs.String("monitor", "", "Monitor HTTP address, e.g. :8080")
	fs.Bool("realtime", false, "Run stages under SCHED_FIFO")
	fs.String("loglevel", "", "Log level directives, e.g. 'low' or 'server=low'")

	for key, flag := range map[string]string{
		"source":             "source",
		"capture.width":      "width",
		"capture.height":     "height",
		"capture.period":     "period",
		"capture.num_frames": "frames",
		"encode.format":      "format",
		"encode.dir":         "dir",
		"encode.max_frames":  "max-frames",
		"encode.gamma":       "gamma",
		"server.addr":        "listen",
		"monitor.addr":       "monitor",
		"realtime":           "realtime",
		"loglevel":           "loglevel",
	} {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return errors.Wrapf(err, "bind --%s", flag)
		}
	}
	return nil
}
