// Package nesconfig holds the handful of boot-time options a front end
// parses from the command line and hands to the emulator core and its
// logger. It is deliberately a plain struct, not a generic config
// framework: the core never reads configuration files or environment
// variables on its own.
package nesconfig

import (
	"flag"

	"github.com/hollowcart/nescore/pkg/logger"
)

// Config is the set of boot-time options understood by cmd/gones.
type Config struct {
	ROMPath string

	LogLevel  string
	LogFile   string
	CPULog    bool
	PPULog    bool
	APULog    bool
	MapperLog bool

	Headless   bool
	TestFrames int
}

// Parse builds a Config from the given arguments (typically os.Args[1:]).
// It returns flag.ErrHelp if usage was requested, matching flag.FlagSet's
// own convention.
func Parse(args []string) (*Config, error) {
	fs := flag.NewFlagSet("nesgo", flag.ContinueOnError)

	cfg := &Config{}
	fs.StringVar(&cfg.LogLevel, "log-level", "info", "Log level (off, error, warn, info, debug, trace)")
	fs.StringVar(&cfg.LogFile, "log-file", "", "Log file path (empty for stdout)")
	fs.BoolVar(&cfg.CPULog, "cpu-log", false, "Enable CPU instruction logging")
	fs.BoolVar(&cfg.PPULog, "ppu-log", false, "Enable PPU logging")
	fs.BoolVar(&cfg.APULog, "apu-log", false, "Enable APU logging")
	fs.BoolVar(&cfg.MapperLog, "mapper-log", false, "Enable mapper logging")
	fs.BoolVar(&cfg.Headless, "headless", false, "Run without a window, for a fixed number of frames")
	fs.IntVar(&cfg.TestFrames, "frames", 600, "Number of frames to run in headless mode")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() >= 1 {
		cfg.ROMPath = fs.Arg(0)
	}
	return cfg, nil
}

// InitLogger wires the config's logging options into the package-global
// logger.
func (c *Config) InitLogger() error {
	level := logger.GetLogLevelFromString(c.LogLevel)
	if err := logger.Initialize(level, c.LogFile); err != nil {
		return err
	}
	logger.SetCPULogging(c.CPULog)
	logger.SetPPULogging(c.PPULog)
	logger.SetAPULogging(c.APULog)
	logger.SetMapperLogging(c.MapperLog)
	return nil
}
