package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var ErrLayout = errors.New("invalid layout")

// settings is everything a subcommand reads from flags, ORRERY_* variables
// and the optional config file, in that order of precedence.
type settings struct {
	Width       int
	Height      int
	Supersample int
	Workers     int
	Textures    string
	Stars       int
	Labels      bool
	Epoch       string
	Chime       bool
	Verbose     bool

	Scale  int     // window
	TPS    int     // window
	Out    string  // frames
	Frames uint64  // frames
	Rate   float64 // frames, term
}

func loadSettings(flags *pflag.FlagSet, configFile string) (settings, error) {
	v := viper.New()
	v.SetEnvPrefix("ORRERY")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.BindPFlags(flags); err != nil {
		return settings{}, err
	}
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("config %s: %w", configFile, err)
		}
	}

	return settings{
		Width:       v.GetInt("width"),
		Height:      v.GetInt("height"),
		Supersample: v.GetInt("supersample"),
		Workers:     v.GetInt("workers"),
		Textures:    v.GetString("textures"),
		Stars:       v.GetInt("stars"),
		Labels:      v.GetBool("labels"),
		Epoch:       v.GetString("epoch"),
		Chime:       v.GetBool("chime"),
		Verbose:     v.GetBool("verbose"),
		Scale:       v.GetInt("scale"),
		TPS:         v.GetInt("tps"),
		Out:         v.GetString("out"),
		Frames:      v.GetUint64("frames"),
		Rate:        v.GetFloat64("rate"),
	}, nil
}

// parseEpoch reads "" (no epoch), "now" or an RFC3339 time.
func parseEpoch(s string) (time.Time, bool, error) {
	switch s {
	case "":
		return time.Time{}, false, nil
	case "now":
		return time.Now(), true, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid epoch: %w", err)
	}
	return t, true, nil
}

// parseLayout reads a "<cols>x<rows>" grid.
func parseLayout(s string) (int, int, error) {
	parts := strings.Split(s, "x")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("%w: %q (expected NxM)", ErrLayout, s)
	}
	cols, err := strconv.Atoi(parts[0])
	if err != nil || cols <= 0 {
		return 0, 0, fmt.Errorf("%w: cols %q", ErrLayout, parts[0])
	}
	rows, err := strconv.Atoi(parts[1])
	if err != nil || rows <= 0 {
		return 0, 0, fmt.Errorf("%w: rows %q", ErrLayout, parts[1])
	}
	return cols, rows, nil
}
