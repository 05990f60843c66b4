package main

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseLayout(t *testing.T) {
	cases := []struct {
		in         string
		cols, rows int
		ok         bool
	}{
		{"3x2", 3, 2, true},
		{"1x1", 1, 1, true},
		{"3", 0, 0, false},
		{"ax2", 0, 0, false},
		{"0x2", 0, 0, false},
		{"2x2x2", 0, 0, false},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			cols, rows, err := parseLayout(c.in)
			if !c.ok {
				if !errors.Is(err, ErrLayout) {
					t.Fatalf("parseLayout(%q) error = %v", c.in, err)
				}
				return
			}
			if err != nil || cols != c.cols || rows != c.rows {
				t.Fatalf("parseLayout(%q) = %d, %d, %v", c.in, cols, rows, err)
			}
		})
	}
}

func TestParseEpoch(t *testing.T) {
	if _, ok, err := parseEpoch(""); ok || err != nil {
		t.Fatalf("empty epoch: ok=%v err=%v", ok, err)
	}
	got, ok, err := parseEpoch("2024-04-08T18:17:00Z")
	if err != nil || !ok {
		t.Fatalf("parseEpoch: %v", err)
	}
	if want := time.Date(2024, 4, 8, 18, 17, 0, 0, time.UTC); !got.Equal(want) {
		t.Fatalf("parseEpoch = %v", got)
	}
	if _, ok, err := parseEpoch("now"); !ok || err != nil {
		t.Fatalf("now: ok=%v err=%v", ok, err)
	}
	if _, _, err := parseEpoch("yesterday"); err == nil {
		t.Fatal("bad epoch accepted")
	}
}

func TestLoadSettingsPrecedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "orrery.yaml")
	if err := os.WriteFile(cfgPath, []byte("width: 320\nheight: 200\nstars: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("ORRERY_HEIGHT", "240")

	root := newRootCmd()
	frames, _, err := root.Find([]string{"frames"})
	if err != nil {
		t.Fatal(err)
	}
	if err := frames.ParseFlags([]string{"--stars", "9", "--frames", "4"}); err != nil {
		t.Fatal(err)
	}

	st, err := loadSettings(frames.Flags(), cfgPath)
	if err != nil {
		t.Fatalf("loadSettings: %v", err)
	}
	if st.Width != 320 {
		t.Errorf("width = %d, want 320 from file", st.Width)
	}
	if st.Height != 240 {
		t.Errorf("height = %d, want 240 from env", st.Height)
	}
	if st.Stars != 9 {
		t.Errorf("stars = %d, want 9 from flag", st.Stars)
	}
	if st.Frames != 4 || st.Out != "frames" || st.Supersample != 1 {
		t.Errorf("frame settings = %+v", st)
	}

	if _, err := loadSettings(frames.Flags(), filepath.Join(dir, "missing.yaml")); err == nil {
		t.Fatal("missing config file accepted")
	}
}
