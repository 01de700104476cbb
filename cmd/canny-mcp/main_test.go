package main

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/ironsheep/canny-tools-mcp/internal/config"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		wantCmd    string
		wantConfig string
		wantArgs   int
		wantErr    bool
	}{
		{"no args", nil, "serve", "", 0, false},
		{"serve", []string{"serve"}, "serve", "", 0, false},
		{"version", []string{"--version"}, "version", "", 0, false},
		{"short help", []string{"-h"}, "help", "", 0, false},
		{"config only", []string{"--config", "a.toml"}, "serve", "a.toml", 0, false},
		{"config then detect", []string{"-c", "a.toml", "detect", "in.png", "out.png"}, "detect", "a.toml", 2, false},
		{"detect with thresholds", []string{"detect", "in.png", "out.png", "0.1", "0.5"}, "detect", "", 4, false},
		{"detect missing output", []string{"detect", "in.png"}, "", "", 0, true},
		{"detect one threshold", []string{"detect", "in.png", "out.png", "0.1"}, "", "", 0, true},
		{"config missing path", []string{"--config"}, "", "", 0, true},
		{"unknown", []string{"--verbose"}, "", "", 0, true},
		{"trailing args", []string{"version", "extra"}, "", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, err := parseArgs(tt.args)
			if tt.wantErr {
				if !errors.Is(err, errUsage) {
					t.Errorf("got %v, want a usage error", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if inv.command != tt.wantCmd {
				t.Errorf("command: got %q, want %q", inv.command, tt.wantCmd)
			}
			if inv.configPath != tt.wantConfig {
				t.Errorf("config: got %q, want %q", inv.configPath, tt.wantConfig)
			}
			if len(inv.args) != tt.wantArgs {
				t.Errorf("args: got %v, want %d of them", inv.args, tt.wantArgs)
			}
		})
	}
}

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"version"}, &out, io.Discard); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if !strings.HasPrefix(out.String(), "canny-mcp "+Version) {
		t.Errorf("got %q", out.String())
	}
}

func TestRun_BadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.toml")
	if err := os.WriteFile(path, []byte("[canny]\nblur_size = 4\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := run([]string{"--config", path, "detect", "in.png", "out.png"}, io.Discard, io.Discard)
	if !errors.Is(err, config.ErrInvalid) {
		t.Errorf("got %v, want %v", err, config.ErrInvalid)
	}
}

func writeStepPNG(t *testing.T, path string, width, height int) {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := width / 2; x < width; x++ {
			img.SetGray(x, y, color.Gray{Y: 255})
		}
	}
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
}

func TestDetect(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "step.png")
	writeStepPNG(t, in, 20, 10)

	tests := []struct {
		name      string
		args      []string
		wantEdges bool
	}{
		{"defaults", nil, true},
		{"high thresholds", []string{"3", "4"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := filepath.Join(dir, tt.name+".png")
			args := append([]string{in, out}, tt.args...)
			if err := detect(config.Default(), args, log.New(io.Discard)); err != nil {
				t.Fatalf("detect failed: %v", err)
			}

			f, err := os.Open(out)
			if err != nil {
				t.Fatalf("output missing: %v", err)
			}
			defer f.Close()
			img, err := png.Decode(f)
			if err != nil {
				t.Fatalf("output is not a PNG: %v", err)
			}
			if b := img.Bounds(); b.Dx() != 20 || b.Dy() != 10 {
				t.Errorf("size: got %dx%d, want 20x10", b.Dx(), b.Dy())
			}

			white := 0
			for y := 0; y < 10; y++ {
				for x := 0; x < 20; x++ {
					if g := color.GrayModel.Convert(img.At(x, y)).(color.Gray); g.Y == 255 {
						white++
					}
				}
			}
			if (white > 0) != tt.wantEdges {
				t.Errorf("edge pixels: got %d, want edges %v", white, tt.wantEdges)
			}
		})
	}
}

func TestDetect_Errors(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "step.png")
	writeStepPNG(t, in, 20, 10)
	out := filepath.Join(dir, "out.png")

	tests := []struct {
		name string
		args []string
	}{
		{"missing input", []string{filepath.Join(dir, "missing.png"), out}},
		{"bad threshold", []string{in, out, "low", "0.5"}},
		{"negative threshold", []string{in, out, "-1", "0.5"}},
		{"nan threshold", []string{in, out, "NaN", "1"}},
		{"infinite threshold", []string{in, out, "0.1", "+Inf"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := detect(config.Default(), tt.args, log.New(io.Discard)); err == nil {
				t.Error("expected error")
			}
		})
	}
}
