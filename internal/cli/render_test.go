package cli

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

func writePhoto(t *testing.T, dir string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 90, A: 255})
		}
	}
	path := filepath.Join(dir, "photo.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root, a := rootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := runRoot(context.Background(), root, a)
	return out.String(), err
}

func decodePNG(t *testing.T, path string) image.Image {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("expected output %s: %v", path, err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decoding %s: %v", path, err)
	}
	return img
}

func TestRender_IDSheet(t *testing.T) {
	dir := t.TempDir()
	photo := writePhoto(t, dir, 90, 120)
	out := filepath.Join(dir, "ids.png")
	if _, err := run(t, "render", "idsheet", photo, "-o", out, "--dpi", "150", "--border"); err != nil {
		t.Fatalf("render error = %v", err)
	}
	// 15x10 cm at 150 dpi
	if b := decodePNG(t, out).Bounds(); b.Dx() != 886 || b.Dy() != 591 {
		t.Errorf("size = %dx%d, want 886x591", b.Dx(), b.Dy())
	}
}

func TestRender_PortraitBoth(t *testing.T) {
	dir := t.TempDir()
	photo := writePhoto(t, dir, 100, 150)
	out := filepath.Join(dir, "frame.png")
	if _, err := run(t, "render", "portrait", photo, "-o", out, "--dpi", "150", "--part", "both"); err != nil {
		t.Fatalf("render error = %v", err)
	}
	full := decodePNG(t, filepath.Join(dir, "frame_1.png")).Bounds()
	window := decodePNG(t, filepath.Join(dir, "frame_2.png")).Bounds()
	if full.Dx() != 591 || full.Dy() != 886 {
		t.Errorf("print = %dx%d, want 591x886", full.Dx(), full.Dy())
	}
	if window.Dx() != 591 || window.Dy() != 354 {
		t.Errorf("window = %dx%d, want 591x354", window.Dx(), window.Dy())
	}
}

func TestRender_PDF(t *testing.T) {
	dir := t.TempDir()
	photo := writePhoto(t, dir, 100, 150)
	for _, product := range []string{"centered", "a4", "multiformat", "triptych"} {
		t.Run(product, func(t *testing.T) {
			out := filepath.Join(dir, product+".pdf")
			if _, err := run(t, "render", product, photo, "-o", out, "--dpi", "150"); err != nil {
				t.Fatalf("render error = %v", err)
			}
			b, err := os.ReadFile(out)
			if err != nil {
				t.Fatal(err)
			}
			if !bytes.HasPrefix(b, []byte("%PDF")) {
				t.Errorf("%s is not a PDF", out)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	photo := writePhoto(t, dir, 20, 20)
	tests := []struct {
		name string
		args []string
	}{
		{"unknown product", []string{"render", "poster", photo, "-o", filepath.Join(dir, "x.jpg")}},
		{"missing photo", []string{"render", "idsheet", filepath.Join(dir, "nope.png")}},
		{"dpi out of range", []string{"render", "idsheet", photo, "--dpi", "72", "-o", filepath.Join(dir, "x.jpg")}},
		{"centered as jpeg", []string{"render", "centered", photo, "--dpi", "150", "-o", filepath.Join(dir, "x.jpg")}},
		{"bad output extension", []string{"render", "idsheet", photo, "-o", filepath.Join(dir, "x.gif")}},
		{"bad policy", []string{"render", "idsheet", photo, "--policy", "stretch", "-o", filepath.Join(dir, "x.jpg")}},
		{"unknown layout", []string{"render", "a4", photo, "--layout", "a3", "-o", filepath.Join(dir, "x.pdf")}},
		{"no photos", []string{"render", "idsheet"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, tt.args...); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestPresetsCommand(t *testing.T) {
	out, err := run(t, "presets")
	if err != nil {
		t.Fatalf("presets error = %v", err)
	}
	for _, want := range []string{"formats:", "a4-combined", "width_cm"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestPresetsCommand_FromConfig(t *testing.T) {
	dir := t.TempDir()
	presets := filepath.Join(dir, "presets.yaml")
	if err := os.WriteFile(presets, []byte("formats:\n  - {name: wallet, width_cm: 6, height_cm: 9}\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg := filepath.Join(dir, "printshop.yaml")
	if err := os.WriteFile(cfg, []byte("presets: "+presets+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	out, err := run(t, "--config", cfg, "presets")
	if err != nil {
		t.Fatalf("presets error = %v", err)
	}
	if !strings.Contains(out, "wallet") || strings.Contains(out, "9x13") {
		t.Errorf("expected only the file's formats:\n%s", out)
	}
}

func TestFailingCommandClosesLogFile(t *testing.T) {
	dir := t.TempDir()
	logFile := filepath.Join(dir, "printshop.log")
	cfg := filepath.Join(dir, "printshop.yaml")
	if err := os.WriteFile(cfg, []byte("log_file: "+logFile+"\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	root, a := rootCommand()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"--config", cfg, "render", "idsheet", filepath.Join(dir, "missing.png")})
	var opened bool
	root.PersistentPreRunE = func(cmd *cobra.Command, _ []string) error {
		err := a.load(cmd)
		opened = a.closer != nil
		return err
	}
	if err := runRoot(context.Background(), root, a); err == nil {
		t.Fatal("expected the render to fail")
	}
	if !opened {
		t.Fatal("expected the log file to be opened")
	}
	if a.closer != nil {
		t.Error("expected the log file to be closed after a failing command")
	}
}
