package config

import (
	"testing"
	"time"

	"github.com/gompdf/slicepdf/pkg/api"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "PAGE_SIZE", "MARGIN_MM", "HEADER_BAND_MM", "FOOTER_BAND_MM", "SECTION_CLASS"} {
		t.Setenv(key, "")
	}
	cfg := Load()

	if cfg.Port != "8090" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.PageSize != "A4" || cfg.Margin != 10 || cfg.HeaderBand != 15 || cfg.FooterBand != 15 {
		t.Errorf("page = %s margin %v bands %v/%v", cfg.PageSize, cfg.Margin, cfg.HeaderBand, cfg.FooterBand)
	}
	if cfg.SectionClass != "pdf-section" || cfg.MinSpaceForSectionPx != 50 || cfg.MinProgressFraction != 0.1 {
		t.Errorf("section settings = %q %d %v", cfg.SectionClass, cfg.MinSpaceForSectionPx, cfg.MinProgressFraction)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("PAGE_SIZE", "letter")
	t.Setenv("PAGE_ORIENTATION", "landscape")
	t.Setenv("MARGIN_MM", "12.5")
	t.Setenv("IMAGE_FORMAT", "png")
	t.Setenv("IMAGE_QUALITY", "500")
	t.Setenv("GENERATE_TIMEOUT", "30s")
	t.Setenv("DEBUG", "true")
	t.Setenv("MIN_SPACE_FOR_SECTION_PX", "not-a-number")

	cfg := Load()
	if cfg.Port != "9000" || cfg.Margin != 12.5 || !cfg.Debug {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.GenerateTimeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.GenerateTimeout)
	}
	if cfg.ImageQuality != 100 {
		t.Errorf("out of range quality should fall back, got %d", cfg.ImageQuality)
	}
	if cfg.MinSpaceForSectionPx != 50 {
		t.Errorf("unparsable int should fall back, got %d", cfg.MinSpaceForSectionPx)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}

	c := api.New(cfg.Options()...)
	g, err := c.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	if g.PageWidth != 279.4 || g.PageHeight != 215.9 {
		t.Errorf("landscape letter = %vx%v", g.PageWidth, g.PageHeight)
	}
	if c.Options().ImageFormat != api.ImageFormatPNG {
		t.Errorf("image format = %q", c.Options().ImageFormat)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown page size", func(c *Config) { c.PageSize = "B5" }},
		{"bad orientation", func(c *Config) { c.PageOrientation = "sideways" }},
		{"bad image format", func(c *Config) { c.ImageFormat = "gif" }},
		{"zero progress", func(c *Config) { c.MinProgressFraction = 0 }},
		{"margins too wide", func(c *Config) { c.Margin = 150 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Load()
			tt.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected a validation error")
			}
		})
	}
}
