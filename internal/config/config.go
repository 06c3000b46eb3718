package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gompdf/slicepdf/internal/geometry"
	"github.com/gompdf/slicepdf/pkg/api"
)

type Config struct {
	Port string

	// Auth; requests are unauthenticated when empty
	APIKey string

	// Request limits
	MaxBodyBytes    int64
	GenerateTimeout time.Duration

	// Page layout, lengths in mm
	PageSize        string
	PageOrientation string
	Margin          float64
	HeaderBand      float64
	FooterBand      float64

	// Rendering
	DPI          float64
	RasterScale  float64
	ImageFormat  string
	ImageQuality int

	// Section breaking
	SectionClass         string
	SlackUnits           float64
	MinSpaceForSectionPx int
	MinProgressFraction  float64

	HeaderText string
	FooterText string

	Debug bool
}

func Load() Config {
	defaults := api.DefaultOptions()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		APIKey: os.Getenv("SLICEPDF_API_KEY"),

		MaxBodyBytes:    envInt64("MAX_BODY_BYTES", 10485760), // 10MB
		GenerateTimeout: envDuration("GENERATE_TIMEOUT", 2*time.Minute),

		PageSize:        envOr("PAGE_SIZE", geometry.PageSizeA4.Name),
		PageOrientation: envOr("PAGE_ORIENTATION", string(api.PageOrientationPortrait)),
		Margin:          envFloat("MARGIN_MM", defaults.Margin),
		HeaderBand:      envFloat("HEADER_BAND_MM", defaults.HeaderBand),
		FooterBand:      envFloat("FOOTER_BAND_MM", defaults.FooterBand),

		DPI:          envFloat("DPI", defaults.DPI),
		RasterScale:  envFloat("RASTER_SCALE", defaults.RasterScale),
		ImageFormat:  envOr("IMAGE_FORMAT", string(defaults.ImageFormat)),
		ImageQuality: envInt("IMAGE_QUALITY", defaults.ImageQuality),

		SectionClass:         envOr("SECTION_CLASS", defaults.SectionClass),
		SlackUnits:           envFloat("SLACK_MM", defaults.SlackUnits),
		MinSpaceForSectionPx: envInt("MIN_SPACE_FOR_SECTION_PX", defaults.MinSpaceForSectionPx),
		MinProgressFraction:  envFloat("MIN_PROGRESS_FRACTION", defaults.MinProgressFraction),

		HeaderText: os.Getenv("HEADER_TEXT"),
		FooterText: os.Getenv("FOOTER_TEXT"),

		Debug: envBool("DEBUG", false),
	}

	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 10485760
	}
	if cfg.GenerateTimeout <= 0 {
		cfg.GenerateTimeout = 2 * time.Minute
	}
	if cfg.DPI <= 0 {
		cfg.DPI = defaults.DPI
	}
	if cfg.RasterScale <= 0 {
		cfg.RasterScale = defaults.RasterScale
	}
	if cfg.ImageQuality <= 0 || cfg.ImageQuality > 100 {
		cfg.ImageQuality = defaults.ImageQuality
	}

	return cfg
}

func (c Config) Validate() error {
	if _, ok := geometry.LookupPageSize(c.PageSize); !ok {
		return fmt.Errorf("PAGE_SIZE %q is not a known page size", c.PageSize)
	}
	switch api.PageOrientation(strings.ToLower(c.PageOrientation)) {
	case api.PageOrientationPortrait, api.PageOrientationLandscape:
	default:
		return fmt.Errorf("PAGE_ORIENTATION must be portrait or landscape, got %q", c.PageOrientation)
	}
	switch api.ImageFormat(strings.ToLower(c.ImageFormat)) {
	case api.ImageFormatJPEG, api.ImageFormatPNG:
	default:
		return fmt.Errorf("IMAGE_FORMAT must be jpeg or png, got %q", c.ImageFormat)
	}
	if c.MinProgressFraction <= 0 || c.MinProgressFraction > 1 {
		return fmt.Errorf("MIN_PROGRESS_FRACTION must be in (0, 1], got %v", c.MinProgressFraction)
	}
	if _, err := api.New(c.Options()...).Geometry(); err != nil {
		return err
	}
	return nil
}

// Options maps the configuration onto converter options
func (c Config) Options() []api.Option {
	ps, ok := geometry.LookupPageSize(c.PageSize)
	if !ok {
		ps = geometry.PageSizeA4
	}
	return []api.Option{
		api.WithPageSize(ps.Width, ps.Height),
		api.WithPageOrientation(api.PageOrientation(strings.ToLower(c.PageOrientation))),
		api.WithMargin(c.Margin),
		api.WithHeaderBand(c.HeaderBand),
		api.WithFooterBand(c.FooterBand),
		api.WithDPI(c.DPI),
		api.WithRasterScale(c.RasterScale),
		api.WithImageFormat(api.ImageFormat(strings.ToLower(c.ImageFormat))),
		api.WithImageQuality(c.ImageQuality),
		api.WithSectionClass(c.SectionClass),
		api.WithSlack(c.SlackUnits),
		api.WithMinSpaceForSection(c.MinSpaceForSectionPx),
		api.WithMinProgressFraction(c.MinProgressFraction),
		api.WithHeaderText(c.HeaderText),
		api.WithFooterText(c.FooterText),
		api.WithDebug(c.Debug),
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
