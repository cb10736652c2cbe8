// Package config provides configuration loading and management for gmosmask.
// It handles loading instrument configuration from YAML files, validates
// every physical quantity against its expected unit at load time, and
// provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"gmosmask/pkg/edgefind"
	"gmosmask/pkg/geometry"
	"gmosmask/pkg/units"
)

// Quantity is a YAML value/unit pair. The unit is validated when the
// configuration is turned into optics parameters, so a mismatch is caught
// at load time rather than inside the mapping.
type Quantity struct {
	Value float64 `yaml:"value"`
	Unit  string  `yaml:"unit"`
}

// Config represents the application configuration loaded from YAML
type Config struct {
	// Instrument optical parameters
	Instrument struct {
		// XScale, YScale are the per-axis detector plate scales
		XScale Quantity `yaml:"xScale"`
		YScale Quantity `yaml:"yScale"`

		// AnamorphicFactor is the grating's dispersion-axis magnification
		AnamorphicFactor float64 `yaml:"anamorphicFactor"`

		// PlateScale converts mask mm to sky arcsec
		PlateScale Quantity `yaml:"plateScale"`

		// Wavelength window and dispersion of the setup
		WavelengthOffset   Quantity `yaml:"wavelengthOffset"`
		SpectralPixelScale Quantity `yaml:"spectralPixelScale"`
		WavelengthStart    Quantity `yaml:"wavelengthStart"`
		WavelengthCentral  Quantity `yaml:"wavelengthCentral"`
		WavelengthEnd      Quantity `yaml:"wavelengthEnd"`

		// YDistortionCoefficients are the cubic distortion terms applied
		// to the slit y position in mm
		YDistortionCoefficients []float64 `yaml:"yDistortionCoefficients"`

		// YOffset is a cross-dispersion shift in pixels
		YOffset Quantity `yaml:"yOffset"`
	} `yaml:"instrument"`

	// Edge detection parameters
	Edges struct {
		// SmoothSigma is the Gaussian sigma for the gradient profile
		SmoothSigma float64 `yaml:"smoothSigma"`

		// ClipSigma and ClipIters drive the iterative sigma clipping
		ClipSigma float64 `yaml:"clipSigma"`
		ClipIters int     `yaml:"clipIters"`
	} `yaml:"edges"`

	// Output parameters
	Output struct {
		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`

		// PreviewDir is where cutout preview images are written, empty
		// to disable
		PreviewDir string `yaml:"previewDir"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Unbinned detector scales and a mid-range wavelength window
	cfg.Instrument.XScale = Quantity{Value: 0.0727, Unit: "arcsec/pix"}
	cfg.Instrument.YScale = Quantity{Value: 0.0727, Unit: "arcsec/pix"}
	cfg.Instrument.AnamorphicFactor = 1.0
	cfg.Instrument.PlateScale = Quantity{Value: geometry.DefaultPlateScale, Unit: "arcsec/mm"}
	cfg.Instrument.WavelengthOffset = Quantity{Value: 0, Unit: "angstrom"}
	cfg.Instrument.SpectralPixelScale = Quantity{Value: 0.47, Unit: "angstrom/pix"}
	cfg.Instrument.WavelengthStart = Quantity{Value: 4500, Unit: "angstrom"}
	cfg.Instrument.WavelengthCentral = Quantity{Value: 6000, Unit: "angstrom"}
	cfg.Instrument.WavelengthEnd = Quantity{Value: 7500, Unit: "angstrom"}
	cfg.Instrument.YDistortionCoefficients = []float64{1, 0, 0}
	cfg.Instrument.YOffset = Quantity{Value: 0, Unit: "pix"}

	cfg.Edges.SmoothSigma = 3
	cfg.Edges.ClipSigma = 2
	cfg.Edges.ClipIters = 5

	cfg.Output.Verbose = true
	cfg.Output.PreviewDir = ""

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	// Surface unit mismatches at load time, not inside the pipeline
	if _, err := cfg.Optics(); err != nil {
		return nil, fmt.Errorf("invalid configuration %s: %w", configPath, err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}

// Optics validates the instrument block and converts every quantity to the
// base units used by pkg/geometry.
func (c *Config) Optics() (geometry.Optics, error) {
	var o geometry.Optics
	var err error

	conv := func(q Quantity, to units.Unit, name string) float64 {
		if err != nil {
			return 0
		}
		u, parseErr := units.Parse(q.Unit)
		if parseErr != nil {
			err = fmt.Errorf("%s: %w", name, parseErr)
			return 0
		}
		v, convErr := units.In(units.Quantity{Value: q.Value, Unit: u}, to)
		if convErr != nil {
			err = fmt.Errorf("%s: %w", name, convErr)
			return 0
		}
		return v
	}

	i := c.Instrument
	o.XScale = conv(i.XScale, units.ArcsecPerPix, "xScale")
	o.YScale = conv(i.YScale, units.ArcsecPerPix, "yScale")
	o.PlateScale = conv(i.PlateScale, units.ArcsecPerMM, "plateScale")
	o.WavelengthOffset = conv(i.WavelengthOffset, units.Angstrom, "wavelengthOffset")
	o.SpectralPixelScale = conv(i.SpectralPixelScale, units.AngstromPerPix, "spectralPixelScale")
	o.WavelengthStart = conv(i.WavelengthStart, units.Angstrom, "wavelengthStart")
	o.WavelengthCentral = conv(i.WavelengthCentral, units.Angstrom, "wavelengthCentral")
	o.WavelengthEnd = conv(i.WavelengthEnd, units.Angstrom, "wavelengthEnd")
	o.YOffset = conv(i.YOffset, units.Pixel, "yOffset")
	if err != nil {
		return geometry.Optics{}, err
	}

	o.AnamorphicFactor = i.AnamorphicFactor
	switch len(i.YDistortionCoefficients) {
	case 0:
		o.YDistortion = [3]float64{1, 0, 0}
	case 3:
		copy(o.YDistortion[:], i.YDistortionCoefficients)
	default:
		return geometry.Optics{}, fmt.Errorf("yDistortionCoefficients needs 3 terms, got %d",
			len(i.YDistortionCoefficients))
	}

	if err := o.Validate(); err != nil {
		return geometry.Optics{}, err
	}
	return o, nil
}

// EdgeParams returns the edge detection parameters.
func (c *Config) EdgeParams() edgefind.Params {
	return edgefind.Params{
		SmoothSigma: c.Edges.SmoothSigma,
		ClipSigma:   c.Edges.ClipSigma,
		ClipIters:   c.Edges.ClipIters,
	}
}
