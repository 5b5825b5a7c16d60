package sim

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Params is the immutable-after-setup configuration of one simulation
// scenario. A preset is compiled in per scenario; a YAML file can override
// individual fields before the scheduler starts. Lengths are normalized by
// the initial bubble radius, so the interface sits near r = 1.
type Params struct {
	Scenario string `yaml:"scenario"`

	// Mesh resolution.
	MaxLevel       int `yaml:"max_level"`        // finest refinement depth
	MinLevelOffset int `yaml:"min_level_offset"` // min level = max_level - offset
	InitLevel      int `yaml:"init_level"`       // uniform depth before geometry init

	// Time control.
	Tmax  float64 `yaml:"tmax"`  // stop once simulation time reaches this
	Tsnap float64 `yaml:"tsnap"` // snapshot interval

	// Domain.
	DomainSize float64 `yaml:"domain_size"`
	X0         float64 `yaml:"x0"`
	Y0         float64 `yaml:"y0"`

	// Physical ratios. The gas-to-liquid density ratio and the Ohnesorge
	// number of the film; gas viscosity is ViscosityRatio * Ohnesorge.
	DensityRatio   float64 `yaml:"density_ratio"`
	Ohnesorge      float64 `yaml:"ohnesorge"`
	ViscosityRatio float64 `yaml:"viscosity_ratio"`
	Bond           float64 `yaml:"bond"`

	// CurvatureRatio is R/h; the film thickness h is its inverse.
	CurvatureRatio float64 `yaml:"curvature_ratio"`

	// Passive tracer. A zero TracerScale disables tracer initialization.
	TracerScale      float64 `yaml:"tracer_scale"`
	TracerPeclet     float64 `yaml:"tracer_peclet"`
	TracerSolubility float64 `yaml:"tracer_solubility"`

	// Per-field refinement error tolerances.
	FTol     float64 `yaml:"f_tol"`
	VelTol   float64 `yaml:"vel_tol"`
	KappaTol float64 `yaml:"kappa_tol"`

	// Persisted-state layout.
	RestartPath string `yaml:"restart_path"`
	SnapshotDir string `yaml:"snapshot_dir"`
	LogPath     string `yaml:"log_path"`

	// Optional tracer injection partway through the run.
	Injection *Injection `yaml:"injection,omitempty"`
}

// Injection places a circular blob of tracer into the flow at a given time,
// for flow visualization.
type Injection struct {
	Time   float64 `yaml:"time"`
	X      float64 `yaml:"x"`
	Y      float64 `yaml:"y"`
	Radius float64 `yaml:"radius"`
}

// FilmThickness returns h = 1/CurvatureRatio.
func (p *Params) FilmThickness() float64 { return 1 / p.CurvatureRatio }

// MinLevel returns the coarsest level the refiner may coarsen to.
func (p *Params) MinLevel() int { return p.MaxLevel - p.MinLevelOffset }

// SoapBubble is the full-bubble scenario preset.
func SoapBubble() Params {
	return Params{
		Scenario:       "soap-bubble",
		MaxLevel:       8,
		MinLevelOffset: 4,
		InitLevel:      4,
		Tmax:           1.0,
		Tsnap:          0.01,
		DomainSize:     2.4,
		X0:             -1.0,
		Y0:             0.0,
		DensityRatio:   1e-3,
		Ohnesorge:      1e-2,
		ViscosityRatio: 1e-2,
		Bond:           1e-1,
		CurvatureRatio: 1e1,
		FTol:           1e-3,
		VelTol:         1e-3,
		KappaTol:       1e-3,
		RestartPath:    "dump",
		SnapshotDir:    "intermediate",
		LogPath:        "log",
	}
}

// SoapBubbleHalf is the half-bubble scenario preset with the smoke tracer
// enabled.
func SoapBubbleHalf() Params {
	p := SoapBubble()
	p.Scenario = "soap-bubble-half"
	p.MaxLevel = 11
	p.InitLevel = 6
	p.DomainSize = 5.0
	p.X0 = 0.0
	p.Ohnesorge = 1e-3
	p.ViscosityRatio = 1e-3
	p.Bond = 0
	p.CurvatureRatio = 2.5e1
	p.TracerScale = 1e1
	p.TracerPeclet = 1e-1
	p.TracerSolubility = 1e-3
	return p
}

// LoadParams reads a YAML file and overlays it on base. Fields absent from
// the file keep their preset values.
func LoadParams(path string, base Params) (Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("read params %s: %w", path, err)
	}
	p := base
	if err := yaml.Unmarshal(data, &p); err != nil {
		return base, fmt.Errorf("parse params %s: %w", path, err)
	}
	return p, nil
}

// Validate checks the parameter record for internal consistency.
func (p *Params) Validate() error {
	switch {
	case p.MaxLevel < 1:
		return fmt.Errorf("max_level must be >= 1, got %d", p.MaxLevel)
	case p.MinLevelOffset < 0 || p.MinLevelOffset > p.MaxLevel:
		return fmt.Errorf("min_level_offset %d outside [0, %d]", p.MinLevelOffset, p.MaxLevel)
	case p.InitLevel < 1 || p.InitLevel > p.MaxLevel:
		return fmt.Errorf("init_level %d outside [1, %d]", p.InitLevel, p.MaxLevel)
	case p.Tmax <= 0:
		return fmt.Errorf("tmax must be positive, got %g", p.Tmax)
	case p.Tsnap <= 0:
		return fmt.Errorf("tsnap must be positive, got %g", p.Tsnap)
	case p.DomainSize <= 0:
		return fmt.Errorf("domain_size must be positive, got %g", p.DomainSize)
	case p.CurvatureRatio <= 1:
		return fmt.Errorf("curvature_ratio must exceed 1, got %g", p.CurvatureRatio)
	case p.FTol <= 0 || p.VelTol <= 0 || p.KappaTol <= 0:
		return fmt.Errorf("refinement tolerances must be positive")
	case p.RestartPath == "" || p.SnapshotDir == "" || p.LogPath == "":
		return fmt.Errorf("restart_path, snapshot_dir and log_path must be set")
	}
	if inj := p.Injection; inj != nil {
		if inj.Radius <= 0 {
			return fmt.Errorf("injection radius must be positive, got %g", inj.Radius)
		}
		if inj.Time < 0 || inj.Time > p.Tmax {
			return fmt.Errorf("injection time %g outside [0, tmax]", inj.Time)
		}
	}
	return nil
}
