package InputParameters

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/notargets/treedg/treemesh"
	"github.com/notargets/treedg/types"
)

type RefineBox struct {
	Lo    []float64 `yaml:"Lo"`
	Hi    []float64 `yaml:"Hi"`
	Level int       `yaml:"Level"`
}

// Parameters obtained from the YAML input file
type InputParameters struct {
	Title                  string            `yaml:"Title"`
	Equation               string            `yaml:"Equation"` // euler, advection or shallow_water
	Dimensions             int               `yaml:"Dimensions"`
	PolynomialOrder        int               `yaml:"PolynomialOrder"`
	InitialRefinementLevel int               `yaml:"InitialRefinementLevel"`
	Refine                 []RefineBox       `yaml:"Refine"`
	DomainLo               []float64         `yaml:"DomainLo"`
	DomainHi               []float64         `yaml:"DomainHi"`
	Periodic               []bool            `yaml:"Periodic"`
	VolumeIntegral         string            `yaml:"VolumeIntegral"`
	SurfaceFlux            string            `yaml:"SurfaceFlux"`
	VolumeFlux             string            `yaml:"VolumeFlux"`
	Alpha                  float64           `yaml:"Alpha"` // Constant blending for shock capturing
	Gamma                  float64           `yaml:"Gamma"`
	Gravity                float64           `yaml:"Gravity"`
	AdvectionVelocity      []float64         `yaml:"AdvectionVelocity"`
	InitType               string            `yaml:"InitType"`
	BCs                    map[string]string `yaml:"BCs"` // Face name to BC type
	Backend                string            `yaml:"Backend"`
	Threads                int               `yaml:"Threads"`
	Partitions             int               `yaml:"Partitions"`
	Debug                  bool              `yaml:"Debug"`
}

func (ip *InputParameters) Parse(data []byte) error {
	if err := yaml.Unmarshal(data, ip); err != nil {
		return err
	}
	ip.setDefaults()
	return ip.Validate()
}

func (ip *InputParameters) setDefaults() {
	if ip.Dimensions == 0 {
		ip.Dimensions = 2
	}
	if ip.PolynomialOrder == 0 {
		ip.PolynomialOrder = 3
	}
	if len(ip.Equation) == 0 {
		ip.Equation = "euler"
	}
	if len(ip.VolumeIntegral) == 0 {
		ip.VolumeIntegral = "flux_differencing"
	}
	if ip.Gamma == 0 {
		ip.Gamma = 1.4
	}
	if ip.Gravity == 0 {
		ip.Gravity = 9.81
	}
	if len(ip.Backend) == 0 {
		ip.Backend = "parallel"
	}
	if len(ip.DomainLo) == 0 && len(ip.DomainHi) == 0 {
		ip.DomainLo, ip.DomainHi = []float64{-1, -1, -1}, []float64{1, 1, 1}
	}
}

func (ip *InputParameters) Validate() error {
	if ip.Dimensions < 1 || ip.Dimensions > 3 {
		return fmt.Errorf("Dimensions must be 1, 2 or 3, have %d", ip.Dimensions)
	}
	if len(ip.DomainLo) < ip.Dimensions || len(ip.DomainHi) < ip.Dimensions {
		return fmt.Errorf("DomainLo and DomainHi need %d coordinates", ip.Dimensions)
	}
	if len(ip.Periodic) > 3 {
		return fmt.Errorf("Periodic has %d entries", len(ip.Periodic))
	}
	for face, bc := range ip.BCs {
		f, err := types.FaceByName(face)
		if err != nil {
			return err
		}
		if f >= 2*ip.Dimensions {
			return fmt.Errorf("face %s does not exist in %d dimensions", face, ip.Dimensions)
		}
		if _, err = types.NewBCFLAG(bc); err != nil {
			return fmt.Errorf("face %s: %w", face, err)
		}
	}
	for i, rb := range ip.Refine {
		if len(rb.Lo) < ip.Dimensions || len(rb.Hi) < ip.Dimensions {
			return fmt.Errorf("refine box %d needs %d coordinates", i, ip.Dimensions)
		}
	}
	return nil
}

// MeshConfig is the tree mesh described by the input.
func (ip *InputParameters) MeshConfig() (cfg treemesh.Config) {
	cfg = treemesh.Config{
		NDims:        ip.Dimensions,
		InitialLevel: ip.InitialRefinementLevel,
		Partitions:   ip.Partitions,
	}
	copy(cfg.Lo[:], ip.DomainLo)
	copy(cfg.Hi[:], ip.DomainHi)
	copy(cfg.Periodic[:], ip.Periodic)
	for _, rb := range ip.Refine {
		box := treemesh.RefineBox{Level: rb.Level}
		copy(box.Lo[:], rb.Lo)
		copy(box.Hi[:], rb.Hi)
		cfg.Refine = append(cfg.Refine, box)
	}
	return
}

// BoundaryTypes returns the boundary condition of every non periodic domain
// face, indexed by face. Faces missing from BCs default to walls.
func (ip *InputParameters) BoundaryTypes() (bcs map[int]types.BCFLAG) {
	bcs = make(map[int]types.BCFLAG)
	for f := 0; f < 2*ip.Dimensions; f++ {
		if f/2 < len(ip.Periodic) && ip.Periodic[f/2] {
			continue
		}
		bcs[f] = types.BC_Wall
	}
	for face, bc := range ip.BCs {
		f, _ := types.FaceByName(face)
		if _, ok := bcs[f]; ok {
			bcs[f], _ = types.NewBCFLAG(bc)
		}
	}
	return
}

func (ip *InputParameters) Print() {
	fmt.Printf("\"%s\"\t\t= Title\n", ip.Title)
	fmt.Printf("[%s]\t\t= Equation\n", ip.Equation)
	fmt.Printf("[%d]\t\t\t\t= Dimensions\n", ip.Dimensions)
	fmt.Printf("[%d]\t\t\t\t= Polynomial Order\n", ip.PolynomialOrder)
	fmt.Printf("[%d]\t\t\t\t= Initial Refinement Level\n", ip.InitialRefinementLevel)
	fmt.Printf("[%s]\t= Volume Integral\n", ip.VolumeIntegral)
	fmt.Printf("[%s]\t\t\t= Surface Flux\n", ip.SurfaceFlux)
	fmt.Printf("[%s]\t\t\t= Volume Flux\n", ip.VolumeFlux)
	fmt.Printf("[%s]\t= InitType\n", ip.InitType)
	fmt.Printf("[%s]\t\t= Backend\n", ip.Backend)
	keys := make([]string, 0, len(ip.BCs))
	for k := range ip.BCs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		fmt.Printf("BCs[%s] = %v\n", key, strings.ToLower(ip.BCs[key]))
	}
}
