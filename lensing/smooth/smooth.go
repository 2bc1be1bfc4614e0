// Package smooth applies spatial smoothing kernels to convergence grids.
//
// Two kernels are available: identity (no-op, for disabled smoothing) and an
// isotropic Gaussian. Boundaries are handled by reflect extension rather
// than zero padding, since zero padding would bias map edges toward zero.
//
// The Gaussian path auto-selects between direct separable convolution for
// short kernels and an FFT-based method for long ones.
package smooth

import (
	"errors"
	"math"

	"github.com/cwbudde/algo-vecmath"

	"github.com/cwbudde/algo-lensing/lensing/kaisersquires"
)

// Errors returned by smoothing.
var (
	ErrInvalidSigma  = errors.New("smooth: sigma must be > 0 for the gaussian kernel")
	ErrUnknownKernel = errors.New("smooth: unknown kernel")
	ErrEmptyField    = errors.New("smooth: empty field")
	ErrRaggedField   = errors.New("smooth: field rows differ in length")
)

// Kernel selects the smoothing kernel.
type Kernel int

const (
	// KernelIdentity returns fields unchanged.
	KernelIdentity Kernel = iota

	// KernelGaussian convolves with an isotropic Gaussian.
	KernelGaussian
)

// String returns the configuration name of the kernel.
func (k Kernel) String() string {
	switch k {
	case KernelIdentity:
		return "identity"
	case KernelGaussian:
		return "gaussian"
	default:
		return "unknown"
	}
}

// Config selects the kernel and its width. Sigma is in grid-cell units and
// only consulted for KernelGaussian.
type Config struct {
	Kernel Kernel
	Sigma  float64
}

// DefaultConfig returns an identity (disabled) smoothing configuration.
func DefaultConfig() Config {
	return Config{Kernel: KernelIdentity}
}

// Kernels longer than this go through the FFT path.
const directKernelThreshold = 64

// The Gaussian is truncated at this many standard deviations.
const truncate = 4.0

// Smooth applies the configured kernel to a rectangular grid and returns the
// result. The identity kernel returns the input grid itself.
func Smooth(field [][]float64, cfg Config) ([][]float64, error) {
	ny, nx, err := fieldShape(field)
	if err != nil {
		return nil, err
	}

	switch cfg.Kernel {
	case KernelIdentity:
		return field, nil

	case KernelGaussian:
		if cfg.Sigma <= 0 || math.IsNaN(cfg.Sigma) || math.IsInf(cfg.Sigma, 0) {
			return nil, ErrInvalidSigma
		}

		coeffs := gaussianCoeffs(cfg.Sigma)
		if len(coeffs) <= directKernelThreshold {
			return convolveSeparable(field, ny, nx, coeffs), nil
		}
		return convolveFFT(field, ny, nx, coeffs)

	default:
		return nil, ErrUnknownKernel
	}
}

// SmoothConvergence applies the same smoothing independently to each mode
// grid present in c. The grid alignment and mode set carry over unchanged.
func SmoothConvergence(c *kaisersquires.Convergence, cfg Config) (*kaisersquires.Convergence, error) {
	out := &kaisersquires.Convergence{
		Grid:  c.Grid,
		Modes: c.Modes,
	}

	var err error
	if c.KappaE != nil {
		out.KappaE, err = Smooth(c.KappaE, cfg)
		if err != nil {
			return nil, err
		}
	}
	if c.KappaB != nil {
		out.KappaB, err = Smooth(c.KappaB, cfg)
		if err != nil {
			return nil, err
		}
	}

	return out, nil
}

// gaussianCoeffs returns a unit-sum Gaussian kernel truncated at
// ceil(truncate*sigma) cells on each side.
func gaussianCoeffs(sigma float64) []float64 {
	radius := int(math.Ceil(truncate * sigma))
	coeffs := make([]float64, 2*radius+1)

	sum := 0.0
	for i := range coeffs {
		d := float64(i - radius)
		coeffs[i] = math.Exp(-d * d / (2 * sigma * sigma))
		sum += coeffs[i]
	}

	vecmath.ScaleBlockInPlace(coeffs, 1/sum)

	return coeffs
}

// convolveSeparable runs the horizontal then vertical kernel pass with
// reflect boundary extension.
func convolveSeparable(field [][]float64, ny, nx int, coeffs []float64) [][]float64 {
	radius := len(coeffs) / 2

	// Horizontal pass.
	tmp := make([][]float64, ny)
	for y := 0; y < ny; y++ {
		tmp[y] = make([]float64, nx)
		for x := 0; x < nx; x++ {
			acc := 0.0
			for j, c := range coeffs {
				acc += c * field[y][reflectIndex(x+j-radius, nx)]
			}
			tmp[y][x] = acc
		}
	}

	// Vertical pass, accumulating whole rows at a time.
	out := make([][]float64, ny)
	scaled := make([]float64, nx)
	for y := 0; y < ny; y++ {
		out[y] = make([]float64, nx)
		for j, c := range coeffs {
			src := tmp[reflectIndex(y+j-radius, ny)]
			vecmath.ScaleBlock(scaled, src, c)
			vecmath.AddBlockInPlace(out[y], scaled)
		}
	}

	return out
}

// reflectIndex maps an out-of-range index into [0, n) by half-sample
// reflection: (d c b a | a b c d | d c b a).
func reflectIndex(i, n int) int {
	for i < 0 || i >= n {
		if i < 0 {
			i = -i - 1
		}
		if i >= n {
			i = 2*n - 1 - i
		}
	}
	return i
}

func fieldShape(field [][]float64) (ny, nx int, err error) {
	ny = len(field)
	if ny == 0 {
		return 0, 0, ErrEmptyField
	}

	nx = len(field[0])
	if nx == 0 {
		return 0, 0, ErrEmptyField
	}

	for y := range field {
		if len(field[y]) != nx {
			return 0, 0, ErrRaggedField
		}
	}

	return ny, nx, nil
}
