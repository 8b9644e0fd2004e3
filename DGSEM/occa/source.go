package occa

import (
	"fmt"
	"strings"

	"github.com/notargets/treedg/DGSEM"
)

// DeviceEquation is an equation that also provides OKL implementations of
// its fluxes: eq_flux, eq_surface_flux, eq_volume_flux and eq_noncons_flux,
// together with the NVAR, NDIM and HAS_NONCONS defines.
type DeviceEquation interface {
	DGSEM.Equation
	DeviceSource() string
}

// BlockSize is the inner tile of every kernel loop.
const BlockSize = 64

// KernelNames lists the kernels of the program in launch order.
var KernelNames = []string{
	"reset",
	"volume_integral",
	"prolong2interfaces",
	"interface_flux",
	"prolong2boundaries",
	"boundary_flux",
	"prolong2mortars",
	"mortar_flux",
	"mortar_projection",
	"surface_integral",
	"jacobian",
	"add_sources",
}

// GenerateSource assembles the complete OKL program of a semidiscretization:
// type definitions and sizes, the equation's device functions, the operator
// tables as static arrays, and the stage kernels.
func GenerateSource(tb *DGSEM.Tables, eq DeviceEquation, vi DGSEM.VolumeIntegral) string {
	var sb strings.Builder
	sb.WriteString("typedef double real_t;\n")
	sb.WriteString("typedef long int_t;\n\n")
	sb.WriteString(fmt.Sprintf("#define NNODES %d\n", tb.NNodes))
	sb.WriteString(fmt.Sprintf("#define NP %d\n", tb.Np))
	sb.WriteString(fmt.Sprintf("#define NFP %d\n", tb.Nfp))
	sb.WriteString(fmt.Sprintf("#define NFACES %d\n", tb.NFaces))
	sb.WriteString(fmt.Sprintf("#define NSUB %d\n", tb.NSub))
	sb.WriteString(fmt.Sprintf("#define VOLUME_INTEGRAL %d\n", vi))
	sb.WriteString(fmt.Sprintf("#define BLOCK %d\n\n", BlockSize))

	sb.WriteString(eq.DeviceSource())
	sb.WriteString("\n")

	sb.WriteString("// Static operators\n")
	sb.WriteString(formatStaticArray("Dhat", tb.Dhat))
	sb.WriteString(formatStaticArray("Dsplit", tb.Dsplit))
	sb.WriteString(formatStaticArray("InvWeights", tb.InvWeights))
	sb.WriteString(formatStaticArray("SurfaceFactor", tb.SurfaceFactor[:]))
	sb.WriteString(formatStaticArray("MortarForward", concat(tb.MortarForward)))
	sb.WriteString(formatStaticArray("MortarReverse", concat(tb.MortarReverse)))

	sb.WriteString(nodeUtilities)
	sb.WriteString(stageKernels)
	return sb.String()
}

// formatStaticArray writes a as a flat constant array, eight values a line.
// Values are printed with enough digits to round trip.
func formatStaticArray(name string, a []float64) string {
	var sb strings.Builder
	if len(a) == 0 {
		a = []float64{0}
	}
	sb.WriteString(fmt.Sprintf("const real_t %s[%d] = {\n", name, len(a)))
	for i, val := range a {
		if i%8 == 0 {
			sb.WriteString("    ")
		}
		sb.WriteString(fmt.Sprintf("%.17g", val))
		if i < len(a)-1 {
			sb.WriteString(",")
			if i%8 == 7 {
				sb.WriteString("\n")
			} else {
				sb.WriteString(" ")
			}
		}
	}
	sb.WriteString("\n};\n\n")
	return sb.String()
}

func concat(aa [][]float64) (a []float64) {
	for _, row := range aa {
		a = append(a, row...)
	}
	return
}

const nodeUtilities = `
int_t node_stride(const int_t dir) {
  int_t s = 1;
  for (int_t d = 0; d < dir; ++d) s *= NNODES;
  return s;
}

int_t node_index(const int_t node, const int_t dir) {
  return (node / node_stride(dir)) % NNODES;
}

// Volume node of face node j, face nodes run over the tangential directions
// in increasing order
int_t face_node(const int_t f, const int_t j) {
  const int_t dir = f / 2;
  int_t node = (f % 2) * (NNODES - 1) * node_stride(dir);
  int_t jj = j;
  for (int_t d = 0; d < NDIM; ++d) {
    if (d == dir) continue;
    node += (jj % NNODES) * node_stride(d);
    jj /= NNODES;
  }
  return node;
}

// Face node number of a volume node on a face normal to dir
int_t face_node_number(const int_t node, const int_t dir) {
  int_t j = 0, s = 1;
  for (int_t d = 0; d < NDIM; ++d) {
    if (d == dir) continue;
    j += node_index(node, d) * s;
    s *= NNODES;
  }
  return j;
}

void weak_form_node(const real_t *u, const int_t e, const int_t node, real_t *out) {
  real_t f[NVAR];
  for (int_t dir = 0; dir < NDIM; ++dir) {
    const int_t i = node_index(node, dir), st = node_stride(dir);
    for (int_t ii = 0; ii < NNODES; ++ii) {
      eq_flux(u + (e * NP + node + (ii - i) * st) * NVAR, dir, f);
      const real_t c = Dhat[i * NNODES + ii];
      for (int v = 0; v < NVAR; ++v) out[v] += c * f[v];
    }
  }
}

// The volume flux takes the lower node of a pair first
void flux_differencing_node(const real_t *u, const int_t e, const int_t node, real_t *out) {
  real_t f[NVAR], nc[NVAR];
  const real_t *ui = u + (e * NP + node) * NVAR;
  for (int_t dir = 0; dir < NDIM; ++dir) {
    const int_t i = node_index(node, dir), st = node_stride(dir);
    for (int_t ii = 0; ii < NNODES; ++ii) {
      if (ii == i) continue;
      const real_t *uii = u + (e * NP + node + (ii - i) * st) * NVAR;
      if (ii > i) eq_volume_flux(ui, uii, dir, f);
      else eq_volume_flux(uii, ui, dir, f);
      const real_t c = Dsplit[i * NNODES + ii];
      for (int v = 0; v < NVAR; ++v) out[v] += c * f[v];
      if (HAS_NONCONS) {
        eq_noncons_flux(ui, uii, dir, nc);
        for (int v = 0; v < NVAR; ++v) out[v] += 0.5 * c * nc[v];
      }
    }
  }
}

void finite_volume_node(const real_t *u, const int_t e, const int_t node, real_t *out) {
  real_t f[NVAR], nc[NVAR];
  const real_t *ui = u + (e * NP + node) * NVAR;
  for (int_t dir = 0; dir < NDIM; ++dir) {
    const int_t i = node_index(node, dir), st = node_stride(dir);
    const real_t c = InvWeights[i];
    if (i < NNODES - 1) {
      const real_t *ur = ui + st * NVAR;
      eq_surface_flux(ui, ur, dir, f);
      for (int v = 0; v < NVAR; ++v) out[v] += c * f[v];
      if (HAS_NONCONS) {
        eq_noncons_flux(ui, ur, dir, nc);
        for (int v = 0; v < NVAR; ++v) out[v] += 0.5 * c * nc[v];
      }
    }
    if (i > 0) {
      const real_t *ul = ui - st * NVAR;
      eq_surface_flux(ul, ui, dir, f);
      for (int v = 0; v < NVAR; ++v) out[v] -= c * f[v];
      if (HAS_NONCONS) {
        eq_noncons_flux(ui, ul, dir, nc);
        for (int v = 0; v < NVAR; ++v) out[v] -= 0.5 * c * nc[v];
      }
    }
  }
}

// Flux seen from the minus (fL) and plus (fR) side of a face
void two_sided_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *fL, real_t *fR) {
  real_t nc[NVAR];
  eq_surface_flux(uL, uR, o, fL);
  for (int v = 0; v < NVAR; ++v) fR[v] = fL[v];
  if (HAS_NONCONS) {
    eq_noncons_flux(uL, uR, o, nc);
    for (int v = 0; v < NVAR; ++v) fL[v] += 0.5 * nc[v];
    eq_noncons_flux(uR, uL, o, nc);
    for (int v = 0; v < NVAR; ++v) fR[v] += 0.5 * nc[v];
  }
}
`

const stageKernels = `
@kernel void reset(const int_t nitems, real_t *du) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    du[item] = 0;
  }
}

@kernel void volume_integral(const int_t nitems, const real_t *u, const real_t *alpha, real_t *du) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t e = item / NP, node = item % NP;
    real_t *dui = du + item * NVAR;
    real_t fd[NVAR], fv[NVAR];
    for (int v = 0; v < NVAR; ++v) {
      fd[v] = 0;
      fv[v] = 0;
    }
#if VOLUME_INTEGRAL == 0
    weak_form_node(u, e, node, fd);
    for (int v = 0; v < NVAR; ++v) dui[v] += fd[v];
#elif VOLUME_INTEGRAL == 1
    flux_differencing_node(u, e, node, fd);
    for (int v = 0; v < NVAR; ++v) dui[v] += fd[v];
#else
    const real_t a = alpha[e];
    if (a != 1) flux_differencing_node(u, e, node, fd);
    if (a != 0) finite_volume_node(u, e, node, fv);
    for (int v = 0; v < NVAR; ++v) {
      if (a == 0) dui[v] += fd[v];
      else if (a == 1) dui[v] += fv[v];
      else dui[v] += (1 - a) * fd[v] + a * fv[v];
    }
#endif
  }
}

// interfaces holds left, right and orientation of each interface
@kernel void prolong2interfaces(const int_t nitems, const int_t *interfaces, const real_t *u,
                                real_t *interfaceU) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t i = item / NFP, j = item % NFP;
    const int_t left = interfaces[3 * i], right = interfaces[3 * i + 1], o = interfaces[3 * i + 2];
    const real_t *ul = u + (left * NP + face_node(2 * o + 1, j)) * NVAR;
    const real_t *ur = u + (right * NP + face_node(2 * o, j)) * NVAR;
    for (int v = 0; v < NVAR; ++v) {
      interfaceU[item * NVAR + v] = ul[v];
      interfaceU[(nitems + item) * NVAR + v] = ur[v];
    }
  }
}

@kernel void interface_flux(const int_t nitems, const int_t *interfaces, const real_t *interfaceU,
                            real_t *surfaceFlux) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t i = item / NFP, j = item % NFP;
    const int_t left = interfaces[3 * i], right = interfaces[3 * i + 1], o = interfaces[3 * i + 2];
    real_t *fL = surfaceFlux + ((left * NFACES + 2 * o + 1) * NFP + j) * NVAR;
    real_t *fR = surfaceFlux + ((right * NFACES + 2 * o) * NFP + j) * NVAR;
    two_sided_flux(interfaceU + item * NVAR, interfaceU + (nitems + item) * NVAR, o, fL, fR);
  }
}

// boundaries holds element, orientation, side and face of each boundary
@kernel void prolong2boundaries(const int_t nitems, const int_t *boundaries, const real_t *u,
                                real_t *boundaryU) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t i = item / NFP, j = item % NFP;
    const int_t e = boundaries[4 * i], face = boundaries[4 * i + 3];
    const real_t *ue = u + (e * NP + face_node(face, j)) * NVAR;
    for (int v = 0; v < NVAR; ++v) boundaryU[item * NVAR + v] = ue[v];
  }
}

// exterior holds the boundary closure states computed on the host
@kernel void boundary_flux(const int_t nitems, const int_t *boundaries, const real_t *boundaryU,
                           const real_t *exterior, real_t *surfaceFlux) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t i = item / NFP, j = item % NFP;
    const int_t e = boundaries[4 * i], o = boundaries[4 * i + 1], side = boundaries[4 * i + 2];
    const int_t face = boundaries[4 * i + 3];
    const real_t *uIn = boundaryU + item * NVAR, *uOut = exterior + item * NVAR;
    real_t *f = surfaceFlux + ((e * NFACES + face) * NFP + j) * NVAR;
    real_t nc[NVAR];
    if (side == 1) eq_surface_flux(uIn, uOut, o, f);
    else eq_surface_flux(uOut, uIn, o, f);
    if (HAS_NONCONS) {
      eq_noncons_flux(uIn, uOut, o, nc);
      for (int v = 0; v < NVAR; ++v) f[v] += 0.5 * nc[v];
    }
  }
}

// mortars holds large, small[4], orientation and large side of each mortar
@kernel void prolong2mortars(const int_t nitems, const int_t *mortars, const real_t *u, real_t *mortarU) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t m = item / (NSUB * NFP), s = (item / NFP) % NSUB, j = item % NFP;
    const int_t *mo = mortars + 7 * m;
    const int_t o = mo[5], largeSide = mo[6];
    const int_t largeFace = 2 * o + 1 - largeSide, smallFace = 2 * o + largeSide;
    real_t *us = mortarU + ((1 - largeSide) * nitems + item) * NVAR;
    real_t *ul = mortarU + (largeSide * nitems + item) * NVAR;
    const real_t *usrc = u + (mo[1 + s] * NP + face_node(smallFace, j)) * NVAR;
    for (int v = 0; v < NVAR; ++v) {
      us[v] = usrc[v];
      ul[v] = 0;
    }
    for (int_t jj = 0; jj < NFP; ++jj) {
      const real_t c = MortarForward[(s * NFP + j) * NFP + jj];
      const real_t *ularge = u + (mo[0] * NP + face_node(largeFace, jj)) * NVAR;
      for (int v = 0; v < NVAR; ++v) ul[v] += c * ularge[v];
    }
  }
}

@kernel void mortar_flux(const int_t nitems, const int_t *mortars, const real_t *mortarU,
                         real_t *mortarFlux, real_t *surfaceFlux) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t m = item / (NSUB * NFP), s = (item / NFP) % NSUB, j = item % NFP;
    const int_t *mo = mortars + 7 * m;
    const int_t o = mo[5], largeSide = mo[6], smallFace = 2 * o + largeSide;
    real_t *fL = mortarFlux + item * NVAR, *fR = mortarFlux + (nitems + item) * NVAR;
    two_sided_flux(mortarU + item * NVAR, mortarU + (nitems + item) * NVAR, o, fL, fR);
    const real_t *fs = mortarFlux + ((1 - largeSide) * nitems + item) * NVAR;
    real_t *f = surfaceFlux + ((mo[1 + s] * NFACES + smallFace) * NFP + j) * NVAR;
    for (int v = 0; v < NVAR; ++v) f[v] = fs[v];
  }
}

// One work-item per large face node, nmortars*NSUB*NFP is the size of one
// side of mortarFlux
@kernel void mortar_projection(const int_t nitems, const int_t *mortars, const real_t *mortarFlux,
                               real_t *surfaceFlux) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t m = item / NFP, j = item % NFP, side = nitems * NSUB;
    const int_t *mo = mortars + 7 * m;
    const int_t largeSide = mo[6], largeFace = 2 * mo[5] + 1 - largeSide;
    real_t *f = surfaceFlux + ((mo[0] * NFACES + largeFace) * NFP + j) * NVAR;
    for (int v = 0; v < NVAR; ++v) f[v] = 0;
    for (int_t s = 0; s < NSUB; ++s) {
      for (int_t jj = 0; jj < NFP; ++jj) {
        const real_t c = MortarReverse[(s * NFP + j) * NFP + jj];
        const real_t *fs = mortarFlux + (largeSide * side + (m * NSUB + s) * NFP + jj) * NVAR;
        for (int v = 0; v < NVAR; ++v) f[v] += c * fs[v];
      }
    }
  }
}

@kernel void surface_integral(const int_t nitems, const real_t *surfaceFlux, real_t *du) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const int_t e = item / NP, node = item % NP;
    real_t *dui = du + item * NVAR;
    for (int_t f = 0; f < NFACES; ++f) {
      const int_t dir = f / 2, side = f % 2;
      if (node_index(node, dir) != side * (NNODES - 1)) continue;
      const real_t c = (side == 0) ? -SurfaceFactor[0] : SurfaceFactor[1];
      const real_t *fl = surfaceFlux + ((e * NFACES + f) * NFP + face_node_number(node, dir)) * NVAR;
      for (int v = 0; v < NVAR; ++v) dui[v] += c * fl[v];
    }
  }
}

@kernel void jacobian(const int_t nitems, const real_t *inverseJacobian, real_t *du) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    const real_t c = -inverseJacobian[item / NP];
    for (int v = 0; v < NVAR; ++v) du[item * NVAR + v] *= c;
  }
}

@kernel void add_sources(const int_t nitems, const real_t *sources, real_t *du) {
  for (int_t item = 0; item < nitems; ++item; @tile(BLOCK, @outer, @inner)) {
    du[item] += sources[item];
  }
}
`
