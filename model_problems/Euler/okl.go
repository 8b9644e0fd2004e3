package Euler

import "fmt"

// DeviceSource is the OKL implementation of the fluxes, included by the OCCA
// backend ahead of its kernels.
func (eq *Euler) DeviceSource() string {
	return fmt.Sprintf(`#define NVAR %d
#define NDIM %d
#define HAS_NONCONS 0
#define EQ_GAMMA %.17g
#define SURFACE_FLUX %d
#define VOLUME_FLUX %d
`, eq.NVariables(), eq.Dims, eq.Gamma, eq.SurfaceFluxType, eq.VolumeFluxType) + eulerOKL
}

const eulerOKL = `
void eq_primitives(const real_t *u, real_t *rho, real_t *v, real_t *p) {
  real_t ke = 0;
  *rho = u[0];
  for (int d = 0; d < NDIM; ++d) {
    v[d] = u[1 + d] / u[0];
    ke += v[d] * u[1 + d];
  }
  *p = (EQ_GAMMA - 1) * (u[NDIM + 1] - 0.5 * ke);
}

void eq_flux(const real_t *u, const int_t o, real_t *f) {
  real_t rho, p, v[3];
  eq_primitives(u, &rho, v, &p);
  const real_t m = u[1 + o];
  f[0] = m;
  for (int d = 0; d < NDIM; ++d) f[1 + d] = m * v[d];
  f[1 + o] += p;
  f[NDIM + 1] = (u[NDIM + 1] + p) * v[o];
}

real_t eq_ln_mean(const real_t x, const real_t y) {
  const real_t f2 = (x * (x - 2 * y) + y * y) / (x * (x + 2 * y) + y * y);
  if (f2 < 1.e-4) return (x + y) / (2 + f2 * (2. / 3 + f2 * (2. / 5 + f2 * 2. / 7)));
  return (y - x) / log(y / x);
}

real_t eq_inv_ln_mean(const real_t x, const real_t y) {
  const real_t f2 = (x * (x - 2 * y) + y * y) / (x * (x + 2 * y) + y * y);
  if (f2 < 1.e-4) return (2 + f2 * (2. / 3 + f2 * (2. / 5 + f2 * 2. / 7))) / (x + y);
  return log(y / x) / (y - x);
}

void eq_flux_central(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  real_t fL[NVAR], fR[NVAR];
  eq_flux(uL, o, fL);
  eq_flux(uR, o, fR);
  for (int n = 0; n < NVAR; ++n) f[n] = 0.5 * (fL[n] + fR[n]);
}

void eq_flux_lax_friedrichs(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  real_t rhoL, pL, vL[3], rhoR, pR, vR[3];
  eq_primitives(uL, &rhoL, vL, &pL);
  eq_primitives(uR, &rhoR, vR, &pR);
  const real_t lambda = fmax(fabs(vL[o]), fabs(vR[o])) +
                        fmax(sqrt(EQ_GAMMA * pL / rhoL), sqrt(EQ_GAMMA * pR / rhoR));
  eq_flux_central(uL, uR, o, f);
  for (int n = 0; n < NVAR; ++n) f[n] -= 0.5 * lambda * (uR[n] - uL[n]);
}

void eq_flux_ranocha(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  real_t rhoL, pL, vL[3], rhoR, pR, vR[3], vAvg[3];
  eq_primitives(uL, &rhoL, vL, &pL);
  eq_primitives(uR, &rhoR, vR, &pR);
  const real_t rhoMean = eq_ln_mean(rhoL, rhoR);
  const real_t invRhoPMean = pL * pR * eq_inv_ln_mean(rhoL * pR, rhoR * pL);
  real_t v2Avg = 0;
  for (int d = 0; d < NDIM; ++d) {
    vAvg[d] = 0.5 * (vL[d] + vR[d]);
    v2Avg += 0.5 * vL[d] * vR[d];
  }
  f[0] = rhoMean * vAvg[o];
  for (int d = 0; d < NDIM; ++d) f[1 + d] = f[0] * vAvg[d];
  f[1 + o] += 0.5 * (pL + pR);
  f[NDIM + 1] = f[0] * (v2Avg + invRhoPMean / (EQ_GAMMA - 1)) + 0.5 * (pL * vR[o] + pR * vL[o]);
}

void eq_two_point(const int ft, const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  if (ft == 0) eq_flux_central(uL, uR, o, f);
  else if (ft == 1) eq_flux_lax_friedrichs(uL, uR, o, f);
  else eq_flux_ranocha(uL, uR, o, f);
}

void eq_surface_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  eq_two_point(SURFACE_FLUX, uL, uR, o, f);
}

void eq_volume_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  eq_two_point(VOLUME_FLUX, uL, uR, o, f);
}

void eq_noncons_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  for (int n = 0; n < NVAR; ++n) f[n] = 0;
}
`
