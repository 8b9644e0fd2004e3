package ShallowWater

import "fmt"

// DeviceSource is the OKL implementation of the fluxes.
func (eq *ShallowWater) DeviceSource() string {
	return fmt.Sprintf(`#define NVAR %d
#define NDIM %d
#define HAS_NONCONS 1
#define EQ_GRAVITY %.17g
#define SURFACE_FLUX %d
#define VOLUME_FLUX %d
`, eq.NVariables(), eq.Dims, eq.Gravity, eq.SurfaceFluxType, eq.VolumeFluxType) + shallowWaterOKL
}

const shallowWaterOKL = `
void eq_flux(const real_t *u, const int_t o, real_t *f) {
  const real_t vO = u[1 + o] / u[0];
  f[0] = u[1 + o];
  for (int d = 0; d < NDIM; ++d) f[1 + d] = u[1 + d] * vO;
  f[1 + o] += 0.5 * EQ_GRAVITY * u[0] * u[0];
  f[NDIM + 1] = 0;
}

void eq_flux_central(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  real_t fL[NVAR], fR[NVAR];
  eq_flux(uL, o, fL);
  eq_flux(uR, o, fR);
  for (int n = 0; n < NVAR; ++n) f[n] = 0.5 * (fL[n] + fR[n]);
}

void eq_flux_lax_friedrichs(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  const real_t lambda = fmax(fabs(uL[1 + o] / uL[0]), fabs(uR[1 + o] / uR[0])) +
                        fmax(sqrt(EQ_GRAVITY * uL[0]), sqrt(EQ_GRAVITY * uR[0]));
  eq_flux_central(uL, uR, o, f);
  for (int n = 0; n < NDIM + 1; ++n) f[n] -= 0.5 * lambda * (uR[n] - uL[n]);
}

void eq_flux_wintermeyer(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  const real_t vOAvg = 0.5 * (uL[1 + o] / uL[0] + uR[1 + o] / uR[0]);
  f[0] = 0.5 * (uL[1 + o] + uR[1 + o]);
  for (int d = 0; d < NDIM; ++d) f[1 + d] = 0.5 * (uL[1 + d] + uR[1 + d]) * vOAvg;
  f[1 + o] += 0.5 * EQ_GRAVITY * uL[0] * uR[0];
  f[NDIM + 1] = 0;
}

void eq_two_point(const int ft, const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  if (ft == 0) eq_flux_central(uL, uR, o, f);
  else if (ft == 1) eq_flux_lax_friedrichs(uL, uR, o, f);
  else eq_flux_wintermeyer(uL, uR, o, f);
}

void eq_surface_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  eq_two_point(SURFACE_FLUX, uL, uR, o, f);
}

void eq_volume_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  eq_two_point(VOLUME_FLUX, uL, uR, o, f);
}

void eq_noncons_flux(const real_t *uL, const real_t *uR, const int_t o, real_t *f) {
  for (int n = 0; n < NVAR; ++n) f[n] = 0;
  f[1 + o] = EQ_GRAVITY * uL[0] * uR[NDIM + 1];
}
`
