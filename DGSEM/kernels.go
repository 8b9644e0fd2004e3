package DGSEM

import "fmt"

// Launch dispatches the kernels of a stage. Every work-item writes only the
// entries of its own node, so no kernel needs atomics. The mortar flux is a
// two kernel reduction keyed by the large face, with a barrier in between.
func (p *Parallel) Launch(stage Stage, t float64) error {
	if err := p.bound(); err != nil {
		return err
	}
	var (
		tb  = p.sd.Tables
		b   = p.buf
		dev = p.dev
		nI  = len(tb.Interfaces) * tb.Nfp
		nB  = len(tb.Boundaries) * tb.Nfp
		nM  = len(tb.Mortars) * tb.NSub * tb.Nfp
	)
	switch stage {
	case StageReset:
		dev.Launch(stage.String(), len(b.DU), func(lo, hi int) { clear(b.DU[lo:hi]) })
	case StageVolumeIntegral:
		dev.Launch(stage.String(), tb.K*tb.Np, p.volumeKernel)
	case StageProlongInterfaces:
		dev.Launch(stage.String(), nI, p.prolongInterfacesKernel)
	case StageInterfaceFlux:
		dev.Launch(stage.String(), nI, p.interfaceFluxKernel)
	case StageProlongBoundaries:
		dev.Launch(stage.String(), nB, p.prolongBoundariesKernel)
	case StageBoundaryFlux:
		dev.Launch(stage.String(), nB, func(lo, hi int) { p.boundaryFluxKernel(lo, hi, t) })
	case StageProlongMortars:
		dev.Launch(stage.String(), nM, p.prolongMortarsKernel)
	case StageMortarFlux:
		dev.Launch(stage.String(), nM, p.mortarFluxKernel)
		dev.Finish()
		dev.Launch("mortar_projection", len(tb.Mortars)*tb.Nfp, p.mortarProjectionKernel)
	case StageSurfaceIntegral:
		dev.Launch(stage.String(), tb.K*tb.Np, p.surfaceIntegralKernel)
	case StageJacobian:
		dev.Launch(stage.String(), tb.K*tb.Np, p.jacobianKernel)
	case StageSources:
		if p.sd.Sources != nil {
			dev.Launch(stage.String(), tb.K*tb.Np, func(lo, hi int) { p.sourcesKernel(lo, hi, t) })
		}
	default:
		return fmt.Errorf("%w: unknown stage %d", ErrConfig, stage)
	}
	return nil
}

// nodeScratch holds the per work-range temporaries of the node kernels.
type nodeScratch struct {
	f, nc, fd, fv []float64
}

func (p *Parallel) newScratch() *nodeScratch {
	nv := p.buf.NVars
	return &nodeScratch{
		f:  make([]float64, nv),
		nc: make([]float64, nv),
		fd: make([]float64, nv),
		fv: make([]float64, nv),
	}
}

func (p *Parallel) volumeKernel(lo, hi int) {
	var (
		tb = p.sd.Tables
		b  = p.buf
		sc = p.newScratch()
	)
	for item := lo; item < hi; item++ {
		e, node := item/tb.Np, item%tb.Np
		du := b.Node(b.DU, e, node)
		switch p.sd.VolumeIntegral {
		case VolumeIntegralWeakForm:
			p.weakFormNode(e, node, sc, du)
		case VolumeIntegralFluxDifferencing:
			clear(sc.fd)
			p.fluxDifferencingNode(e, node, sc, sc.fd)
			for v := range du {
				du[v] += sc.fd[v]
			}
		case VolumeIntegralShockCapturing:
			alpha := b.Alpha[e]
			if alpha != 1 {
				clear(sc.fd)
				p.fluxDifferencingNode(e, node, sc, sc.fd)
			}
			if alpha != 0 {
				clear(sc.fv)
				p.finiteVolumeNode(e, node, sc, sc.fv)
			}
			for v := range du {
				switch alpha {
				case 0:
					du[v] += sc.fd[v]
				case 1:
					du[v] += sc.fv[v]
				default:
					du[v] += (1-alpha)*sc.fd[v] + alpha*sc.fv[v]
				}
			}
		}
	}
}

// weakFormNode gathers Dhat times the flux of every node on the lines
// through node.
func (p *Parallel) weakFormNode(e, node int, sc *nodeScratch, du []float64) {
	var (
		tb  = p.sd.Tables
		b   = p.buf
		eq  = p.sd.Equation
		n   = tb.NNodes
		idx = tb.NodeIndex[node]
	)
	for dir := 0; dir < tb.NDims; dir++ {
		i := idx[dir]
		for ii := 0; ii < n; ii++ {
			eq.Flux(b.Node(b.U, e, node+(ii-i)*tb.Stride[dir]), dir, sc.f)
			c := tb.Dhat[i*n+ii]
			for v := range du {
				du[v] += c * sc.f[v]
			}
		}
	}
}

// fluxDifferencingNode evaluates the volume flux with the lower node of the
// line first, so that both nodes of a pair see the same flux value.
func (p *Parallel) fluxDifferencingNode(e, node int, sc *nodeScratch, out []float64) {
	var (
		tb    = p.sd.Tables
		b     = p.buf
		eq    = p.sd.Equation
		n     = tb.NNodes
		idx   = tb.NodeIndex[node]
		ui    = b.Node(b.U, e, node)
		ncons = eq.HasNonconservativeTerms()
	)
	for dir := 0; dir < tb.NDims; dir++ {
		i := idx[dir]
		for ii := 0; ii < n; ii++ {
			if ii == i {
				continue
			}
			uii := b.Node(b.U, e, node+(ii-i)*tb.Stride[dir])
			if ii > i {
				eq.VolumeFlux(ui, uii, dir, sc.f)
			} else {
				eq.VolumeFlux(uii, ui, dir, sc.f)
			}
			c := tb.Dsplit[i*n+ii]
			for v := range out {
				out[v] += c * sc.f[v]
			}
			if ncons {
				eq.NonconservativeFlux(ui, uii, dir, sc.nc)
				for v := range out {
					out[v] += 0.5 * c * sc.nc[v]
				}
			}
		}
	}
}

func (p *Parallel) finiteVolumeNode(e, node int, sc *nodeScratch, out []float64) {
	var (
		tb    = p.sd.Tables
		b     = p.buf
		eq    = p.sd.Equation
		n     = tb.NNodes
		idx   = tb.NodeIndex[node]
		ui    = b.Node(b.U, e, node)
		ncons = eq.HasNonconservativeTerms()
	)
	for dir := 0; dir < tb.NDims; dir++ {
		i := idx[dir]
		c := tb.InvWeights[i]
		if i < n-1 {
			ur := b.Node(b.U, e, node+tb.Stride[dir])
			eq.SurfaceFlux(ui, ur, dir, sc.f)
			for v := range out {
				out[v] += c * sc.f[v]
			}
			if ncons {
				eq.NonconservativeFlux(ui, ur, dir, sc.nc)
				for v := range out {
					out[v] += 0.5 * c * sc.nc[v]
				}
			}
		}
		if i > 0 {
			ul := b.Node(b.U, e, node-tb.Stride[dir])
			eq.SurfaceFlux(ul, ui, dir, sc.f)
			for v := range out {
				out[v] -= c * sc.f[v]
			}
			if ncons {
				eq.NonconservativeFlux(ui, ul, dir, sc.nc)
				for v := range out {
					out[v] -= 0.5 * c * sc.nc[v]
				}
			}
		}
	}
}

func (p *Parallel) prolongInterfacesKernel(lo, hi int) {
	var (
		tb = p.sd.Tables
		b  = p.buf
	)
	for item := lo; item < hi; item++ {
		i, j := item/tb.Nfp, item%tb.Nfp
		iface := tb.Interfaces[i]
		copy(b.InterfaceNode(0, i, j), b.Node(b.U, iface.Left, tb.FaceNodes[2*iface.Orientation+1][j]))
		copy(b.InterfaceNode(1, i, j), b.Node(b.U, iface.Right, tb.FaceNodes[2*iface.Orientation][j]))
	}
}

func (p *Parallel) interfaceFluxKernel(lo, hi int) {
	var (
		tb    = p.sd.Tables
		b     = p.buf
		eq    = p.sd.Equation
		sc    = p.newScratch()
		ncons = eq.HasNonconservativeTerms()
	)
	for item := lo; item < hi; item++ {
		i, j := item/tb.Nfp, item%tb.Nfp
		var (
			iface    = tb.Interfaces[i]
			o        = iface.Orientation
			uLL, uRR = b.InterfaceNode(0, i, j), b.InterfaceNode(1, i, j)
			left     = b.FaceNode(iface.Left, 2*o+1, j)
			right    = b.FaceNode(iface.Right, 2*o, j)
		)
		eq.SurfaceFlux(uLL, uRR, o, sc.f)
		copy(left, sc.f)
		copy(right, sc.f)
		if ncons {
			eq.NonconservativeFlux(uLL, uRR, o, sc.nc)
			for v := range left {
				left[v] += 0.5 * sc.nc[v]
			}
			eq.NonconservativeFlux(uRR, uLL, o, sc.nc)
			for v := range right {
				right[v] += 0.5 * sc.nc[v]
			}
		}
	}
}

func (p *Parallel) prolongBoundariesKernel(lo, hi int) {
	var (
		tb = p.sd.Tables
		b  = p.buf
	)
	for item := lo; item < hi; item++ {
		i, j := item/tb.Nfp, item%tb.Nfp
		bnd := tb.Boundaries[i]
		copy(b.BoundaryNode(i, j), b.Node(b.U, bnd.Element, tb.FaceNodes[bnd.Face][j]))
	}
}

func (p *Parallel) boundaryFluxKernel(lo, hi int, t float64) {
	var (
		tb    = p.sd.Tables
		b     = p.buf
		eq    = p.sd.Equation
		sc    = p.newScratch()
		uOut  = sc.fd
		ncons = eq.HasNonconservativeTerms()
	)
	for item := lo; item < hi; item++ {
		i, j := item/tb.Nfp, item%tb.Nfp
		var (
			bnd = tb.Boundaries[i]
			uIn = b.BoundaryNode(i, j)
			f   = b.FaceNode(bnd.Element, bnd.Face, j)
		)
		p.sd.BoundaryConditions[bnd.Tag].ExteriorState(uIn, bnd.Face,
			tb.NodeX(bnd.Element, tb.FaceNodes[bnd.Face][j]), t, uOut)
		if bnd.Side == 1 {
			eq.SurfaceFlux(uIn, uOut, bnd.Orientation, f)
		} else {
			eq.SurfaceFlux(uOut, uIn, bnd.Orientation, f)
		}
		if ncons {
			eq.NonconservativeFlux(uIn, uOut, bnd.Orientation, sc.nc)
			for v := range f {
				f[v] += 0.5 * sc.nc[v]
			}
		}
	}
}

// prolongMortarsKernel has one work-item per mortar subface node.
func (p *Parallel) prolongMortarsKernel(lo, hi int) {
	var (
		tb  = p.sd.Tables
		b   = p.buf
		nfp = tb.Nfp
	)
	for item := lo; item < hi; item++ {
		var (
			m, s, j              = item / (tb.NSub * nfp), (item / nfp) % tb.NSub, item % nfp
			mo                   = tb.Mortars[m]
			largeFace, smallFace = FaceOf(mo)
			fwd                  = tb.MortarForward[s]
		)
		copy(b.MortarNode(b.MortarU, 1-mo.LargeSide, m, s, j), b.Node(b.U, mo.Small[s], tb.FaceNodes[smallFace][j]))
		um := b.MortarNode(b.MortarU, mo.LargeSide, m, s, j)
		clear(um)
		for jj := 0; jj < nfp; jj++ {
			c := fwd[j*nfp+jj]
			ul := b.Node(b.U, mo.Large, tb.FaceNodes[largeFace][jj])
			for v := range um {
				um[v] += c * ul[v]
			}
		}
	}
}

// mortarFluxKernel writes the subface flux seen from both sides and the small
// element faces.
func (p *Parallel) mortarFluxKernel(lo, hi int) {
	var (
		tb    = p.sd.Tables
		b     = p.buf
		eq    = p.sd.Equation
		sc    = p.newScratch()
		nfp   = tb.Nfp
		ncons = eq.HasNonconservativeTerms()
	)
	for item := lo; item < hi; item++ {
		var (
			m, s, j      = item / (tb.NSub * nfp), (item / nfp) % tb.NSub, item % nfp
			mo           = tb.Mortars[m]
			_, smallFace = FaceOf(mo)
			uLL          = b.MortarNode(b.MortarU, 0, m, s, j)
			uRR          = b.MortarNode(b.MortarU, 1, m, s, j)
			fL           = b.MortarNode(b.MortarFlux, 0, m, s, j)
			fR           = b.MortarNode(b.MortarFlux, 1, m, s, j)
		)
		eq.SurfaceFlux(uLL, uRR, mo.Orientation, sc.f)
		copy(fL, sc.f)
		copy(fR, sc.f)
		if ncons {
			eq.NonconservativeFlux(uLL, uRR, mo.Orientation, sc.nc)
			for v := range fL {
				fL[v] += 0.5 * sc.nc[v]
			}
			eq.NonconservativeFlux(uRR, uLL, mo.Orientation, sc.nc)
			for v := range fR {
				fR[v] += 0.5 * sc.nc[v]
			}
		}
		copy(b.FaceNode(mo.Small[s], smallFace, j), b.MortarNode(b.MortarFlux, 1-mo.LargeSide, m, s, j))
	}
}

// mortarProjectionKernel has one work-item per large face node, each summing
// the projections of all subfaces.
func (p *Parallel) mortarProjectionKernel(lo, hi int) {
	var (
		tb  = p.sd.Tables
		b   = p.buf
		nfp = tb.Nfp
	)
	for item := lo; item < hi; item++ {
		var (
			m, j         = item / nfp, item % nfp
			mo           = tb.Mortars[m]
			largeFace, _ = FaceOf(mo)
			fl           = b.FaceNode(mo.Large, largeFace, j)
		)
		clear(fl)
		for s := 0; s < tb.NSub; s++ {
			rev := tb.MortarReverse[s]
			for jj := 0; jj < nfp; jj++ {
				c := rev[j*nfp+jj]
				fs := b.MortarNode(b.MortarFlux, mo.LargeSide, m, s, jj)
				for v := range fl {
					fl[v] += c * fs[v]
				}
			}
		}
	}
}

func (p *Parallel) surfaceIntegralKernel(lo, hi int) {
	var (
		tb = p.sd.Tables
		b  = p.buf
	)
	for item := lo; item < hi; item++ {
		e, node := item/tb.Np, item%tb.Np
		du := b.Node(b.DU, e, node)
		for _, fn := range tb.NodeFaces[node] {
			c := tb.SurfaceFactor[fn.Face%2]
			if fn.Face%2 == 0 {
				c = -c
			}
			f := b.FaceNode(e, fn.Face, fn.Node)
			for v := range du {
				du[v] += c * f[v]
			}
		}
	}
}

func (p *Parallel) jacobianKernel(lo, hi int) {
	var (
		tb = p.sd.Tables
		b  = p.buf
	)
	for item := lo; item < hi; item++ {
		c := -tb.InverseJacobian[item/tb.Np]
		du := b.Node(b.DU, item/tb.Np, item%tb.Np)
		for v := range du {
			du[v] *= c
		}
	}
}

func (p *Parallel) sourcesKernel(lo, hi int, t float64) {
	var (
		tb = p.sd.Tables
		b  = p.buf
		sc = p.newScratch()
	)
	for item := lo; item < hi; item++ {
		e, node := item/tb.Np, item%tb.Np
		p.sd.Sources.Source(b.Node(b.U, e, node), tb.NodeX(e, node), t, sc.f)
		du := b.Node(b.DU, e, node)
		for v := range du {
			du[v] += sc.f[v]
		}
	}
}
