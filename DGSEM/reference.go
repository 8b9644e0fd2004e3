package DGSEM

// The reference stages evaluate the residual sequentially, element by
// element and face by face. Each reads and writes only the buffers named in
// its comment.

// Reset zeroes DU.
func Reset(b *Buffers) {
	clear(b.DU)
}

// CalcVolumeIntegral accumulates the element local divergence of U into DU,
// reading Alpha for the shock capturing volume integral.
func CalcVolumeIntegral(b *Buffers, eq Equation, vi VolumeIntegral) {
	var (
		tb    = b.tb
		nv    = b.NVars
		f     = make([]float64, nv)
		acc   = make([]float64, nv)
		ncons = eq.HasNonconservativeTerms()
	)
	for e := 0; e < tb.K; e++ {
		switch vi {
		case VolumeIntegralWeakForm:
			weakFormElement(b, eq, e, f)
		case VolumeIntegralFluxDifferencing:
			fluxDifferencingElement(b, eq, ncons, e, 1, f, acc)
		case VolumeIntegralShockCapturing:
			switch alpha := b.Alpha[e]; alpha {
			case 0:
				fluxDifferencingElement(b, eq, ncons, e, 1, f, acc)
			case 1:
				finiteVolumeElement(b, eq, ncons, e, 1, f, acc)
			default:
				fluxDifferencingElement(b, eq, ncons, e, 1-alpha, f, acc)
				finiteVolumeElement(b, eq, ncons, e, alpha, f, acc)
			}
		}
	}
}

func weakFormElement(b *Buffers, eq Equation, e int, f []float64) {
	tb := b.tb
	n := tb.NNodes
	for node := 0; node < tb.Np; node++ {
		var (
			ui  = b.Node(b.U, e, node)
			idx = tb.NodeIndex[node]
		)
		for dir := 0; dir < tb.NDims; dir++ {
			eq.Flux(ui, dir, f)
			i := idx[dir]
			for ii := 0; ii < n; ii++ {
				dui := b.Node(b.DU, e, node+(ii-i)*tb.Stride[dir])
				c := tb.Dhat[ii*n+i]
				for v := range dui {
					dui[v] += c * f[v]
				}
			}
		}
	}
}

// fluxDifferencingElement visits every node pair on a line once and uses the
// symmetry of the volume flux for both nodes.
func fluxDifferencingElement(b *Buffers, eq Equation, ncons bool, e int, factor float64, f, acc []float64) {
	tb := b.tb
	n := tb.NNodes
	for node := 0; node < tb.Np; node++ {
		var (
			ui  = b.Node(b.U, e, node)
			dui = b.Node(b.DU, e, node)
			idx = tb.NodeIndex[node]
		)
		for dir := 0; dir < tb.NDims; dir++ {
			i := idx[dir]
			for ii := i + 1; ii < n; ii++ {
				nodeII := node + (ii-i)*tb.Stride[dir]
				eq.VolumeFlux(ui, b.Node(b.U, e, nodeII), dir, f)
				duii := b.Node(b.DU, e, nodeII)
				c1, c2 := factor*tb.Dsplit[i*n+ii], factor*tb.Dsplit[ii*n+i]
				for v := range f {
					dui[v] += c1 * f[v]
					duii[v] += c2 * f[v]
				}
			}
		}
		if !ncons {
			continue
		}
		clear(acc)
		for dir := 0; dir < tb.NDims; dir++ {
			i := idx[dir]
			for ii := 0; ii < n; ii++ {
				if ii == i {
					continue
				}
				eq.NonconservativeFlux(ui, b.Node(b.U, e, node+(ii-i)*tb.Stride[dir]), dir, f)
				c := tb.Dsplit[i*n+ii]
				for v := range f {
					acc[v] += c * f[v]
				}
			}
		}
		for v := range acc {
			dui[v] += 0.5 * factor * acc[v]
		}
	}
}

// finiteVolumeElement is the first order subcell scheme on the Lobatto
// subcells, with zero subcell flux at the element faces.
func finiteVolumeElement(b *Buffers, eq Equation, ncons bool, e int, factor float64, f, acc []float64) {
	tb := b.tb
	n := tb.NNodes
	nc := make([]float64, b.NVars)
	for node := 0; node < tb.Np; node++ {
		var (
			ui  = b.Node(b.U, e, node)
			dui = b.Node(b.DU, e, node)
			idx = tb.NodeIndex[node]
		)
		for dir := 0; dir < tb.NDims; dir++ {
			i := idx[dir]
			clear(acc)
			if i < n-1 {
				ur := b.Node(b.U, e, node+tb.Stride[dir])
				eq.SurfaceFlux(ui, ur, dir, f)
				for v := range f {
					acc[v] += f[v]
				}
				if ncons {
					eq.NonconservativeFlux(ui, ur, dir, nc)
					for v := range nc {
						acc[v] += 0.5 * nc[v]
					}
				}
			}
			if i > 0 {
				ul := b.Node(b.U, e, node-tb.Stride[dir])
				eq.SurfaceFlux(ul, ui, dir, f)
				for v := range f {
					acc[v] -= f[v]
				}
				if ncons {
					eq.NonconservativeFlux(ui, ul, dir, nc)
					for v := range nc {
						acc[v] -= 0.5 * nc[v]
					}
				}
			}
			c := factor * tb.InvWeights[i]
			for v := range acc {
				dui[v] += c * acc[v]
			}
		}
	}
}

// ProlongToInterfaces copies the face traces of U into InterfaceU.
func ProlongToInterfaces(b *Buffers) {
	tb := b.tb
	for i, iface := range tb.Interfaces {
		var (
			lface = tb.FaceNodes[2*iface.Orientation+1]
			rface = tb.FaceNodes[2*iface.Orientation]
		)
		for j := 0; j < tb.Nfp; j++ {
			copy(b.InterfaceNode(0, i, j), b.Node(b.U, iface.Left, lface[j]))
			copy(b.InterfaceNode(1, i, j), b.Node(b.U, iface.Right, rface[j]))
		}
	}
}

// CalcInterfaceFlux evaluates the numerical flux from InterfaceU into the
// SurfaceFlux entries of both faces of every interface.
func CalcInterfaceFlux(b *Buffers, eq Equation) {
	var (
		tb    = b.tb
		f     = make([]float64, b.NVars)
		ncL   = make([]float64, b.NVars)
		ncR   = make([]float64, b.NVars)
		ncons = eq.HasNonconservativeTerms()
	)
	for i, iface := range tb.Interfaces {
		o := iface.Orientation
		for j := 0; j < tb.Nfp; j++ {
			uLL, uRR := b.InterfaceNode(0, i, j), b.InterfaceNode(1, i, j)
			eq.SurfaceFlux(uLL, uRR, o, f)
			left, right := b.FaceNode(iface.Left, 2*o+1, j), b.FaceNode(iface.Right, 2*o, j)
			if !ncons {
				copy(left, f)
				copy(right, f)
				continue
			}
			eq.NonconservativeFlux(uLL, uRR, o, ncL)
			eq.NonconservativeFlux(uRR, uLL, o, ncR)
			for v := range f {
				left[v] = f[v] + 0.5*ncL[v]
				right[v] = f[v] + 0.5*ncR[v]
			}
		}
	}
}

// ProlongToBoundaries copies the face traces of U into BoundaryU.
func ProlongToBoundaries(b *Buffers) {
	tb := b.tb
	for i, bnd := range tb.Boundaries {
		face := tb.FaceNodes[bnd.Face]
		for j := 0; j < tb.Nfp; j++ {
			copy(b.BoundaryNode(i, j), b.Node(b.U, bnd.Element, face[j]))
		}
	}
}

// CalcBoundaryFlux evaluates the numerical flux between BoundaryU and the
// exterior state of the boundary condition, writing SurfaceFlux.
func CalcBoundaryFlux(b *Buffers, eq Equation, bcs map[int]BoundaryCondition, t float64) {
	var (
		tb    = b.tb
		uOut  = make([]float64, b.NVars)
		nc    = make([]float64, b.NVars)
		ncons = eq.HasNonconservativeTerms()
	)
	for i, bnd := range tb.Boundaries {
		bc := bcs[bnd.Tag]
		for j := 0; j < tb.Nfp; j++ {
			var (
				uIn = b.BoundaryNode(i, j)
				x   = tb.NodeX(bnd.Element, tb.FaceNodes[bnd.Face][j])
				f   = b.FaceNode(bnd.Element, bnd.Face, j)
			)
			bc.ExteriorState(uIn, bnd.Face, x, t, uOut)
			if bnd.Side == 1 {
				eq.SurfaceFlux(uIn, uOut, bnd.Orientation, f)
			} else {
				eq.SurfaceFlux(uOut, uIn, bnd.Orientation, f)
			}
			if ncons {
				eq.NonconservativeFlux(uIn, uOut, bnd.Orientation, nc)
				for v := range f {
					f[v] += 0.5 * nc[v]
				}
			}
		}
	}
}

// ProlongToMortars copies the small face traces of U into MortarU and
// interpolates the large face trace onto every subface.
func ProlongToMortars(b *Buffers) {
	var (
		tb    = b.tb
		nv    = b.NVars
		trace = make([]float64, tb.Nfp*nv)
	)
	for m, mo := range tb.Mortars {
		var (
			largeFace, smallFace = FaceOf(mo)
			largeSlot, smallSlot = mo.LargeSide, 1 - mo.LargeSide
		)
		for s := 0; s < tb.NSub; s++ {
			for j := 0; j < tb.Nfp; j++ {
				copy(b.MortarNode(b.MortarU, smallSlot, m, s, j), b.Node(b.U, mo.Small[s], tb.FaceNodes[smallFace][j]))
			}
		}
		for j := 0; j < tb.Nfp; j++ {
			copy(trace[j*nv:(j+1)*nv], b.Node(b.U, mo.Large, tb.FaceNodes[largeFace][j]))
		}
		for s := 0; s < tb.NSub; s++ {
			fwd := tb.MortarForward[s]
			for j := 0; j < tb.Nfp; j++ {
				um := b.MortarNode(b.MortarU, largeSlot, m, s, j)
				clear(um)
				for jj := 0; jj < tb.Nfp; jj++ {
					c := fwd[j*tb.Nfp+jj]
					for v := range um {
						um[v] += c * trace[jj*nv+v]
					}
				}
			}
		}
	}
}

// CalcMortarFlux evaluates the subface fluxes from MortarU into MortarFlux,
// writes them to the small faces and projects them onto the large face of
// SurfaceFlux.
func CalcMortarFlux(b *Buffers, eq Equation) {
	var (
		tb    = b.tb
		nv    = b.NVars
		f     = make([]float64, nv)
		nc    = make([]float64, nv)
		ncons = eq.HasNonconservativeTerms()
	)
	for m, mo := range tb.Mortars {
		var (
			largeFace, smallFace = FaceOf(mo)
			largeSlot, smallSlot = mo.LargeSide, 1 - mo.LargeSide
		)
		for s := 0; s < tb.NSub; s++ {
			for j := 0; j < tb.Nfp; j++ {
				var (
					uLL = b.MortarNode(b.MortarU, 0, m, s, j)
					uRR = b.MortarNode(b.MortarU, 1, m, s, j)
					fL  = b.MortarNode(b.MortarFlux, 0, m, s, j)
					fR  = b.MortarNode(b.MortarFlux, 1, m, s, j)
				)
				eq.SurfaceFlux(uLL, uRR, mo.Orientation, f)
				copy(fL, f)
				copy(fR, f)
				if ncons {
					eq.NonconservativeFlux(uLL, uRR, mo.Orientation, nc)
					for v := range nc {
						fL[v] += 0.5 * nc[v]
					}
					eq.NonconservativeFlux(uRR, uLL, mo.Orientation, nc)
					for v := range nc {
						fR[v] += 0.5 * nc[v]
					}
				}
				copy(b.FaceNode(mo.Small[s], smallFace, j), b.MortarNode(b.MortarFlux, smallSlot, m, s, j))
			}
		}
		for j := 0; j < tb.Nfp; j++ {
			fl := b.FaceNode(mo.Large, largeFace, j)
			clear(fl)
			for s := 0; s < tb.NSub; s++ {
				rev := tb.MortarReverse[s]
				for jj := 0; jj < tb.Nfp; jj++ {
					c := rev[j*tb.Nfp+jj]
					fs := b.MortarNode(b.MortarFlux, largeSlot, m, s, jj)
					for v := range fl {
						fl[v] += c * fs[v]
					}
				}
			}
		}
	}
}

// CalcSurfaceIntegral lifts SurfaceFlux into the face nodes of DU.
func CalcSurfaceIntegral(b *Buffers) {
	tb := b.tb
	for e := 0; e < tb.K; e++ {
		for face := 0; face < tb.NFaces; face++ {
			c := tb.SurfaceFactor[face%2]
			if face%2 == 0 {
				c = -c
			}
			for j, node := range tb.FaceNodes[face] {
				du, f := b.Node(b.DU, e, node), b.FaceNode(e, face, j)
				for v := range du {
					du[v] += c * f[v]
				}
			}
		}
	}
}

// ApplyJacobian scales DU by minus the inverse Jacobian of each element.
func ApplyJacobian(b *Buffers) {
	tb := b.tb
	size := tb.Np * b.NVars
	for e := 0; e < tb.K; e++ {
		c := -tb.InverseJacobian[e]
		du := b.DU[e*size : (e+1)*size]
		for i := range du {
			du[i] *= c
		}
	}
}

// CalcSources adds the source terms at U to DU.
func CalcSources(b *Buffers, src SourceTerms, t float64) {
	if src == nil {
		return
	}
	tb := b.tb
	s := make([]float64, b.NVars)
	for e := 0; e < tb.K; e++ {
		for node := 0; node < tb.Np; node++ {
			src.Source(b.Node(b.U, e, node), tb.NodeX(e, node), t, s)
			du := b.Node(b.DU, e, node)
			for v := range du {
				du[v] += s[v]
			}
		}
	}
}
