/*
 * results.go, part of goxtb.
 *
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 *
 * Goxtb is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

package xtb

import (
	"runtime"

	"github.com/rmera/goxtb/capi"
	"gonum.org/v1/gonum/mat"
)

//Results is the property bag a singlepoint calculation fills: energy,
//gradient, virial, dipole, partial charges, bond orders and, for the
//tight-binding methods, the wavefunction. A fresh Results is empty and
//every getter on it fails with ErrUnavailable; after a singlepoint,
//which properties are present depends on the method (GFN-FF retains no
//wavefunction, for instance), so each getter checks for itself.
//
//A Results owns its own Environment, independent of the Calculator that
//filled it, so querying it never perturbs, and is never perturbed by,
//the error state of an ongoing calculation. All values are in atomic
//units.
type Results struct {
	env    *Environment
	res    capi.Res
	natoms int
}

//NewResults allocates an empty container sized to this Molecule. The
//usual way to obtain a Results is to pass nil to Singlepoint and let it
//do this; allocating one explicitly only matters when the container
//should outlive the Calculator.
func (M *Molecule) NewResults() *Results {
	env := newEnvironment(M.env.api)
	h := env.api.NewResults()
	if h == 0 {
		panic("goxtb: native results allocation failed")
	}
	R := &Results{env: env, res: h, natoms: M.natoms}
	runtime.SetFinalizer(R, (*Results).Close)
	return R
}

//Copy returns a deep copy with its own native container and its own
//Environment. The copy and the original evolve independently from here
//on, which is what makes restart-without-clobbering possible:
//Singlepoint(res.Copy(), false) restarts from res without touching it.
func (R *Results) Copy() *Results {
	env := newEnvironment(R.env.api)
	h := env.api.CopyResults(R.res)
	if h == 0 {
		panic("goxtb: native results copy failed")
	}
	N := &Results{env: env, res: h, natoms: R.natoms}
	runtime.SetFinalizer(N, (*Results).Close)
	return N
}

//Close releases the native container and its environment. Idempotent.
func (R *Results) Close() {
	R.env.api.DelResults(&R.res)
	R.env.Close()
}

//Energy returns the total energy, in Hartree.
func (R *Results) Energy() (float64, error) {
	var e float64
	R.env.api.GetEnergy(R.env.env, R.res, &e)
	if err := R.env.check(ErrUnavailable, "Energy"); err != nil {
		return 0, err
	}
	return e, nil
}

//Gradient returns the cartesian gradient of the energy as an Nx3
//matrix, in Hartree/Bohr. Note these are gradients, not forces; flip
//the sign for forces.
func (R *Results) Gradient() (*mat.Dense, error) {
	buf := make([]float64, 3*R.natoms)
	R.env.api.GetGradient(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Gradient"); err != nil {
		return nil, err
	}
	return mat.NewDense(R.natoms, 3, buf), nil
}

//Virial returns the 3x3 virial, in Hartree.
func (R *Results) Virial() (*mat.Dense, error) {
	buf := make([]float64, 9)
	R.env.api.GetVirial(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Virial"); err != nil {
		return nil, err
	}
	return mat.NewDense(3, 3, buf), nil
}

//Dipole returns the dipole moment as a 3-vector, in e*Bohr.
func (R *Results) Dipole() ([]float64, error) {
	buf := make([]float64, 3)
	R.env.api.GetDipole(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Dipole"); err != nil {
		return nil, err
	}
	return buf, nil
}

//Charges returns the partial charges, one per atom, in e.
func (R *Results) Charges() ([]float64, error) {
	buf := make([]float64, R.natoms)
	R.env.api.GetCharges(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Charges"); err != nil {
		return nil, err
	}
	return buf, nil
}

//BondOrders returns the NxN Wiberg/Mayer bond order matrix.
func (R *Results) BondOrders() (*mat.Dense, error) {
	buf := make([]float64, R.natoms*R.natoms)
	R.env.api.GetBondOrders(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Bond orders"); err != nil {
		return nil, err
	}
	return mat.NewDense(R.natoms, R.natoms, buf), nil
}

//NumberOfOrbitals returns the dimension of the atomic orbital basis.
//On an empty or wavefunction-less Results (GFN-FF) it returns 0 and no
//error; this is the cheap probe for whether the orbital getters below
//will succeed.
func (R *Results) NumberOfOrbitals() (int, error) {
	var n int32
	R.env.api.GetNao(R.env.env, R.res, &n)
	if err := R.env.check(ErrUnavailable, "Number of orbitals"); err != nil {
		return 0, err
	}
	return int(n), nil
}

//OrbitalEigenvalues returns the orbital energies, in Hartree.
func (R *Results) OrbitalEigenvalues() ([]float64, error) {
	norb, err := R.NumberOfOrbitals()
	if err != nil {
		return nil, err
	}
	buf := make([]float64, norb)
	R.env.api.GetOrbitalEigenvalues(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Orbital eigenvalues"); err != nil {
		return nil, err
	}
	return buf, nil
}

//OrbitalOccupations returns the occupation numbers of the orbitals.
func (R *Results) OrbitalOccupations() ([]float64, error) {
	norb, err := R.NumberOfOrbitals()
	if err != nil {
		return nil, err
	}
	buf := make([]float64, norb)
	R.env.api.GetOrbitalOccupations(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Orbital occupations"); err != nil {
		return nil, err
	}
	return buf, nil
}

//OrbitalCoefficients returns the orbital coefficient matrix, one
//orbital per row, in the atomic orbital basis.
func (R *Results) OrbitalCoefficients() (*mat.Dense, error) {
	norb, err := R.NumberOfOrbitals()
	if err != nil {
		return nil, err
	}
	if norb == 0 {
		//make the failure go through the native layer so the error
		//message is the native one, same as the other getters.
		norb = 1
	}
	buf := make([]float64, norb*norb)
	R.env.api.GetOrbitalCoefficients(R.env.env, R.res, buf)
	if err := R.env.check(ErrUnavailable, "Orbital coefficients"); err != nil {
		return nil, err
	}
	return mat.NewDense(norb, norb, buf), nil
}
