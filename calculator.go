/*
 * calculator.go, part of goxtb.
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
)

//Calculator is a Molecule plus one loaded parametrisation and the knobs
//of the singlepoint it will run. The parametrisation is loaded exactly
//once, at construction; running the same structure with a different
//method means building a new Calculator.
//
//Construction succeeding does not mean evaluation will: in particular,
//a periodic structure is accepted here even for methods without
//periodic support, and the incompatibility only surfaces when
//Singlepoint sets up the Hamiltonian. That is how the native layer
//behaves and we deliberately don't second-guess it.
type Calculator struct {
	*Molecule
	calc  capi.Calc
	param Param
}

//NewCalculator builds the underlying Molecule (same validation and
//errors as NewMolecule), allocates a calculator and loads param into
//it. A failed load (missing parameter files, elements outside the
//parametrised range) is an ErrLoad error.
func (L *Library) NewCalculator(param Param, numbers []int, positions []float64, opt *MolOptions) (*Calculator, error) {
	mol, err := L.NewMolecule(numbers, positions, opt)
	if err != nil {
		return nil, err
	}
	h := L.api.NewCalculator()
	if h == 0 {
		panic("goxtb: native calculator allocation failed")
	}
	C := &Calculator{Molecule: mol, calc: h, param: param}
	runtime.SetFinalizer(C, (*Calculator).Close)
	switch param {
	case GFN2xTB:
		L.api.LoadGFN2xTB(mol.env.env, mol.mol, h)
	case GFN1xTB:
		L.api.LoadGFN1xTB(mol.env.env, mol.mol, h)
	case GFN0xTB:
		L.api.LoadGFN0xTB(mol.env.env, mol.mol, h)
	case GFNFF:
		L.api.LoadGFNFF(mol.env.env, mol.mol, h)
	default:
		C.Close()
		return nil, Error{message: ErrLoad, context: "unknown parametrisation"}
	}
	if err := mol.env.check(ErrLoad, "could not load "+param.String()+" parametrisation data"); err != nil {
		C.Close()
		return nil, err
	}
	return C, nil
}

//Param returns the parametrisation this Calculator was built with.
func (C *Calculator) Param() Param { return C.param }

//Close releases the calculator, its molecule and their environment.
//Idempotent.
func (C *Calculator) Close() {
	C.env.api.DelCalculator(&C.calc)
	C.Molecule.Close()
}

//SetSolvent switches on GBSA implicit solvation with the given solvent.
func (C *Calculator) SetSolvent(solvent Solvent) error {
	C.env.api.SetSolvent(C.env.env, C.calc, solvent.String())
	return C.env.check(ErrConfiguration, "could not set solvent "+solvent.String())
}

//ReleaseSolvent switches implicit solvation back off.
func (C *Calculator) ReleaseSolvent() error {
	C.env.api.ReleaseSolvent(C.env.env, C.calc)
	return C.env.check(ErrConfiguration, "could not release solvent")
}

//SetAccuracy scales the numerical thresholds of the calculation.
//1.0 is the default; smaller is tighter.
func (C *Calculator) SetAccuracy(accuracy float64) error {
	C.env.api.SetAccuracy(C.env.env, C.calc, accuracy)
	return C.env.check(ErrConfiguration, "could not set accuracy")
}

//SetMaxIterations caps the self-consistency iterations.
func (C *Calculator) SetMaxIterations(iterations int) error {
	C.env.api.SetMaxIter(C.env.env, C.calc, iterations)
	return C.env.check(ErrConfiguration, "could not set iterations")
}

//SetElectronicTemperature sets the electronic temperature, in K.
func (C *Calculator) SetElectronicTemperature(temperature float64) error {
	C.env.api.SetElectronicTemp(C.env.env, C.calc, temperature)
	return C.env.check(ErrConfiguration, "could not set electronic temperature")
}

//Singlepoint evaluates energy, gradient and properties at the current
//geometry, returning the Results they were written into. With a nil
//prev a fresh, empty Results is allocated. Passing the Results of an
//earlier run restarts the self-consistency from it, which converges in
//a handful of iterations if the geometry barely moved:
//
//	res, err := calc.Singlepoint(nil, false)
//	...
//	calc.Update(newpos, nil)
//	res, err = calc.Singlepoint(res, false)
//
//With copy false, prev itself is repopulated in place and returned:
//treat prev as consumed and keep only the returned pointer, any other
//alias of it sees the new values. With copy true, prev is deep-copied
//first (own native handle, own environment) and the copy is the one
//written to, so prev stays exactly as it was.
func (C *Calculator) Singlepoint(prev *Results, copy bool) (*Results, error) {
	var res *Results
	switch {
	case prev == nil:
		res = C.NewResults()
	case copy:
		res = prev.Copy()
	default:
		res = prev
	}
	C.env.api.Singlepoint(C.env.env, C.mol, C.calc, res.res)
	if err := C.env.check(ErrComputation, "single point calculation failed"); err != nil {
		//a container allocated here is one the caller never sees;
		//a prev passed in without copy stays theirs to release
		if res != prev {
			res.Close()
		}
		return nil, err
	}
	return res, nil
}
