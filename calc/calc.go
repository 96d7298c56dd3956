/*
 * calc.go, part of goxtb.
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
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

//Package calc drives goxtb calculations from goChem data structures, in
//the manner of the drivers in gochem/qm, but in-process: where those
//write an input file and shell out to a program, this one hands the
//coordinates straight to the loaded native library and reads the
//results back, no scratch files and no output parsing. Input is in the
//goChem conventions (Å, kcal/mol); the conversion to atomic units
//happens here and nowhere else.
package calc

import (
	"fmt"

	chem "github.com/rmera/gochem"
	"github.com/rmera/gochem/qm"
	v3 "github.com/rmera/gochem/v3"
	xtb "github.com/rmera/goxtb"
)

//XTB runs singlepoints through a loaded libxtb. It follows the
//BuildInput/Run/read-properties rhythm of the gochem/qm handles, so
//code written against those needs little adjustment, but geometry
//optimization is not available: the C-API exposes no optimizer, only
//singlepoint evaluation.
type XTB struct {
	lib    *xtb.Library
	name   string
	calc   *xtb.Calculator
	res    *xtb.Results
	natoms int
}

//NewXTB returns a driver over the given loaded library.
func NewXTB(lib *xtb.Library) *XTB {
	O := new(XTB)
	O.lib = lib
	O.SetDefaults()
	return O
}

func (O *XTB) SetDefaults() {
	O.name = "gochem"
}

//SetName sets the job name. It only labels diagnostics here, there are
//no input or output files to name.
func (O *XTB) SetName(name string) {
	O.name = name
}

//the method spellings the gochem/qm xtb driver accepts, plus the
//canonical ones, which xtb.GetMethod handles
var methods = map[string]xtb.Param{
	"gfn2":  xtb.GFN2xTB,
	"gfn1":  xtb.GFN1xTB,
	"gfn0":  xtb.GFN0xTB,
	"gfnff": xtb.GFNFF,
}

//the dielectric constants the gochem/qm drivers use to select implicit
//solvents, mapped to our solvent enumeration
var dielectric2Solvent = map[int]xtb.Solvent{
	80: xtb.H2O,
	5:  xtb.CHCl3,
	9:  xtb.CH2Cl2,
	21: xtb.Acetone,
	37: xtb.Acetonitrile,
	33: xtb.Methanol,
	2:  xtb.Toluene,
	7:  xtb.THF,
	47: xtb.DMSO,
	38: xtb.DMF,
}

func param(name string) xtb.Param {
	if p, ok := methods[name]; ok {
		return p
	}
	if p, ok := xtb.GetMethod(name); ok {
		return p
	}
	return xtb.GFN2xTB //the default method, as in the gochem drivers
}

//BuildInput prepares a calculation from coords (Å), the topology, and
//the calculation settings. Of Q, only Method and Dielectric are
//meaningful here; constraints and optimization settings have no native
//counterpart. Calling BuildInput again replaces the previous
//calculation wholesale.
func (O *XTB) BuildInput(coords *v3.Matrix, atoms chem.AtomMultiCharger, Q *qm.Calc) error {
	if atoms == nil || coords == nil {
		return fmt.Errorf("calc: %s: missing topology or coordinates", O.name)
	}
	if Q == nil {
		Q = new(qm.Calc)
	}
	numbers := make([]int, atoms.Len())
	for i := 0; i < atoms.Len(); i++ {
		symbol := atoms.Atom(i).Symbol
		z, ok := xtb.AtomicNumber(symbol)
		if !ok {
			return fmt.Errorf("calc: %s: unknown element %q at atom %d", O.name, symbol, i)
		}
		numbers[i] = z
	}
	positions := make([]float64, 3*atoms.Len())
	for i := 0; i < atoms.Len(); i++ {
		for k := 0; k < 3; k++ {
			positions[3*i+k] = coords.At(i, k) * chem.A2Bohr
		}
	}
	method := param(Q.Method)
	charge := float64(atoms.Charge())
	unpaired := atoms.Multi() - 1
	O.Close() //drop whatever a previous BuildInput set up
	calc, err := O.lib.NewCalculator(method, numbers, positions, &xtb.MolOptions{
		Charge:   &charge,
		Unpaired: &unpaired,
	})
	if err != nil {
		return err
	}
	calc.SetVerbosity(xtb.Muted)
	//gfn0 has no implicit solvation, same gate as the gochem driver
	if Q.Dielectric > 0 && method != xtb.GFN0xTB {
		if solvent, ok := dielectric2Solvent[int(Q.Dielectric)]; ok {
			if err := calc.SetSolvent(solvent); err != nil {
				calc.Close()
				return err
			}
		}
	}
	O.calc = calc
	O.natoms = atoms.Len()
	return nil
}

//Run evaluates the calculation prepared by BuildInput. The native call
//is synchronous, so wait is accepted for interface compatibility and
//ignored. Running again after an Update restarts from the previous
//wavefunction.
func (O *XTB) Run(wait bool) error {
	_ = wait
	if O.calc == nil {
		return fmt.Errorf("calc: %s: no calculation prepared", O.name)
	}
	res, err := O.calc.Singlepoint(O.res, false)
	if err != nil {
		return err
	}
	O.res = res
	return nil
}

//Update replaces the coordinates (Å) of the prepared calculation,
//keeping topology, method and settings.
func (O *XTB) Update(coords *v3.Matrix) error {
	if O.calc == nil {
		return fmt.Errorf("calc: %s: no calculation prepared", O.name)
	}
	positions := make([]float64, 3*O.natoms)
	for i := 0; i < coords.NVecs() && i < O.natoms; i++ {
		for k := 0; k < 3; k++ {
			positions[3*i+k] = coords.At(i, k) * chem.A2Bohr
		}
	}
	return O.calc.Update(positions, nil)
}

//Energy returns the total energy of the last Run, in kcal/mol.
func (O *XTB) Energy() (float64, error) {
	if O.res == nil {
		return 0, fmt.Errorf("calc: %s: no calculation has run", O.name)
	}
	energy, err := O.res.Energy()
	if err != nil {
		return 0, err
	}
	return energy * chem.H2Kcal, nil
}

//Forces returns the forces on each atom from the last Run, in
//kcal/mol·Å, as a goChem coordinate matrix. They are the negated,
//unit-converted gradient.
func (O *XTB) Forces() (*v3.Matrix, error) {
	if O.res == nil {
		return nil, fmt.Errorf("calc: %s: no calculation has run", O.name)
	}
	grad, err := O.res.Gradient()
	if err != nil {
		return nil, err
	}
	n, _ := grad.Dims()
	data := make([]float64, 3*n)
	for i := 0; i < n; i++ {
		for k := 0; k < 3; k++ {
			data[3*i+k] = -grad.At(i, k) * chem.H2Kcal * chem.A2Bohr
		}
	}
	return v3.NewMatrix(data)
}

//Charges returns the partial charges from the last Run, in e.
func (O *XTB) Charges() ([]float64, error) {
	if O.res == nil {
		return nil, fmt.Errorf("calc: %s: no calculation has run", O.name)
	}
	return O.res.Charges()
}

//Dipole returns the dipole moment from the last Run, in e·Bohr.
func (O *XTB) Dipole() ([]float64, error) {
	if O.res == nil {
		return nil, fmt.Errorf("calc: %s: no calculation has run", O.name)
	}
	return O.res.Dipole()
}

//OptimizedGeometry exists to fill out the gochem/qm handle surface. The
//C-API has no optimizer, so it always fails.
func (O *XTB) OptimizedGeometry(atoms chem.Atomer) (*v3.Matrix, error) {
	return nil, fmt.Errorf("calc: %s: the native library does not expose geometry optimization", O.name)
}

//Close releases the native resources of the prepared calculation.
//Idempotent; BuildInput calls it before setting up a new one.
func (O *XTB) Close() {
	if O.res != nil {
		O.res.Close()
		O.res = nil
	}
	if O.calc != nil {
		O.calc.Close()
		O.calc = nil
	}
}
