/*
 * molecule.go, part of goxtb.
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

//MolOptions carries the optional parts of a molecular structure. The
//zero value (or a nil pointer) means neutral, closed shell, molecular
//(non-periodic) boundary conditions.
type MolOptions struct {
	//total charge, in e. Nil means neutral.
	Charge *float64
	//number of unpaired electrons. Nil means closed shell.
	Unpaired *int
	//row-major 3x3 lattice, in Bohr, and the periodicity of the three
	//directions. Either both are given or neither is.
	Lattice  []float64
	Periodic []bool
}

//Molecule wraps one native molecular structure. The number of atoms and
//their identities are fixed for the life of the object; only the
//cartesian coordinates and the lattice can change, through Update.
//Everything else (charge, spin, boundary conditions, atom types)
//requires constructing a new Molecule. All lengths are in Bohr.
type Molecule struct {
	env    *Environment
	mol    capi.Mol
	natoms int
}

//NewMolecule creates a molecular structure from atomic numbers and a
//flat slice of cartesian coordinates (x1,y1,z1,x2,...), in Bohr.
//Dimensions are validated here, before anything reaches the native
//layer, so a wrong-shaped slice is an ErrShape error with no native
//state touched. Geometries the native side refuses (two nuclei on top
//of each other, mostly) come back as ErrStructure with the drained
//native messages attached.
func (L *Library) NewMolecule(numbers []int, positions []float64, opt *MolOptions) (*Molecule, error) {
	if opt == nil {
		opt = &MolOptions{}
	}
	if len(numbers) == 0 {
		return nil, shapeError("no atoms given")
	}
	if len(positions)%3 != 0 {
		return nil, shapeError("expected triples of cartesian coordinates, got %d values", len(positions))
	}
	if 3*len(numbers) != len(positions) {
		return nil, shapeError("dimension mismatch between numbers (%d) and positions (%d)", len(numbers), len(positions))
	}
	if opt.Lattice != nil && len(opt.Lattice) != 9 {
		return nil, shapeError("lattice must have 9 values, got %d", len(opt.Lattice))
	}
	if opt.Periodic != nil && len(opt.Periodic) != 3 {
		return nil, shapeError("periodicity must have 3 values, got %d", len(opt.Periodic))
	}
	if (opt.Lattice == nil) != (opt.Periodic == nil) {
		return nil, shapeError("lattice and periodicity must be given together")
	}
	env := newEnvironment(L.api)
	znums := make([]int32, len(numbers))
	for i, z := range numbers {
		znums[i] = int32(z)
	}
	var uhf *int32
	if opt.Unpaired != nil {
		u := int32(*opt.Unpaired)
		uhf = &u
	}
	h := L.api.NewMolecule(env.env, znums, positions, opt.Charge, uhf, opt.Lattice, opt.Periodic)
	if h == 0 {
		panic("goxtb: native molecule allocation failed")
	}
	M := &Molecule{env: env, mol: h, natoms: len(numbers)}
	runtime.SetFinalizer(M, (*Molecule).Close)
	if err := env.check(ErrStructure, "setup of molecular structure failed"); err != nil {
		M.Close()
		return nil, err
	}
	return M, nil
}

//Len returns the number of atoms, fixed for the life of the Molecule.
func (M *Molecule) Len() int { return M.natoms }

//Update replaces the cartesian coordinates (and optionally the lattice,
//9 values or nil) of the structure, in Bohr. Shapes are validated
//locally first; a rejected geometry (ErrStructure) leaves the previous
//native state in place to the extent the native layer guarantees it,
//and the Molecule stays usable.
func (M *Molecule) Update(positions []float64, lattice []float64) error {
	if 3*M.natoms != len(positions) {
		return shapeError("dimension mismatch for positions: want %d values, got %d", 3*M.natoms, len(positions))
	}
	if lattice != nil && len(lattice) != 9 {
		return shapeError("lattice must have 9 values, got %d", len(lattice))
	}
	M.env.api.UpdateMolecule(M.env.env, M.mol, positions, lattice)
	return M.env.check(ErrStructure, "update of molecular structure failed")
}

//Close releases the native structure and its environment. Idempotent.
func (M *Molecule) Close() {
	M.env.api.DelMolecule(&M.mol)
	M.env.Close()
}

//The IO and verbosity controls of the owned environment, by delegation.

//Check reports the status of the owned environment.
func (M *Molecule) Check() int { return M.env.Check() }

//Show prints message plus the pending errors to the bound output.
func (M *Molecule) Show(message string) { M.env.Show(message) }

//SetOutput redirects diagnostics of this resource to the file at path.
func (M *Molecule) SetOutput(path string) { M.env.SetOutput(path) }

//ReleaseOutput restores the default output unit.
func (M *Molecule) ReleaseOutput() { M.env.ReleaseOutput() }

//SetVerbosity sets the native logging volume (Muted, Minimal or Full).
func (M *Molecule) SetVerbosity(level int) { M.env.SetVerbosity(level) }
