/*
 * capi.go, part of goxtb.
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

//Package capi defines the fixed C calling convention of the xtb shared
//library (libxtb) as a Go interface, plus the handle types the library
//deals in. The API type is implemented by the dlopen-based loader in this
//package, and by the in-memory emulation in capi/capitest, which is what
//the test suite runs against, so no native library is needed for testing.
package capi

import "fmt"

//The four opaque handle kinds of the C-API. They are pointer-sized
//capability tokens. A zero handle is the null handle; nothing in this
//module ever dereferences one, they only travel back and forth across
//the native boundary.
type (
	Env  uintptr
	Mol  uintptr
	Calc uintptr
	Res  uintptr
)

//Verbosity levels understood by the native environment.
const (
	VerbosityMuted   = 0
	VerbosityMinimal = 1
	VerbosityFull    = 2
)

//ErrBufSize is the size of the buffer handed to xtb_getError. The native
//side truncates the drained error stack at this many bytes.
const ErrBufSize = 512

//API is the surface of libxtb that this module uses. Every method maps
//1:1 to a symbol of the shared library. Deleters take a pointer to the
//handle slot and must null it _before_ deallocating on the native side,
//so calling them twice is harmless. Failures are never reported through
//return values (except the null handle on allocation): the native side
//pushes messages onto the per-environment error stack, to be inspected
//with CheckEnvironment/GetError right after each call.
type API interface {
	//Packed as major*10000 + minor*100 + patch.
	APIVersion() int

	NewEnvironment() Env
	DelEnvironment(e *Env)
	//Returns 0 if the error stack of e is empty, nonzero otherwise.
	CheckEnvironment(e Env) int
	//Drains the error stack of e, oldest message first, into a string of
	//at most ErrBufSize bytes.
	GetError(e Env) string
	//Prints message and empties the error stack to the bound output.
	ShowEnvironment(e Env, message string)
	SetOutput(e Env, filename string)
	ReleaseOutput(e Env)
	SetVerbosity(e Env, verbosity int)

	//numbers is len natoms, positions is len 3*natoms (Bohr), lattice is
	//nil or len 9, periodic is nil or len 3. charge and uhf may be nil.
	NewMolecule(e Env, numbers []int32, positions []float64, charge *float64, uhf *int32, lattice []float64, periodic []bool) Mol
	UpdateMolecule(e Env, m Mol, positions []float64, lattice []float64)
	DelMolecule(m *Mol)

	NewCalculator() Calc
	DelCalculator(c *Calc)
	LoadGFN2xTB(e Env, m Mol, c Calc)
	LoadGFN1xTB(e Env, m Mol, c Calc)
	LoadGFN0xTB(e Env, m Mol, c Calc)
	LoadGFNFF(e Env, m Mol, c Calc)
	SetSolvent(e Env, c Calc, solvent string)
	ReleaseSolvent(e Env, c Calc)
	SetAccuracy(e Env, c Calc, accuracy float64)
	SetMaxIter(e Env, c Calc, iterations int)
	SetElectronicTemp(e Env, c Calc, temperature float64)
	Singlepoint(e Env, m Mol, c Calc, r Res)

	NewResults() Res
	CopyResults(r Res) Res
	DelResults(r *Res)

	//The getters fill caller-allocated buffers sized from the structure
	//the results were derived from. On a missing property they leave the
	//buffer alone and push onto the error stack of e.
	GetEnergy(e Env, r Res, energy *float64)
	GetGradient(e Env, r Res, gradient []float64)
	GetVirial(e Env, r Res, virial []float64)
	GetDipole(e Env, r Res, dipole []float64)
	GetCharges(e Env, r Res, charges []float64)
	GetBondOrders(e Env, r Res, bondorders []float64)
	GetNao(e Env, r Res, nao *int32)
	GetOrbitalEigenvalues(e Env, r Res, emo []float64)
	GetOrbitalOccupations(e Env, r Res, focc []float64)
	GetOrbitalCoefficients(e Env, r Res, c []float64)
}

//DecodeVersion splits a packed API version into its components.
func DecodeVersion(packed int) (major, minor, patch int) {
	return packed / 10000, packed % 10000 / 100, packed % 100
}

//VersionString formats a packed API version the way humans like it.
func VersionString(packed int) string {
	major, minor, patch := DecodeVersion(packed)
	return fmt.Sprintf("%d.%d.%d", major, minor, patch)
}
