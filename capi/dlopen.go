//go:build darwin || freebsd || linux

/*
 * dlopen.go, part of goxtb.
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

package capi

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/ebitengine/purego"
)

//DynLib is the dlopen-backed implementation of API. It binds every
//xtb_* symbol once at Open time, so a missing symbol surfaces right
//away and not in the middle of a calculation. We dlopen at runtime,
//the same way the CFFI-based wrappers do, instead of linking with cgo:
//this keeps the module buildable on machines without the xtb headers,
//which matters for people who only want the emulated backend.
type DynLib struct {
	name string

	getAPIVersion func() int32

	newEnvironment   func() uintptr
	delEnvironment   func(e *uintptr)
	checkEnvironment func(e uintptr) int32
	getError         func(e uintptr, buffer *byte, buffersize *int32)
	showEnvironment  func(e uintptr, message string)
	setOutput        func(e uintptr, filename string)
	releaseOutput    func(e uintptr)
	setVerbosity     func(e uintptr, verbosity int32)

	newMolecule    func(e uintptr, natoms *int32, numbers *int32, positions *float64, charge *float64, uhf *int32, lattice *float64, periodic *bool) uintptr
	updateMolecule func(e uintptr, m uintptr, positions *float64, lattice *float64)
	delMolecule    func(m *uintptr)

	newCalculator     func() uintptr
	delCalculator     func(c *uintptr)
	loadGFN2xTB       func(e, m, c uintptr, filename uintptr)
	loadGFN1xTB       func(e, m, c uintptr, filename uintptr)
	loadGFN0xTB       func(e, m, c uintptr, filename uintptr)
	loadGFNFF         func(e, m, c uintptr, filename uintptr)
	setSolvent        func(e, c uintptr, solvent string, state *int32, temp *float64, grid *int32)
	releaseSolvent    func(e, c uintptr)
	setAccuracy       func(e, c uintptr, accuracy float64)
	setMaxIter        func(e, c uintptr, iterations int32)
	setElectronicTemp func(e, c uintptr, temperature float64)
	singlepoint       func(e, m, c, r uintptr)

	newResults  func() uintptr
	copyResults func(r uintptr) uintptr
	delResults  func(r *uintptr)

	getEnergy              func(e, r uintptr, energy *float64)
	getGradient            func(e, r uintptr, gradient *float64)
	getVirial              func(e, r uintptr, virial *float64)
	getDipole              func(e, r uintptr, dipole *float64)
	getCharges             func(e, r uintptr, charges *float64)
	getBondOrders          func(e, r uintptr, bondorders *float64)
	getNao                 func(e, r uintptr, nao *int32)
	getOrbitalEigenvalues  func(e, r uintptr, emo *float64)
	getOrbitalOccupations  func(e, r uintptr, focc *float64)
	getOrbitalCoefficients func(e, r uintptr, c *float64)
}

//Open loads libxtb from path. An empty path triggers the usual search:
//the GOXTB_LIBRARY and XTB_LIBRARY variables (a full path to the shared
//object), then the lib/ directory under XTBHOME and under CONDA_PREFIX,
//then whatever the dynamic linker finds under the default soname.
func Open(path string) (*DynLib, error) {
	var lasterr error
	for _, cand := range candidates(path) {
		handle, err := purego.Dlopen(cand, purego.RTLD_NOW|purego.RTLD_GLOBAL)
		if err != nil {
			lasterr = err
			continue
		}
		L := &DynLib{name: cand}
		if err := L.bind(handle); err != nil {
			return nil, err
		}
		return L, nil
	}
	if lasterr == nil {
		lasterr = fmt.Errorf("no candidate library names")
	}
	return nil, fmt.Errorf("goxtb/capi: cannot load libxtb: %v", lasterr)
}

//Name returns the path or soname the library was loaded from.
func (L *DynLib) Name() string { return L.name }

func candidates(path string) []string {
	if path != "" {
		return []string{path}
	}
	var c []string
	if p := os.Getenv("GOXTB_LIBRARY"); p != "" {
		c = append(c, p)
	}
	if p := os.Getenv("XTB_LIBRARY"); p != "" {
		c = append(c, p)
	}
	soname := "libxtb.so"
	if runtime.GOOS == "darwin" {
		soname = "libxtb.dylib"
	}
	if p := os.Getenv("XTBHOME"); p != "" {
		c = append(c, filepath.Join(p, "lib", soname))
	}
	if p := os.Getenv("CONDA_PREFIX"); p != "" {
		c = append(c, filepath.Join(p, "lib", soname))
	}
	return append(c, soname)
}

func (L *DynLib) bind(handle uintptr) (err error) {
	defer func() {
		//purego panics on a missing symbol. We rather hand back an error,
		//since an old libxtb without the orbital getters is a situation
		//the caller can report cleanly.
		if r := recover(); r != nil {
			err = fmt.Errorf("goxtb/capi: incomplete C-API in %s: %v", L.name, r)
		}
	}()
	reg := func(fptr interface{}, name string) {
		purego.RegisterLibFunc(fptr, handle, name)
	}
	reg(&L.getAPIVersion, "xtb_getAPIVersion")
	reg(&L.newEnvironment, "xtb_newEnvironment")
	reg(&L.delEnvironment, "xtb_delEnvironment")
	reg(&L.checkEnvironment, "xtb_checkEnvironment")
	reg(&L.getError, "xtb_getError")
	reg(&L.showEnvironment, "xtb_showEnvironment")
	reg(&L.setOutput, "xtb_setOutput")
	reg(&L.releaseOutput, "xtb_releaseOutput")
	reg(&L.setVerbosity, "xtb_setVerbosity")
	reg(&L.newMolecule, "xtb_newMolecule")
	reg(&L.updateMolecule, "xtb_updateMolecule")
	reg(&L.delMolecule, "xtb_delMolecule")
	reg(&L.newCalculator, "xtb_newCalculator")
	reg(&L.delCalculator, "xtb_delCalculator")
	reg(&L.loadGFN2xTB, "xtb_loadGFN2xTB")
	reg(&L.loadGFN1xTB, "xtb_loadGFN1xTB")
	reg(&L.loadGFN0xTB, "xtb_loadGFN0xTB")
	reg(&L.loadGFNFF, "xtb_loadGFNFF")
	reg(&L.setSolvent, "xtb_setSolvent")
	reg(&L.releaseSolvent, "xtb_releaseSolvent")
	reg(&L.setAccuracy, "xtb_setAccuracy")
	reg(&L.setMaxIter, "xtb_setMaxIter")
	reg(&L.setElectronicTemp, "xtb_setElectronicTemp")
	reg(&L.singlepoint, "xtb_singlepoint")
	reg(&L.newResults, "xtb_newResults")
	reg(&L.copyResults, "xtb_copyResults")
	reg(&L.delResults, "xtb_delResults")
	reg(&L.getEnergy, "xtb_getEnergy")
	reg(&L.getGradient, "xtb_getGradient")
	reg(&L.getVirial, "xtb_getVirial")
	reg(&L.getDipole, "xtb_getDipole")
	reg(&L.getCharges, "xtb_getCharges")
	reg(&L.getBondOrders, "xtb_getBondOrders")
	reg(&L.getNao, "xtb_getNao")
	reg(&L.getOrbitalEigenvalues, "xtb_getOrbitalEigenvalues")
	reg(&L.getOrbitalOccupations, "xtb_getOrbitalOccupations")
	reg(&L.getOrbitalCoefficients, "xtb_getOrbitalCoefficients")
	return nil
}

func f64ptr(s []float64) *float64 {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

func i32ptr(s []int32) *int32 {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

func boolptr(s []bool) *bool {
	if len(s) == 0 {
		return nil
	}
	return &s[0]
}

//API implementation. The deleters null the handle slot before handing it
//to the native deallocator, so a second call on the same slot is a no-op.

func (L *DynLib) APIVersion() int { return int(L.getAPIVersion()) }

func (L *DynLib) NewEnvironment() Env { return Env(L.newEnvironment()) }

func (L *DynLib) DelEnvironment(e *Env) {
	h := uintptr(*e)
	*e = 0
	if h == 0 {
		return
	}
	L.delEnvironment(&h)
}

func (L *DynLib) CheckEnvironment(e Env) int {
	return int(L.checkEnvironment(uintptr(e)))
}

func (L *DynLib) GetError(e Env) string {
	buffer := make([]byte, ErrBufSize)
	size := int32(ErrBufSize)
	L.getError(uintptr(e), &buffer[0], &size)
	for i, b := range buffer {
		if b == 0 {
			return string(buffer[:i])
		}
	}
	return string(buffer)
}

func (L *DynLib) ShowEnvironment(e Env, message string) {
	L.showEnvironment(uintptr(e), message)
}

func (L *DynLib) SetOutput(e Env, filename string) { L.setOutput(uintptr(e), filename) }

func (L *DynLib) ReleaseOutput(e Env) { L.releaseOutput(uintptr(e)) }

func (L *DynLib) SetVerbosity(e Env, verbosity int) {
	L.setVerbosity(uintptr(e), int32(verbosity))
}

func (L *DynLib) NewMolecule(e Env, numbers []int32, positions []float64, charge *float64, uhf *int32, lattice []float64, periodic []bool) Mol {
	natoms := int32(len(numbers))
	return Mol(L.newMolecule(uintptr(e), &natoms, i32ptr(numbers), f64ptr(positions),
		charge, uhf, f64ptr(lattice), boolptr(periodic)))
}

func (L *DynLib) UpdateMolecule(e Env, m Mol, positions []float64, lattice []float64) {
	L.updateMolecule(uintptr(e), uintptr(m), f64ptr(positions), f64ptr(lattice))
}

func (L *DynLib) DelMolecule(m *Mol) {
	h := uintptr(*m)
	*m = 0
	if h == 0 {
		return
	}
	L.delMolecule(&h)
}

func (L *DynLib) NewCalculator() Calc { return Calc(L.newCalculator()) }

func (L *DynLib) DelCalculator(c *Calc) {
	h := uintptr(*c)
	*c = 0
	if h == 0 {
		return
	}
	L.delCalculator(&h)
}

func (L *DynLib) LoadGFN2xTB(e Env, m Mol, c Calc) {
	L.loadGFN2xTB(uintptr(e), uintptr(m), uintptr(c), 0)
}

func (L *DynLib) LoadGFN1xTB(e Env, m Mol, c Calc) {
	L.loadGFN1xTB(uintptr(e), uintptr(m), uintptr(c), 0)
}

func (L *DynLib) LoadGFN0xTB(e Env, m Mol, c Calc) {
	L.loadGFN0xTB(uintptr(e), uintptr(m), uintptr(c), 0)
}

func (L *DynLib) LoadGFNFF(e Env, m Mol, c Calc) {
	L.loadGFNFF(uintptr(e), uintptr(m), uintptr(c), 0)
}

func (L *DynLib) SetSolvent(e Env, c Calc, solvent string) {
	L.setSolvent(uintptr(e), uintptr(c), solvent, nil, nil, nil)
}

func (L *DynLib) ReleaseSolvent(e Env, c Calc) {
	L.releaseSolvent(uintptr(e), uintptr(c))
}

func (L *DynLib) SetAccuracy(e Env, c Calc, accuracy float64) {
	L.setAccuracy(uintptr(e), uintptr(c), accuracy)
}

func (L *DynLib) SetMaxIter(e Env, c Calc, iterations int) {
	L.setMaxIter(uintptr(e), uintptr(c), int32(iterations))
}

func (L *DynLib) SetElectronicTemp(e Env, c Calc, temperature float64) {
	L.setElectronicTemp(uintptr(e), uintptr(c), temperature)
}

func (L *DynLib) Singlepoint(e Env, m Mol, c Calc, r Res) {
	L.singlepoint(uintptr(e), uintptr(m), uintptr(c), uintptr(r))
}

func (L *DynLib) NewResults() Res { return Res(L.newResults()) }

func (L *DynLib) CopyResults(r Res) Res { return Res(L.copyResults(uintptr(r))) }

func (L *DynLib) DelResults(r *Res) {
	h := uintptr(*r)
	*r = 0
	if h == 0 {
		return
	}
	L.delResults(&h)
}

func (L *DynLib) GetEnergy(e Env, r Res, energy *float64) {
	L.getEnergy(uintptr(e), uintptr(r), energy)
}

func (L *DynLib) GetGradient(e Env, r Res, gradient []float64) {
	L.getGradient(uintptr(e), uintptr(r), f64ptr(gradient))
}

func (L *DynLib) GetVirial(e Env, r Res, virial []float64) {
	L.getVirial(uintptr(e), uintptr(r), f64ptr(virial))
}

func (L *DynLib) GetDipole(e Env, r Res, dipole []float64) {
	L.getDipole(uintptr(e), uintptr(r), f64ptr(dipole))
}

func (L *DynLib) GetCharges(e Env, r Res, charges []float64) {
	L.getCharges(uintptr(e), uintptr(r), f64ptr(charges))
}

func (L *DynLib) GetBondOrders(e Env, r Res, bondorders []float64) {
	L.getBondOrders(uintptr(e), uintptr(r), f64ptr(bondorders))
}

func (L *DynLib) GetNao(e Env, r Res, nao *int32) {
	L.getNao(uintptr(e), uintptr(r), nao)
}

func (L *DynLib) GetOrbitalEigenvalues(e Env, r Res, emo []float64) {
	L.getOrbitalEigenvalues(uintptr(e), uintptr(r), f64ptr(emo))
}

func (L *DynLib) GetOrbitalOccupations(e Env, r Res, focc []float64) {
	L.getOrbitalOccupations(uintptr(e), uintptr(r), f64ptr(focc))
}

func (L *DynLib) GetOrbitalCoefficients(e Env, r Res, c []float64) {
	L.getOrbitalCoefficients(uintptr(e), uintptr(r), f64ptr(c))
}
