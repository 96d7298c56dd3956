/*
 * fake.go, part of goxtb.
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

//Package capitest provides an in-memory implementation of capi.API that
//emulates the handle/error-stack protocol of libxtb: per-environment FIFO
//error stacks drained through a 512-byte buffer, idempotent deleters that
//null the handle slot, the nuclear-fusion check on molecular geometries,
//deferred rejection of unsupported boundary conditions, and results
//objects that refuse to hand out properties they don't hold. The numbers
//it produces come from a deterministic toy model; they are NOT
//tight-binding energies and are only good for exercising the binding.
package capitest

import (
	"fmt"
	"math"
	"os"
	"strings"
	"sync"

	"github.com/rmera/goxtb/capi"
)

//The protocol details we emulate.
const (
	//Two nuclei closer than this (Bohr) trigger the fusion check.
	FusionThreshold = 0.25
	//Default packed API version reported by a fresh Fake (1.2.1).
	DefaultVersion = 10201
)

type envState struct {
	errs      []string
	verbosity int
	output    string //path of the bound output file, empty if none
}

func (E *envState) push(format string, args ...interface{}) {
	E.errs = append(E.errs, fmt.Sprintf(format, args...))
}

type molState struct {
	numbers   []int32
	positions []float64
	charge    float64
	uhf       int32
	lattice   []float64
	periodic  []bool
}

func (M *molState) natoms() int { return len(M.numbers) }

type calcState struct {
	param    string //empty until a parametrisation is loaded
	solvent  string
	accuracy float64
	maxiter  int
	etemp    float64
}

type resState struct {
	natoms     int
	filled     bool
	energy     float64
	gradient   []float64
	virial     []float64
	dipole     []float64
	charges    []float64
	bondorders []float64
	norb       int
	emo        []float64
	focc       []float64
	coeff      []float64
}

func (R *resState) clone() *resState {
	N := new(resState)
	*N = *R
	N.gradient = append([]float64(nil), R.gradient...)
	N.virial = append([]float64(nil), R.virial...)
	N.dipole = append([]float64(nil), R.dipole...)
	N.charges = append([]float64(nil), R.charges...)
	N.bondorders = append([]float64(nil), R.bondorders...)
	N.emo = append([]float64(nil), R.emo...)
	N.focc = append([]float64(nil), R.focc...)
	N.coeff = append([]float64(nil), R.coeff...)
	return N
}

//Fake implements capi.API without a native library behind it.
//Independent environment/molecule/calculator/results chains don't share
//any visible state, as in the real thing, but the handle tables are
//common, so the whole object is protected by one mutex in case tests
//run chains from several goroutines.
type Fake struct {
	mu      sync.Mutex
	version int
	next    uintptr
	envs    map[capi.Env]*envState
	mols    map[capi.Mol]*molState
	calcs   map[capi.Calc]*calcState
	ress    map[capi.Res]*resState
}

//New returns a Fake reporting DefaultVersion as its API version.
func New() *Fake {
	return &Fake{
		version: DefaultVersion,
		next:    1,
		envs:    make(map[capi.Env]*envState),
		mols:    make(map[capi.Mol]*molState),
		calcs:   make(map[capi.Calc]*calcState),
		ress:    make(map[capi.Res]*resState),
	}
}

//NewWithVersion returns a Fake reporting the given packed API version,
//for exercising the wrapper's compatibility guard.
func NewWithVersion(packed int) *Fake {
	F := New()
	F.version = packed
	return F
}

//Live returns how many handles of any kind are currently allocated.
//Useful to check that lifetimes actually end.
func (F *Fake) Live() int {
	F.mu.Lock()
	defer F.mu.Unlock()
	return len(F.envs) + len(F.mols) + len(F.calcs) + len(F.ress)
}

func (F *Fake) handle() uintptr {
	h := F.next
	F.next++
	return h
}

func (F *Fake) APIVersion() int { return F.version }

func (F *Fake) NewEnvironment() capi.Env {
	F.mu.Lock()
	defer F.mu.Unlock()
	h := capi.Env(F.handle())
	F.envs[h] = &envState{verbosity: capi.VerbosityFull}
	return h
}

func (F *Fake) DelEnvironment(e *capi.Env) {
	F.mu.Lock()
	defer F.mu.Unlock()
	h := *e
	*e = 0
	delete(F.envs, h)
}

func (F *Fake) CheckEnvironment(e capi.Env) int {
	F.mu.Lock()
	defer F.mu.Unlock()
	if env, ok := F.envs[e]; ok {
		return len(env.errs)
	}
	return 1
}

func (F *Fake) GetError(e capi.Env) string {
	F.mu.Lock()
	defer F.mu.Unlock()
	env, ok := F.envs[e]
	if !ok {
		return "invalid environment handle"
	}
	//Drained oldest-first, numbered the way xtb prints its stack, and
	//truncated at the same buffer size the C side uses.
	var b strings.Builder
	for i, msg := range env.errs {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "-%d- %s", i+1, msg)
	}
	env.errs = env.errs[:0]
	s := b.String()
	if len(s) >= capi.ErrBufSize {
		s = s[:capi.ErrBufSize-1]
	}
	return s
}

func (F *Fake) ShowEnvironment(e capi.Env, message string) {
	F.mu.Lock()
	env, ok := F.envs[e]
	var out, text string
	if ok {
		var b strings.Builder
		b.WriteString(message)
		b.WriteByte('\n')
		for i, msg := range env.errs {
			fmt.Fprintf(&b, "-%d- %s\n", i+1, msg)
		}
		env.errs = env.errs[:0]
		out = env.output
		text = b.String()
	}
	F.mu.Unlock()
	if !ok {
		return
	}
	if out == "" {
		fmt.Print(text)
		return
	}
	appendOutput(out, text)
}

func (F *Fake) SetOutput(e capi.Env, filename string) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if env, ok := F.envs[e]; ok {
		//rebinding replaces, the native side closes the previous unit
		env.output = filename
	}
}

func (F *Fake) ReleaseOutput(e capi.Env) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if env, ok := F.envs[e]; ok {
		env.output = ""
	}
}

func (F *Fake) SetVerbosity(e capi.Env, verbosity int) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if env, ok := F.envs[e]; ok {
		env.verbosity = verbosity
	}
}

func (F *Fake) NewMolecule(e capi.Env, numbers []int32, positions []float64, charge *float64, uhf *int32, lattice []float64, periodic []bool) capi.Mol {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	m := &molState{
		numbers:   append([]int32(nil), numbers...),
		positions: append([]float64(nil), positions...),
		lattice:   append([]float64(nil), lattice...),
		periodic:  append([]bool(nil), periodic...),
	}
	if charge != nil {
		m.charge = *charge
	}
	if uhf != nil {
		m.uhf = *uhf
	}
	if env != nil {
		if len(numbers) == 0 {
			env.push("xtb_api_newMolecule: Could not generate molecular structure")
		} else if fused(m.positions) {
			env.push("xtb_api_newMolecule: Could not generate molecular structure")
		}
	}
	h := capi.Mol(F.handle())
	F.mols[h] = m
	return h
}

func (F *Fake) UpdateMolecule(e capi.Env, mol capi.Mol, positions []float64, lattice []float64) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	m, ok := F.mols[mol]
	if !ok {
		if env != nil {
			env.push("xtb_api_updateMolecule: Invalid molecular structure handle")
		}
		return
	}
	if len(positions) != 3*m.natoms() || fused(positions) {
		if env != nil {
			env.push("xtb_api_updateMolecule: Could not update molecular structure")
		}
		return //previous native state stays as it was
	}
	copy(m.positions, positions)
	if len(lattice) == 9 {
		m.lattice = append(m.lattice[:0], lattice...)
	}
}

func (F *Fake) DelMolecule(m *capi.Mol) {
	F.mu.Lock()
	defer F.mu.Unlock()
	h := *m
	*m = 0
	delete(F.mols, h)
}

func (F *Fake) NewCalculator() capi.Calc {
	F.mu.Lock()
	defer F.mu.Unlock()
	h := capi.Calc(F.handle())
	F.calcs[h] = &calcState{accuracy: 1.0, maxiter: 250, etemp: 300.0}
	return h
}

func (F *Fake) DelCalculator(c *capi.Calc) {
	F.mu.Lock()
	defer F.mu.Unlock()
	h := *c
	*c = 0
	delete(F.calcs, h)
}

func (F *Fake) load(e capi.Env, m capi.Mol, c capi.Calc, param string) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	mol := F.mols[m]
	calc := F.calcs[c]
	if mol == nil || calc == nil {
		if env != nil {
			env.push("xtb_api_load%s: Invalid handle", param)
		}
		return
	}
	for _, z := range mol.numbers {
		if z < 1 || z > 86 {
			if env != nil {
				env.push("xtb_api_load%s: Parametrisation not available for atomic number %d", param, z)
			}
			return
		}
	}
	calc.param = param
}

func (F *Fake) LoadGFN2xTB(e capi.Env, m capi.Mol, c capi.Calc) { F.load(e, m, c, "GFN2xTB") }
func (F *Fake) LoadGFN1xTB(e capi.Env, m capi.Mol, c capi.Calc) { F.load(e, m, c, "GFN1xTB") }
func (F *Fake) LoadGFN0xTB(e capi.Env, m capi.Mol, c capi.Calc) { F.load(e, m, c, "GFN0xTB") }
func (F *Fake) LoadGFNFF(e capi.Env, m capi.Mol, c capi.Calc)   { F.load(e, m, c, "GFNFF") }

//the canonical GBSA solvent names of the native library
var solvents = map[string]bool{
	"acetone": true, "acetonitrile": true, "benzene": true,
	"ch2cl2": true, "chcl3": true, "cs2": true, "dmf": true,
	"dmso": true, "ether": true, "h2o": true, "methanol": true,
	"nhexane": true, "thf": true, "toluene": true,
}

func (F *Fake) SetSolvent(e capi.Env, c capi.Calc, solvent string) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	calc := F.calcs[c]
	if calc == nil {
		return
	}
	if !solvents[strings.ToLower(solvent)] {
		if env != nil {
			env.push("xtb_api_setSolvent: Unknown solvent %q", solvent)
		}
		return
	}
	calc.solvent = strings.ToLower(solvent)
}

func (F *Fake) ReleaseSolvent(e capi.Env, c capi.Calc) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if calc := F.calcs[c]; calc != nil {
		calc.solvent = ""
	}
}

func (F *Fake) SetAccuracy(e capi.Env, c capi.Calc, accuracy float64) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	calc := F.calcs[c]
	if calc == nil {
		return
	}
	if accuracy <= 0 {
		if env != nil {
			env.push("xtb_api_setAccuracy: Accuracy must be positive")
		}
		return
	}
	calc.accuracy = accuracy
}

func (F *Fake) SetMaxIter(e capi.Env, c capi.Calc, iterations int) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	calc := F.calcs[c]
	if calc == nil {
		return
	}
	if iterations < 1 {
		if env != nil {
			env.push("xtb_api_setMaxIter: Number of iterations must be positive")
		}
		return
	}
	calc.maxiter = iterations
}

func (F *Fake) SetElectronicTemp(e capi.Env, c capi.Calc, temperature float64) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	calc := F.calcs[c]
	if calc == nil {
		return
	}
	if temperature <= 0 {
		if env != nil {
			env.push("xtb_api_setElectronicTemp: Electronic temperature must be positive")
		}
		return
	}
	calc.etemp = temperature
}

func (F *Fake) NewResults() capi.Res {
	F.mu.Lock()
	defer F.mu.Unlock()
	h := capi.Res(F.handle())
	F.ress[h] = &resState{}
	return h
}

func (F *Fake) CopyResults(r capi.Res) capi.Res {
	F.mu.Lock()
	defer F.mu.Unlock()
	src, ok := F.ress[r]
	if !ok {
		return 0
	}
	h := capi.Res(F.handle())
	F.ress[h] = src.clone()
	return h
}

func (F *Fake) DelResults(r *capi.Res) {
	F.mu.Lock()
	defer F.mu.Unlock()
	h := *r
	*r = 0
	delete(F.ress, h)
}

func (F *Fake) Singlepoint(e capi.Env, m capi.Mol, c capi.Calc, r capi.Res) {
	F.mu.Lock()
	env := F.envs[e]
	mol := F.mols[m]
	calc := F.calcs[c]
	res := F.ress[r]
	if mol == nil || calc == nil || res == nil {
		if env != nil {
			env.push("xtb_api_singlepoint: Invalid handle")
		}
		F.mu.Unlock()
		return
	}
	if calc.param == "" {
		env.push("xtb_api_singlepoint: No parametrisation loaded")
		F.mu.Unlock()
		return
	}
	if anyPeriodic(mol.periodic) && (calc.param == "GFN2xTB" || calc.param == "GFN1xTB") {
		//The real library accepts this at construction and only trips
		//here, when the Hamiltonian is actually set up.
		env.push("xtb_api_singlepoint: Periodic boundary conditions not supported by %s", calc.param)
		F.mu.Unlock()
		return
	}
	evaluate(mol, calc, res)
	out := env.output
	verb := env.verbosity
	F.mu.Unlock()
	if out != "" && verb > capi.VerbosityMuted {
		appendOutput(out, fmt.Sprintf("%s singlepoint: %d atoms, energy %.10f Eh\nSCC converged in %d iterations\n",
			calc.param, mol.natoms(), res.energy, 1+mol.natoms()%7))
	}
}

func (F *Fake) GetEnergy(e capi.Env, r capi.Res, energy *float64) {
	F.property(e, r, "Energy", func(res *resState) { *energy = res.energy })
}

func (F *Fake) GetGradient(e capi.Env, r capi.Res, gradient []float64) {
	F.property(e, r, "Gradient", func(res *resState) { copy(gradient, res.gradient) })
}

func (F *Fake) GetVirial(e capi.Env, r capi.Res, virial []float64) {
	F.property(e, r, "Virial", func(res *resState) { copy(virial, res.virial) })
}

func (F *Fake) GetDipole(e capi.Env, r capi.Res, dipole []float64) {
	F.property(e, r, "Dipole", func(res *resState) { copy(dipole, res.dipole) })
}

func (F *Fake) GetCharges(e capi.Env, r capi.Res, charges []float64) {
	F.property(e, r, "Partial charges", func(res *resState) { copy(charges, res.charges) })
}

func (F *Fake) GetBondOrders(e capi.Env, r capi.Res, bondorders []float64) {
	F.property(e, r, "Bond orders", func(res *resState) { copy(bondorders, res.bondorders) })
}

//GetNao does not error on an empty results object: no wavefunction just
//means zero orbitals, which is what the orbital getters then trip on.
func (F *Fake) GetNao(e capi.Env, r capi.Res, nao *int32) {
	F.mu.Lock()
	defer F.mu.Unlock()
	if res, ok := F.ress[r]; ok {
		*nao = int32(res.norb)
	}
}

func (F *Fake) GetOrbitalEigenvalues(e capi.Env, r capi.Res, emo []float64) {
	F.orbital(e, r, "Orbital eigenvalues", func(res *resState) { copy(emo, res.emo) })
}

func (F *Fake) GetOrbitalOccupations(e capi.Env, r capi.Res, focc []float64) {
	F.orbital(e, r, "Orbital occupations", func(res *resState) { copy(focc, res.focc) })
}

func (F *Fake) GetOrbitalCoefficients(e capi.Env, r capi.Res, c []float64) {
	F.orbital(e, r, "Orbital coefficients", func(res *resState) { copy(c, res.coeff) })
}

func (F *Fake) property(e capi.Env, r capi.Res, name string, fill func(*resState)) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	res, ok := F.ress[r]
	if !ok || !res.filled {
		if env != nil {
			env.push("xtb_api_getResults: %s is not available", name)
		}
		return
	}
	fill(res)
}

func (F *Fake) orbital(e capi.Env, r capi.Res, name string, fill func(*resState)) {
	F.mu.Lock()
	defer F.mu.Unlock()
	env := F.envs[e]
	res, ok := F.ress[r]
	if !ok || !res.filled || res.norb == 0 {
		if env != nil {
			env.push("xtb_api_getResults: %s is not available", name)
		}
		return
	}
	fill(res)
}

//---- the toy model ----

//evaluate fills res from mol and calc. A pairwise screened attraction
//plus exponential repulsion with an analytic gradient; smooth,
//deterministic and geometry-dependent, which is all the binding tests
//need. The per-parametrisation scale makes different methods give
//different numbers, as they should.
func evaluate(mol *molState, calc *calcState, res *resState) {
	n := mol.natoms()
	scale := map[string]float64{
		"GFN2xTB": 1.00, "GFN1xTB": 1.05, "GFN0xTB": 1.10, "GFNFF": 0.90,
	}[calc.param]
	if calc.solvent != "" {
		scale *= 1.002 //a tiny implicit-solvation shift
	}
	res.natoms = n
	res.gradient = make([]float64, 3*n)
	res.virial = make([]float64, 9)
	res.dipole = make([]float64, 3)
	res.charges = make([]float64, n)
	res.bondorders = make([]float64, n*n)
	energy := 0.0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			zi, zj := float64(mol.numbers[i]), float64(mol.numbers[j])
			dx := mol.positions[3*i] - mol.positions[3*j]
			dy := mol.positions[3*i+1] - mol.positions[3*j+1]
			dz := mol.positions[3*i+2] - mol.positions[3*j+2]
			d := math.Sqrt(dx*dx + dy*dy + dz*dz)
			attr := -0.1 * zi * zj / (1.0 + d)
			rep := 0.2 * zi * zj * math.Exp(-d)
			energy += attr + rep
			//dE/dd, then project on the interatomic vector
			dEdd := 0.1*zi*zj/((1.0+d)*(1.0+d)) - 0.2*zi*zj*math.Exp(-d)
			gx, gy, gz := dEdd*dx/d, dEdd*dy/d, dEdd*dz/d
			res.gradient[3*i] += gx
			res.gradient[3*i+1] += gy
			res.gradient[3*i+2] += gz
			res.gradient[3*j] -= gx
			res.gradient[3*j+1] -= gy
			res.gradient[3*j+2] -= gz
			bo := math.Exp(-d / 2.0)
			res.bondorders[i*n+j] = bo
			res.bondorders[j*n+i] = bo
		}
	}
	res.energy = energy * scale
	for i := range res.gradient {
		res.gradient[i] *= scale
	}
	//electronegativity-difference charges; they add up to the total
	//charge exactly
	mean := 0.0
	for _, z := range mol.numbers {
		mean += math.Sqrt(float64(z))
	}
	mean /= float64(n)
	for i, z := range mol.numbers {
		res.charges[i] = mol.charge/float64(n) - 0.35*(math.Sqrt(float64(z))-mean)
	}
	for i := 0; i < n; i++ {
		res.dipole[0] += res.charges[i] * mol.positions[3*i]
		res.dipole[1] += res.charges[i] * mol.positions[3*i+1]
		res.dipole[2] += res.charges[i] * mol.positions[3*i+2]
	}
	for i := 0; i < n; i++ {
		for a := 0; a < 3; a++ {
			for b := 0; b < 3; b++ {
				res.virial[3*a+b] -= mol.positions[3*i+a] * res.gradient[3*i+b]
			}
		}
	}
	//the force field retains no wavefunction
	if calc.param == "GFNFF" {
		res.norb = 0
		res.emo, res.focc, res.coeff = nil, nil, nil
		res.filled = true
		return
	}
	norb := 0
	nelec := -int(mol.charge)
	for _, z := range mol.numbers {
		norb += basisFunctions(int(z))
		nelec += int(z)
	}
	res.norb = norb
	res.emo = make([]float64, norb)
	res.focc = make([]float64, norb)
	res.coeff = make([]float64, norb*norb)
	for k := 0; k < norb; k++ {
		res.emo[k] = -1.0 + 0.08*float64(k) + res.energy*1e-3
		res.coeff[k*norb+k] = 1.0
	}
	left := nelec
	for k := 0; k < norb && left > 0; k++ {
		if left >= 2 {
			res.focc[k] = 2.0
			left -= 2
		} else {
			res.focc[k] = 1.0
			left--
		}
	}
	res.filled = true
}

//minimal-basis function count per element
func basisFunctions(z int) int {
	switch {
	case z <= 2:
		return 1
	case z <= 10:
		return 4
	default:
		return 9
	}
}

func fused(positions []float64) bool {
	n := len(positions) / 3
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			dx := positions[3*i] - positions[3*j]
			dy := positions[3*i+1] - positions[3*j+1]
			dz := positions[3*i+2] - positions[3*j+2]
			if math.Sqrt(dx*dx+dy*dy+dz*dz) < FusionThreshold {
				return true
			}
		}
	}
	return false
}

func anyPeriodic(periodic []bool) bool {
	for _, p := range periodic {
		if p {
			return true
		}
	}
	return false
}

func appendOutput(path, text string) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return
	}
	f.WriteString(text)
	f.Close()
}
