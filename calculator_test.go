/*
 * calculator_test.go, part of goxtb.
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

package xtb

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

//TestParametrisations runs the same water with each method and checks
//they give different energies (they are different Hamiltonians, after
//all) and that the method lookup round-trips.
func TestParametrisations(Te *testing.T) {
	lib, _ := testLib(Te)
	seen := make(map[float64]Param)
	for _, p := range []Param{GFN2xTB, GFN1xTB, GFN0xTB, GFNFF} {
		calc, err := lib.NewCalculator(p, waterZ, waterXYZ, nil)
		if err != nil {
			Te.Fatal(p, err)
		}
		if calc.Param() != p {
			Te.Error("calculator forgot its parametrisation")
		}
		res, err := calc.Singlepoint(nil, false)
		if err != nil {
			Te.Fatal(p, err)
		}
		e, err := res.Energy()
		if err != nil {
			Te.Fatal(p, err)
		}
		if prev, dup := seen[e]; dup {
			Te.Error(p, "and", prev, "gave the same energy", e)
		}
		seen[e] = p
		res.Close()
		calc.Close()
		if got, ok := GetMethod(p.String()); !ok || got != p {
			Te.Error("method lookup does not round-trip for", p)
		}
	}
	if _, ok := GetMethod("PM6"); ok {
		Te.Error("an unimplemented method name was accepted")
	}
}

//TestSolvation checks solvent setup: a known solvent shifts the energy,
//releasing it brings the gas phase value back, and the name lookup
//accepts the common aliases.
func TestSolvation(Te *testing.T) {
	lib, _ := testLib(Te)
	calc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer calc.Close()
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	defer res.Close()
	gas, _ := res.Energy()
	if err := calc.SetSolvent(H2O); err != nil {
		Te.Fatal(err)
	}
	res, err = calc.Singlepoint(res, false)
	if err != nil {
		Te.Fatal(err)
	}
	solvated, _ := res.Energy()
	if gas == solvated {
		Te.Error("implicit solvation had no effect at all")
	}
	if err := calc.ReleaseSolvent(); err != nil {
		Te.Fatal(err)
	}
	res, err = calc.Singlepoint(res, false)
	if err != nil {
		Te.Fatal(err)
	}
	again, _ := res.Energy()
	if again != gas {
		Te.Error("releasing the solvent did not restore the gas phase:", again, "vs", gas)
	}
	for name, want := range map[string]Solvent{"water": H2O, "chloroform": CHCl3, "N-Hexane": NHexane} {
		if s, ok := GetSolvent(name); !ok || s != want {
			Te.Error("alias", name, "not understood")
		}
	}
	if _, ok := GetSolvent("olive oil"); ok {
		Te.Error("an unknown solvent name was accepted")
	}
}

//TestSettings checks that rejected calculator settings come back as
//ErrConfiguration and accepted ones don't.
func TestSettings(Te *testing.T) {
	lib, _ := testLib(Te)
	calc, err := lib.NewCalculator(GFN1xTB, waterZ, waterXYZ, nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer calc.Close()
	if err := calc.SetAccuracy(0.01); err != nil {
		Te.Error(err)
	}
	if err := calc.SetAccuracy(-1.0); !IsKind(err, ErrConfiguration) {
		Te.Error("negative accuracy should be refused, got:", err)
	}
	if err := calc.SetMaxIterations(50); err != nil {
		Te.Error(err)
	}
	if err := calc.SetMaxIterations(0); !IsKind(err, ErrConfiguration) {
		Te.Error("zero iterations should be refused, got:", err)
	}
	if err := calc.SetElectronicTemperature(500.0); err != nil {
		Te.Error(err)
	}
	if err := calc.SetElectronicTemperature(-300.0); !IsKind(err, ErrConfiguration) {
		Te.Error("negative temperature should be refused, got:", err)
	}
	//the calculator must still work after the refused settings
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	res.Close()
}

//TestRestart checks the restart contract of Singlepoint: without copy
//the previous container is repopulated and returned, with copy the
//original stays frozen.
func TestRestart(Te *testing.T) {
	lib, _ := testLib(Te)
	calc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer calc.Close()
	res1, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	e1, _ := res1.Energy()
	stretched := append([]float64(nil), waterXYZ...)
	stretched[4] += 0.2
	if err := calc.Update(stretched, nil); err != nil {
		Te.Fatal(err)
	}
	//copy: res1 must keep the old numbers
	res2, err := calc.Singlepoint(res1, true)
	if err != nil {
		Te.Fatal(err)
	}
	defer res2.Close()
	if res2 == res1 {
		Te.Fatal("copy restart returned the original container")
	}
	old, _ := res1.Energy()
	if old != e1 {
		Te.Error("copy restart clobbered the original results")
	}
	e2, _ := res2.Energy()
	if e2 == e1 {
		Te.Error("the new geometry gave the old energy")
	}
	//in place: the same container comes back, repopulated
	res3, err := calc.Singlepoint(res1, false)
	if err != nil {
		Te.Fatal(err)
	}
	if res3 != res1 {
		Te.Error("in-place restart allocated a new container")
	}
	e3, _ := res3.Energy()
	if e3 != e2 {
		Te.Error("restart and fresh run disagree:", e3, "vs", e2)
	}
	res1.Close()
}

//TestFailedSinglepointCleanup: a failed singlepoint must release any
//container it allocated itself, since the caller only ever sees the
//error; a container the caller passed in stays theirs.
func TestFailedSinglepointCleanup(Te *testing.T) {
	lib, fake := testLib(Te)
	//a gas phase run first, to have a filled container for the copy case
	calc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, nil)
	if err != nil {
		Te.Fatal(err)
	}
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	e1, _ := res.Energy()
	//periodic water under GFN2-xTB, the singlepoint always fails
	opt := &MolOptions{
		Lattice: []float64{
			10, 0, 0,
			0, 10, 0,
			0, 0, 10,
		},
		Periodic: []bool{true, true, true},
	}
	pbc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, opt)
	if err != nil {
		Te.Fatal(err)
	}
	if _, err := pbc.Singlepoint(nil, false); !IsKind(err, ErrComputation) {
		Te.Fatal("periodic GFN2-xTB singlepoint should fail, got:", err)
	}
	if _, err := pbc.Singlepoint(res, true); !IsKind(err, ErrComputation) {
		Te.Fatal("periodic copy restart should fail, got:", err)
	}
	//the passed-in container survives the failed copy restart untouched
	if e, err := res.Energy(); err != nil || e != e1 {
		Te.Error("the failed restart disturbed the caller's container:", e, err)
	}
	res.Close()
	calc.Close()
	pbc.Close()
	if live := fake.Live(); live != 0 {
		Te.Error("the failed singlepoints leaked native handles:", live)
	}
}

//TestNoParametrisation checks the failure mode of a singlepoint on a
//calculator whose load failed: the error is an ErrLoad at construction
//already, for an element outside the parametrised range.
func TestNoParametrisation(Te *testing.T) {
	lib, fake := testLib(Te)
	//element 96 is beyond what any GFN method covers
	_, err := lib.NewCalculator(GFN2xTB, []int{96, 1}, []float64{0, 0, 0, 0, 0, 3}, nil)
	if err == nil {
		Te.Fatal("curium should not be parametrised")
	}
	if !IsKind(err, ErrLoad) {
		Te.Error("wrong kind:", err)
	}
	if fake.Live() != 0 {
		Te.Error("the failed calculator leaked native handles")
	}
}

//TestOutputRedirection binds a file to the environment of a calculation
//and checks the native output lands there, and nowhere when muted.
func TestOutputRedirection(Te *testing.T) {
	lib, _ := testLib(Te)
	dir := Te.TempDir()
	calc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer calc.Close()
	logfile := filepath.Join(dir, "xtb.out")
	calc.SetOutput(logfile)
	calc.SetVerbosity(Full)
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	defer res.Close()
	text, err := os.ReadFile(logfile)
	if err != nil {
		Te.Fatal("no output was written:", err)
	}
	if !strings.Contains(string(text), "GFN2xTB singlepoint") {
		Te.Error("unexpected output content:", string(text))
	}
	//muted: nothing more may be appended
	calc.SetVerbosity(Muted)
	if _, err := calc.Singlepoint(res, false); err != nil {
		Te.Fatal(err)
	}
	after, _ := os.ReadFile(logfile)
	if len(after) != len(text) {
		Te.Error("muted verbosity still wrote output")
	}
	calc.ReleaseOutput()
}

//TestGradientConsistency compares the analytic gradient against a
//central difference of the energy along one coordinate.
func TestGradientConsistency(Te *testing.T) {
	lib, _ := testLib(Te)
	calc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer calc.Close()
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	defer res.Close()
	grad, err := res.Gradient()
	if err != nil {
		Te.Fatal(err)
	}
	analytic := grad.At(1, 1) //dE/dy of the first hydrogen
	h := 1e-5
	plus := append([]float64(nil), waterXYZ...)
	plus[4] += h
	minus := append([]float64(nil), waterXYZ...)
	minus[4] -= h
	if err := calc.Update(plus, nil); err != nil {
		Te.Fatal(err)
	}
	res, _ = calc.Singlepoint(res, false)
	ep, _ := res.Energy()
	if err := calc.Update(minus, nil); err != nil {
		Te.Fatal(err)
	}
	res, _ = calc.Singlepoint(res, false)
	em, _ := res.Energy()
	numeric := (ep - em) / (2 * h)
	if math.Abs(numeric-analytic) > 1e-6 {
		Te.Error("gradient does not match the energy surface:", analytic, "vs", numeric)
	}
}
