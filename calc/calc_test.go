/*
 * calc_test.go, part of goxtb.
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

package calc

import (
	"math"
	"testing"

	chem "github.com/rmera/gochem"
	"github.com/rmera/gochem/qm"
	v3 "github.com/rmera/gochem/v3"
	xtb "github.com/rmera/goxtb"
	"github.com/rmera/goxtb/capi/capitest"
)

//a water molecule the goChem way: symbols plus coordinates in Å
func water(Te *testing.T) (chem.AtomMultiCharger, *v3.Matrix) {
	atoms := []*chem.Atom{
		{Symbol: "O"},
		{Symbol: "H"},
		{Symbol: "H"},
	}
	top := chem.NewTopology(0, 1, atoms)
	coords, err := v3.NewMatrix([]float64{
		0.0, 0.0, -0.0758,
		0.0, 0.7607, 0.6016,
		0.0, -0.7607, 0.6016,
	})
	if err != nil {
		Te.Fatal(err)
	}
	return top, coords
}

func testXTB(Te *testing.T) *XTB {
	lib, err := xtb.NewLibrary(capitest.New())
	if err != nil {
		Te.Fatal(err)
	}
	return NewXTB(lib)
}

//TestSinglepoint runs the BuildInput/Run/read rhythm and checks the
//units come out in goChem conventions.
func TestSinglepoint(Te *testing.T) {
	O := testXTB(Te)
	defer O.Close()
	top, coords := water(Te)
	Q := &qm.Calc{Method: "gfn2"}
	if err := O.BuildInput(coords, top, Q); err != nil {
		Te.Fatal(err)
	}
	if err := O.Run(true); err != nil {
		Te.Fatal(err)
	}
	kcal, err := O.Energy()
	if err != nil {
		Te.Fatal(err)
	}
	//recompute through the core API, in Hartree, and compare
	numbers := []int{8, 1, 1}
	positions := make([]float64, 9)
	for i := 0; i < 3; i++ {
		for k := 0; k < 3; k++ {
			positions[3*i+k] = coords.At(i, k) * chem.A2Bohr
		}
	}
	lib, _ := xtb.NewLibrary(capitest.New())
	calc, err := lib.NewCalculator(xtb.GFN2xTB, numbers, positions, nil)
	if err != nil {
		Te.Fatal(err)
	}
	defer calc.Close()
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	defer res.Close()
	hartree, _ := res.Energy()
	if math.Abs(kcal-hartree*chem.H2Kcal) > 1e-8 {
		Te.Error("unit conversion is off:", kcal, "vs", hartree*chem.H2Kcal)
	}
	forces, err := O.Forces()
	if err != nil {
		Te.Fatal(err)
	}
	if forces.NVecs() != 3 {
		Te.Error("forces have", forces.NVecs(), "rows")
	}
	charges, err := O.Charges()
	if err != nil {
		Te.Fatal(err)
	}
	total := 0.0
	for _, q := range charges {
		total += q
	}
	if math.Abs(total) > 1e-8 {
		Te.Error("charges of neutral water add up to", total)
	}
}

//TestSolvent checks the dielectric-to-solvent mapping of the gochem
//drivers is honored.
func TestSolvent(Te *testing.T) {
	O := testXTB(Te)
	defer O.Close()
	top, coords := water(Te)
	if err := O.BuildInput(coords, top, &qm.Calc{Method: "gfn2"}); err != nil {
		Te.Fatal(err)
	}
	if err := O.Run(true); err != nil {
		Te.Fatal(err)
	}
	gas, _ := O.Energy()
	if err := O.BuildInput(coords, top, &qm.Calc{Method: "gfn2", Dielectric: 80}); err != nil {
		Te.Fatal(err)
	}
	if err := O.Run(true); err != nil {
		Te.Fatal(err)
	}
	wet, _ := O.Energy()
	if gas == wet {
		Te.Error("a dielectric of 80 should have selected water")
	}
}

//TestUpdateRestart moves the geometry and reruns, restarting from the
//previous result.
func TestUpdateRestart(Te *testing.T) {
	O := testXTB(Te)
	defer O.Close()
	top, coords := water(Te)
	if err := O.BuildInput(coords, top, nil); err != nil {
		Te.Fatal(err)
	}
	if err := O.Run(true); err != nil {
		Te.Fatal(err)
	}
	e1, _ := O.Energy()
	moved := v3.Zeros(3)
	moved.Copy(coords)
	moved.Set(1, 1, coords.At(1, 1)+0.1)
	if err := O.Update(moved); err != nil {
		Te.Fatal(err)
	}
	if err := O.Run(true); err != nil {
		Te.Fatal(err)
	}
	e2, _ := O.Energy()
	if e1 == e2 {
		Te.Error("moving an atom did not change the energy")
	}
}

//TestRefusals: unknown elements and missing preparation fail with plain
//errors, and the optimizer entry point honestly says there isn't one.
func TestRefusals(Te *testing.T) {
	O := testXTB(Te)
	defer O.Close()
	if err := O.Run(true); err == nil {
		Te.Error("Run before BuildInput should fail")
	}
	if _, err := O.Energy(); err == nil {
		Te.Error("Energy before Run should fail")
	}
	atoms := []*chem.Atom{{Symbol: "Xx"}}
	top := chem.NewTopology(0, 1, atoms)
	coords, _ := v3.NewMatrix([]float64{0, 0, 0})
	if err := O.BuildInput(coords, top, nil); err == nil {
		Te.Error("an unknown element symbol was accepted")
	}
	top2, coords2 := water(Te)
	if err := O.BuildInput(coords2, top2, nil); err != nil {
		Te.Fatal(err)
	}
	if _, err := O.OptimizedGeometry(top2); err == nil {
		Te.Error("there is no optimizer to read a geometry from")
	}
}
