/*
 * molecule_test.go, part of goxtb.
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
	"testing"
)

//TestShapeValidation checks that malformed inputs are caught locally,
//as ErrShape, without any native diagnostic attached.
func TestShapeValidation(Te *testing.T) {
	lib, fake := testLib(Te)
	cases := []struct {
		name      string
		numbers   []int
		positions []float64
		opt       *MolOptions
	}{
		{"no atoms", []int{}, []float64{}, nil},
		{"not triples", []int{1, 1}, waterXYZ[:5], nil},
		{"mismatch", waterZ, waterXYZ[:6], nil},
		{"short lattice", waterZ, waterXYZ, &MolOptions{Lattice: make([]float64, 8), Periodic: []bool{true, true, true}}},
		{"short periodic", waterZ, waterXYZ, &MolOptions{Lattice: make([]float64, 9), Periodic: []bool{true}}},
		{"lattice alone", waterZ, waterXYZ, &MolOptions{Lattice: make([]float64, 9)}},
		{"periodic alone", waterZ, waterXYZ, &MolOptions{Periodic: []bool{true, true, true}}},
	}
	for _, c := range cases {
		_, err := lib.NewMolecule(c.numbers, c.positions, c.opt)
		if err == nil {
			Te.Error(c.name, ": bad shape got through")
			continue
		}
		if !IsKind(err, ErrShape) {
			Te.Error(c.name, ": wrong kind:", err)
		}
		if err.(Error).APILog() != "" {
			Te.Error(c.name, ": local validation reached the native layer")
		}
	}
	if fake.Live() != 0 {
		Te.Error("failed constructions leaked native handles")
	}
}

//TestFusedGeometry checks that a geometry with two nuclei on top of each
//other is an ErrStructure, carrying the native message, and leaks
//nothing.
func TestFusedGeometry(Te *testing.T) {
	lib, fake := testLib(Te)
	fused := []float64{
		0.0, 0.0, 0.0,
		0.0, 0.0, 0.1, //well under the fusion threshold
	}
	_, err := lib.NewMolecule([]int{1, 1}, fused, nil)
	if err == nil {
		Te.Fatal("fused nuclei should be refused")
	}
	if !IsKind(err, ErrStructure) {
		Te.Error("wrong kind:", err)
	}
	if err.(Error).APILog() == "" {
		Te.Error("native message missing from the error")
	}
	if fake.Live() != 0 {
		Te.Error("the refused structure leaked native handles")
	}
}

//TestUpdate checks coordinate updates: a good one changes the energy, a
//malformed or refused one changes nothing.
func TestUpdate(Te *testing.T) {
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
	e1, err := res.Energy()
	if err != nil {
		Te.Fatal(err)
	}
	//wrong length, caught locally
	if err := calc.Update(waterXYZ[:6], nil); !IsKind(err, ErrShape) {
		Te.Error("truncated positions should be an ErrShape, got:", err)
	}
	//refused by the native side, previous geometry must survive
	if err := calc.Update(make([]float64, 9), nil); !IsKind(err, ErrStructure) {
		Te.Error("fused update should be an ErrStructure, got:", err)
	}
	res, err = calc.Singlepoint(res, false)
	if err != nil {
		Te.Fatal(err)
	}
	e2, err := res.Energy()
	if err != nil {
		Te.Fatal(err)
	}
	if e1 != e2 {
		Te.Error("a failed update changed the geometry:", e1, "vs", e2)
	}
	//a real update does change the energy
	stretched := append([]float64(nil), waterXYZ...)
	stretched[4] += 0.3
	if err := calc.Update(stretched, nil); err != nil {
		Te.Fatal(err)
	}
	res, err = calc.Singlepoint(res, false)
	if err != nil {
		Te.Fatal(err)
	}
	e3, err := res.Energy()
	if err != nil {
		Te.Fatal(err)
	}
	if math.Abs(e3-e1) < 1e-10 {
		Te.Error("stretching a bond left the energy untouched")
	}
}

//TestDeferredPeriodicCheck: a periodic structure is accepted at
//construction, and a parametrisation without periodic support only
//complains when the singlepoint is attempted. GFN0-xTB, which does
//support it, must go through.
func TestDeferredPeriodicCheck(Te *testing.T) {
	lib, _ := testLib(Te)
	opt := &MolOptions{
		Lattice: []float64{
			10, 0, 0,
			0, 10, 0,
			0, 0, 10,
		},
		Periodic: []bool{true, true, true},
	}
	calc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, opt)
	if err != nil {
		Te.Fatal("periodic construction must succeed even for GFN2-xTB:", err)
	}
	defer calc.Close()
	_, err = calc.Singlepoint(nil, false)
	if err == nil {
		Te.Fatal("GFN2-xTB singlepoint under PBC should fail")
	}
	if !IsKind(err, ErrComputation) {
		Te.Error("wrong kind:", err)
	}
	calc0, err := lib.NewCalculator(GFN0xTB, waterZ, waterXYZ, opt)
	if err != nil {
		Te.Fatal(err)
	}
	defer calc0.Close()
	res, err := calc0.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal("GFN0-xTB should handle PBC:", err)
	}
	res.Close()
}

//TestMolOptions checks that charge and multiplicity actually reach the
//native structure (the partial charges must add up to the total charge).
func TestMolOptions(Te *testing.T) {
	lib, _ := testLib(Te)
	q := 1.0
	u := 0
	calc, err := lib.NewCalculator(GFN2xTB, waterZ, waterXYZ, &MolOptions{Charge: &q, Unpaired: &u})
	if err != nil {
		Te.Fatal(err)
	}
	defer calc.Close()
	if calc.Len() != 3 {
		Te.Error("wrong atom count:", calc.Len())
	}
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		Te.Fatal(err)
	}
	defer res.Close()
	charges, err := res.Charges()
	if err != nil {
		Te.Fatal(err)
	}
	total := 0.0
	for _, c := range charges {
		total += c
	}
	if math.Abs(total-q) > 1e-8 {
		Te.Error("partial charges add up to", total, "want", q)
	}
}
