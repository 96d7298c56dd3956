/*
 * run_test.go, part of goxtb.
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

package main

import (
	"bytes"
	"encoding/json"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/gochem"
	"github.com/rmera/goxtb/qcschema"
)

//TestReadInput checks both input forms: an XYZ in Å, converted, and a
//JSON request taken as is.
func TestReadInput(Te *testing.T) {
	dir := Te.TempDir()
	xyz := filepath.Join(dir, "water.xyz")
	err := os.WriteFile(xyz, []byte(`3
water
O   0.0000   0.0000  -0.0758
H   0.0000   0.7607   0.6016
H   0.0000  -0.7607   0.6016
`), 0644)
	if err != nil {
		Te.Fatal(err)
	}
	in, err := readInput(xyz)
	if err != nil {
		Te.Fatal(err)
	}
	if len(in.Molecule.Symbols) != 3 || len(in.Molecule.Geometry) != 9 {
		Te.Fatal("wrong shapes from XYZ:", len(in.Molecule.Symbols), len(in.Molecule.Geometry))
	}
	//the y of the first hydrogen, converted to Bohr
	want := 0.7607 * chem.A2Bohr
	if math.Abs(in.Molecule.Geometry[4]-want) > 1e-6 {
		Te.Error("XYZ coordinates were not converted to Bohr:", in.Molecule.Geometry[4], "want", want)
	}
	jsonfile := filepath.Join(dir, "req.json")
	err = os.WriteFile(jsonfile, []byte(`{
  "molecule": {"symbols": ["H", "H"], "geometry": [[0,0,0],[0,0,2]]},
  "driver": "gradient",
  "model": {"method": "GFN1-xTB"}
}`), 0644)
	if err != nil {
		Te.Fatal(err)
	}
	in, err = readInput(jsonfile)
	if err != nil {
		Te.Fatal(err)
	}
	if in.Driver != "gradient" || in.Model.Method != "GFN1-xTB" {
		Te.Error("JSON request fields got lost")
	}
	if len(in.Molecule.Geometry) != 6 || in.Molecule.Geometry[5] != 2 {
		Te.Error("nested JSON geometry decoded wrong:", in.Molecule.Geometry)
	}
	if _, err := readInput(filepath.Join(dir, "geometry.cube")); err == nil {
		Te.Error("an unknown input extension was accepted")
	}
}

//TestWriteResponseZstd round-trips a response through the compressed
//output path.
func TestWriteResponseZstd(Te *testing.T) {
	dir := Te.TempDir()
	runOut = filepath.Join(dir, "out.json.zst")
	defer func() { runOut = "" }()
	out := qcschema.AtomicResult{Success: true, ReturnResult: -5.0}
	if err := writeResponse(out); err != nil {
		Te.Fatal(err)
	}
	f, err := os.Open(runOut)
	if err != nil {
		Te.Fatal(err)
	}
	defer f.Close()
	dec, err := zstd.NewReader(f)
	if err != nil {
		Te.Fatal(err)
	}
	defer dec.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, dec); err != nil {
		Te.Fatal(err)
	}
	var back qcschema.AtomicResult
	if err := json.Unmarshal(buf.Bytes(), &back); err != nil {
		Te.Fatal("the compressed response does not decode:", err)
	}
	if !back.Success || back.ReturnResult.(float64) != -5.0 {
		Te.Error("the response did not survive the round trip")
	}
}
