/*
 * schema.go, part of goxtb.
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

//Package qcschema runs goxtb calculations from QCSchema-style structured
//requests, as used by the QCArchive infrastructure. The request/response
//shapes follow the QCElemental AtomicInput/AtomicResult models closely
//enough that the JSON interoperates, but only the fields this harness
//actually consumes or produces are declared.
package qcschema

import (
	"encoding/json"
	"fmt"
)

//Molecule is the geometry part of a request. Atoms can be given either
//as element symbols or directly as atomic numbers; if both are present
//the numbers win. The geometry is in Bohr, as the schema mandates.
type Molecule struct {
	Symbols               []string `json:"symbols,omitempty"`
	AtomicNumbers         []int    `json:"atomic_numbers,omitempty"`
	Geometry              Geometry `json:"geometry"`
	MolecularCharge       float64  `json:"molecular_charge,omitempty"`
	MolecularMultiplicity int      `json:"molecular_multiplicity,omitempty"` //default 1, a singlet
}

//Geometry is a flat slice of cartesian coordinates that unmarshals from
//either the flat ([x1,y1,z1,x2,...]) or the nested ([[x1,y1,z1],...])
//JSON form, both of which are found in the wild. It always marshals
//flat, which is what the schema specifies.
type Geometry []float64

func (G *Geometry) UnmarshalJSON(data []byte) error {
	var flat []float64
	if err := json.Unmarshal(data, &flat); err == nil {
		*G = flat
		return nil
	}
	var nested [][]float64
	if err := json.Unmarshal(data, &nested); err != nil {
		return fmt.Errorf("geometry is neither a flat nor a nested numeric array: %v", err)
	}
	flat = make([]float64, 0, 3*len(nested))
	for i, row := range nested {
		if len(row) != 3 {
			return fmt.Errorf("geometry row %d has %d components, want 3", i, len(row))
		}
		flat = append(flat, row...)
	}
	*G = flat
	return nil
}

//Model names the level of theory. Only Method is meaningful here; Basis
//is carried through for schema compatibility (tight-binding methods
//bring their own basis).
type Model struct {
	Method string `json:"method"`
	Basis  string `json:"basis,omitempty"`
}

//Keywords are the optional tuning knobs of a request. Pointer fields
//distinguish "absent" from a legitimate zero.
type Keywords struct {
	Accuracy              *float64 `json:"accuracy,omitempty"`
	MaxIterations         *int     `json:"max_iterations,omitempty"`
	ElectronicTemperature *float64 `json:"electronic_temperature,omitempty"`
	Solvent               string   `json:"solvent,omitempty"`
	Verbosity             *int     `json:"verbosity,omitempty"` //default minimal
}

//AtomicInput is one structured calculation request.
type AtomicInput struct {
	Molecule Molecule `json:"molecule"`
	Driver   string   `json:"driver"` //energy, gradient or properties
	Model    Model    `json:"model"`
	Keywords Keywords `json:"keywords,omitempty"`
}

//Provenance says who produced a result.
type Provenance struct {
	Creator string `json:"creator"`
	Version string `json:"version"`
	Routine string `json:"routine"`
}

//Error is the structured failure block of a response. Type is either
//"input_error" (the request itself is unusable: unknown method, bad
//shapes, unsupported driver) or "runtime_error" (the calculation was
//attempted and failed).
type Error struct {
	Type    string `json:"error_type"`
	Message string `json:"error_message"`
}

//AtomicResult is the response to one AtomicInput. The input echo comes
//first, as in QCElemental. ReturnResult is shaped by the driver: a
//scalar for energy, an Nx3 array for gradient, the properties map for
//properties. Extras carries whatever else the calculation produced.
type AtomicResult struct {
	AtomicInput
	Success      bool                   `json:"success"`
	ReturnResult interface{}            `json:"return_result,omitempty"`
	Properties   map[string]interface{} `json:"properties,omitempty"`
	Extras       map[string]interface{} `json:"extras,omitempty"`
	Provenance   Provenance             `json:"provenance"`
	Stdout       string                 `json:"stdout,omitempty"`
	Error        *Error                 `json:"error,omitempty"`
}
