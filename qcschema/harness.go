/*
 * harness.go, part of goxtb.
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

package qcschema

import (
	"fmt"
	"os"

	xtb "github.com/rmera/goxtb"
)

//Run performs one calculation from a structured request. It never
//returns an error: every failure, from an unusable request to a
//diverged calculation, comes back as a response with Success false and
//a tagged Error block, so a request server can feed it anything and
//just serialize what comes out. Requests are completely independent,
//each one builds and tears down its own resource chain.
func Run(lib *xtb.Library, in AtomicInput) AtomicResult {
	out := AtomicResult{
		AtomicInput: in,
		Provenance: Provenance{
			Creator: "goxtb",
			Version: xtb.Version,
			Routine: "qcschema.Run",
		},
	}
	switch in.Driver {
	case "energy", "gradient", "properties":
	case "hessian":
		//the native layer has no hessian entry point
		return fail(out, "input_error", "Driver 'hessian' is currently not supported")
	default:
		return fail(out, "input_error", fmt.Sprintf("Unknown driver %q", in.Driver))
	}
	param, ok := xtb.GetMethod(in.Model.Method)
	if !ok {
		//no silent fallback to a default method here: an unknown name is
		//the caller's mistake and gets reported as such
		return fail(out, "input_error", fmt.Sprintf("Method %q is not supported", in.Model.Method))
	}
	numbers := in.Molecule.AtomicNumbers
	if len(numbers) == 0 {
		numbers = make([]int, len(in.Molecule.Symbols))
		for i, s := range in.Molecule.Symbols {
			z, ok := xtb.AtomicNumber(s)
			if !ok {
				return fail(out, "input_error", fmt.Sprintf("Unknown element symbol %q", s))
			}
			numbers[i] = z
		}
	}
	mult := in.Molecule.MolecularMultiplicity
	if mult == 0 {
		mult = 1
	}
	if mult < 1 {
		return fail(out, "input_error", fmt.Sprintf("Molecular multiplicity %d is not physical", mult))
	}
	charge := in.Molecule.MolecularCharge
	unpaired := mult - 1
	calc, err := lib.NewCalculator(param, numbers, in.Molecule.Geometry,
		&xtb.MolOptions{Charge: &charge, Unpaired: &unpaired})
	if err != nil {
		return fail(out, tag(err), err.Error())
	}
	defer calc.Close()
	if err := applyKeywords(calc, in.Keywords); err != nil {
		return fail(out, tag(err), err.Error())
	}
	//capture whatever the native side prints into the Stdout field
	capture, err := os.CreateTemp("", "goxtb-*.out")
	if err == nil {
		capture.Close()
		defer os.Remove(capture.Name())
		calc.SetOutput(capture.Name())
	}
	res, err := calc.Singlepoint(nil, false)
	if err != nil {
		return fail(out, tag(err), err.Error())
	}
	defer res.Close()
	calc.ReleaseOutput()
	if capture != nil {
		if text, err := os.ReadFile(capture.Name()); err == nil {
			out.Stdout = string(text)
		}
	}
	energy, err := res.Energy()
	if err != nil {
		return fail(out, "runtime_error", err.Error())
	}
	dipole, err := res.Dipole()
	if err != nil {
		return fail(out, "runtime_error", err.Error())
	}
	out.Properties = map[string]interface{}{
		"return_energy":     energy,
		"scf_dipole_moment": dipole,
	}
	out.Extras = map[string]interface{}{}
	var gradient [][]float64
	if grad, err := res.Gradient(); err == nil {
		n, _ := grad.Dims()
		gradient = make([][]float64, n)
		for i := 0; i < n; i++ {
			gradient[i] = []float64{grad.At(i, 0), grad.At(i, 1), grad.At(i, 2)}
		}
		out.Extras["return_gradient"] = gradient
	}
	//the charge analysis and the orbitals only exist when a wavefunction
	//was retained
	if norb, err := res.NumberOfOrbitals(); err == nil && norb > 0 {
		if charges, err := res.Charges(); err == nil {
			out.Extras["mulliken_charges"] = charges
		}
		if emo, err := res.OrbitalEigenvalues(); err == nil {
			out.Extras["orbital_energies"] = emo
		}
		if focc, err := res.OrbitalOccupations(); err == nil {
			out.Extras["orbital_occupations"] = focc
		}
		if bo, err := res.BondOrders(); err == nil {
			n, _ := bo.Dims()
			mayer := make([][]float64, n)
			for i := 0; i < n; i++ {
				mayer[i] = make([]float64, n)
				for j := 0; j < n; j++ {
					mayer[i][j] = bo.At(i, j)
				}
			}
			out.Extras["mayer_indices"] = mayer
		}
	}
	switch in.Driver {
	case "energy":
		out.ReturnResult = energy
	case "gradient":
		if gradient == nil {
			return fail(out, "runtime_error", "gradient was requested but not produced")
		}
		out.ReturnResult = gradient
	case "properties":
		out.ReturnResult = out.Properties
	}
	out.Success = true
	return out
}

func applyKeywords(calc *xtb.Calculator, kw Keywords) error {
	if kw.Accuracy != nil {
		if err := calc.SetAccuracy(*kw.Accuracy); err != nil {
			return err
		}
	}
	if kw.MaxIterations != nil {
		if err := calc.SetMaxIterations(*kw.MaxIterations); err != nil {
			return err
		}
	}
	if kw.ElectronicTemperature != nil {
		if err := calc.SetElectronicTemperature(*kw.ElectronicTemperature); err != nil {
			return err
		}
	}
	if kw.Solvent != "" {
		solvent, ok := xtb.GetSolvent(kw.Solvent)
		if !ok {
			return fmt.Errorf("Unknown solvent %q", kw.Solvent)
		}
		if err := calc.SetSolvent(solvent); err != nil {
			return err
		}
	}
	if kw.Verbosity != nil {
		calc.SetVerbosity(*kw.Verbosity)
	} else {
		calc.SetVerbosity(xtb.Minimal)
	}
	return nil
}

//tag sorts an error into the two error types of the schema: failures
//detected before anything reached the native layer (malformed shapes,
//names no lookup knows) were caused by the request, everything the
//native side refused or botched happened while honoring it.
func tag(err error) string {
	if xtb.IsKind(err, xtb.ErrShape) {
		return "input_error"
	}
	if _, native := err.(xtb.Error); !native {
		return "input_error"
	}
	return "runtime_error"
}

func fail(out AtomicResult, errtype, message string) AtomicResult {
	out.Success = false
	out.Error = &Error{Type: errtype, Message: message}
	return out
}
