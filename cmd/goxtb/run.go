/*
 * run.go, part of goxtb.
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
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/klauspost/compress/zstd"
	chem "github.com/rmera/gochem"
	"github.com/spf13/cobra"

	xtb "github.com/rmera/goxtb"
	"github.com/rmera/goxtb/qcschema"
	"github.com/rmera/goxtb/xtbplot"
)

var (
	runMethod   string
	runDriver   string
	runCharge   float64
	runMulti    int
	runSolvent  string
	runAccuracy float64
	runIter     int
	runEtemp    float64
	runOut      string
	runPlot     string
)

var runCmd = &cobra.Command{
	Use:   "run geometry.{xyz,json}",
	Short: "run one singlepoint calculation",
	Long: `run reads a geometry (XYZ, in Å) or a full QCSchema request (JSON,
geometry in Bohr) and runs one singlepoint. The response is QCSchema
JSON on stdout, or in the file given by --output; an output name
ending in .zst is zstd-compressed on the way out.

Flags override the corresponding fields of a JSON request.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in, err := readInput(args[0])
		if err != nil {
			return err
		}
		applyFlags(cmd, &in)
		lib, err := loadLibrary()
		if err != nil {
			return err
		}
		log.Info("running singlepoint", "atoms", len(in.Molecule.Geometry)/3,
			"method", in.Model.Method, "driver", in.Driver)
		out := qcschema.Run(lib, in)
		if out.Success {
			log.Info("finished", "energy", out.Properties["return_energy"])
		} else {
			log.Error("calculation failed", "type", out.Error.Type, "message", out.Error.Message)
		}
		if runPlot != "" && out.Success {
			plotResponse(out)
		}
		return writeResponse(out)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runMethod, "method", "m", "GFN2-xTB", "parametrisation to use")
	runCmd.Flags().StringVarP(&runDriver, "driver", "d", "energy", "what to return: energy, gradient or properties")
	runCmd.Flags().Float64VarP(&runCharge, "charge", "c", 0, "total charge")
	runCmd.Flags().IntVarP(&runMulti, "multiplicity", "u", 1, "spin multiplicity")
	runCmd.Flags().StringVarP(&runSolvent, "solvent", "s", "", "GBSA implicit solvent")
	runCmd.Flags().Float64Var(&runAccuracy, "accuracy", 0, "numerical accuracy scale")
	runCmd.Flags().IntVar(&runIter, "iterations", 0, "self-consistency iteration cap")
	runCmd.Flags().Float64Var(&runEtemp, "etemp", 0, "electronic temperature in K")
	runCmd.Flags().StringVarP(&runOut, "output", "o", "", "response file (default stdout; .zst compresses)")
	runCmd.Flags().StringVar(&runPlot, "plot", "", "prefix for level-diagram and charge figures")
}

//readInput turns either input form into an AtomicInput. XYZ carries Å,
//so the coordinates get converted; JSON is already in Bohr.
func readInput(path string) (qcschema.AtomicInput, error) {
	var in qcschema.AtomicInput
	switch {
	case strings.HasSuffix(path, ".json"):
		data, err := os.ReadFile(path)
		if err != nil {
			return in, err
		}
		if err := json.Unmarshal(data, &in); err != nil {
			return in, fmt.Errorf("%s does not parse as a QCSchema request: %v", path, err)
		}
	case strings.HasSuffix(path, ".xyz"):
		mol, err := chem.XYZFileRead(path)
		if err != nil {
			return in, err
		}
		coords := mol.Coords[0]
		in.Molecule.Symbols = make([]string, mol.Len())
		in.Molecule.Geometry = make(qcschema.Geometry, 0, 3*mol.Len())
		for i := 0; i < mol.Len(); i++ {
			in.Molecule.Symbols[i] = mol.Atom(i).Symbol
			for k := 0; k < 3; k++ {
				in.Molecule.Geometry = append(in.Molecule.Geometry, coords.At(i, k)*chem.A2Bohr)
			}
		}
	default:
		return in, fmt.Errorf("cannot tell what %s is, want .xyz or .json", path)
	}
	return in, nil
}

//applyFlags lays the command line over the request: explicitly set
//flags always win, defaults only fill holes.
func applyFlags(cmd *cobra.Command, in *qcschema.AtomicInput) {
	if cmd.Flags().Changed("method") || in.Model.Method == "" {
		in.Model.Method = runMethod
	}
	if cmd.Flags().Changed("driver") || in.Driver == "" {
		in.Driver = runDriver
	}
	if cmd.Flags().Changed("charge") {
		in.Molecule.MolecularCharge = runCharge
	}
	if cmd.Flags().Changed("multiplicity") {
		in.Molecule.MolecularMultiplicity = runMulti
	}
	if cmd.Flags().Changed("solvent") {
		in.Keywords.Solvent = runSolvent
	}
	if cmd.Flags().Changed("accuracy") {
		in.Keywords.Accuracy = &runAccuracy
	}
	if cmd.Flags().Changed("iterations") {
		in.Keywords.MaxIterations = &runIter
	}
	if cmd.Flags().Changed("etemp") {
		in.Keywords.ElectronicTemperature = &runEtemp
	}
}

func writeResponse(out qcschema.AtomicResult) error {
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	if runOut == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	f, err := os.Create(runOut)
	if err != nil {
		return err
	}
	defer f.Close()
	var w io.Writer = f
	if strings.HasSuffix(runOut, ".zst") {
		enc, err := zstd.NewWriter(f)
		if err != nil {
			return err
		}
		defer enc.Close()
		w = enc
	}
	_, err = w.Write(data)
	if err == nil {
		log.Debug("wrote response", "file", runOut, "bytes", len(data))
	}
	return err
}

//plotResponse draws whatever figures the response has data for. Plot
//failures are only warnings, the calculation itself already succeeded.
func plotResponse(out qcschema.AtomicResult) {
	numbers := out.Molecule.AtomicNumbers
	if len(numbers) == 0 {
		numbers = make([]int, len(out.Molecule.Symbols))
		for i, s := range out.Molecule.Symbols {
			numbers[i], _ = xtb.AtomicNumber(s)
		}
	}
	if charges, ok := out.Extras["mulliken_charges"].([]float64); ok {
		if err := xtbplot.Charges(charges, numbers, "Partial charges", runPlot+"-charges"); err != nil {
			log.Warn("could not draw charges", "err", err)
		}
	}
	emo, eok := out.Extras["orbital_energies"].([]float64)
	focc, fok := out.Extras["orbital_occupations"].([]float64)
	if eok && fok {
		if err := xtbplot.OrbitalLevels(emo, focc, "Orbital levels", runPlot+"-levels"); err != nil {
			log.Warn("could not draw levels", "err", err)
		}
	}
}
