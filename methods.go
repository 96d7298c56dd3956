/*
 * methods.go, part of goxtb.
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

package xtb

import "strings"

//Param enumerates the parametrisations the native library can load.
//The set is closed: each value corresponds to one fixed entry point of
//the C-API, there is nothing to extend.
type Param int

const (
	//GFN2-xTB, self-consistent with anisotropic electrostatics and D4
	//dispersion. The usual default.
	GFN2xTB Param = iota
	//GFN1-xTB, self-consistent with isotropic electrostatics.
	GFN1xTB
	//GFN0-xTB, non-self-consistent. Needs its parameter file reachable
	//through XTBPATH.
	GFN0xTB
	//GFN-FF, the general force field. No wavefunction is retained, so
	//the orbital properties of its Results are empty.
	GFNFF
)

func (P Param) String() string {
	switch P {
	case GFN2xTB:
		return "GFN2-xTB"
	case GFN1xTB:
		return "GFN1-xTB"
	case GFN0xTB:
		return "GFN0-xTB"
	case GFNFF:
		return "GFN-FF"
	}
	return "unknown"
}

var methods = map[string]Param{
	"gfn2-xtb": GFN2xTB,
	"gfn2xtb":  GFN2xTB,
	"gfn1-xtb": GFN1xTB,
	"gfn1xtb":  GFN1xTB,
	"gfn0-xtb": GFN0xTB,
	"gfn0xtb":  GFN0xTB,
	"gfn-ff":   GFNFF,
	"gfnff":    GFNFF,
}

//GetMethod maps a method name, case-insensitively and accepting the
//usual spellings ("GFN2-xTB", "gfn2xtb", ...), to its Param. The second
//value is false for names this library does not implement; callers
//must treat that as an input error, never fall back to a default
//silently.
func GetMethod(name string) (Param, bool) {
	p, ok := methods[strings.ToLower(name)]
	return p, ok
}

//MethodNames returns the canonical names of the available methods.
func MethodNames() []string {
	return []string{GFN2xTB.String(), GFN1xTB.String(), GFN0xTB.String(), GFNFF.String()}
}

//Solvent enumerates the GBSA implicit solvents of the native library.
type Solvent int

const (
	Acetone Solvent = iota
	Acetonitrile
	Benzene
	CH2Cl2
	CHCl3
	CS2
	DMF
	DMSO
	Ether
	H2O
	Methanol
	NHexane
	THF
	Toluene
)

//String returns the name the native library knows the solvent by.
func (S Solvent) String() string {
	names := []string{"acetone", "acetonitrile", "benzene", "ch2cl2",
		"chcl3", "cs2", "dmf", "dmso", "ether", "h2o", "methanol",
		"nhexane", "thf", "toluene"}
	if int(S) < 0 || int(S) >= len(names) {
		return "unknown"
	}
	return names[S]
}

var solventNames = map[string]Solvent{
	"acetone":      Acetone,
	"acetonitrile": Acetonitrile,
	"benzene":      Benzene,
	"ch2cl2":       CH2Cl2,
	"chcl3":        CHCl3,
	"chloroform":   CHCl3,
	"cs2":          CS2,
	"dmf":          DMF,
	"dmso":         DMSO,
	"ether":        Ether,
	"h2o":          H2O,
	"water":        H2O,
	"methanol":     Methanol,
	"nhexane":      NHexane,
	"n-hexane":     NHexane,
	"thf":          THF,
	"toluene":      Toluene,
}

//GetSolvent maps a solvent name (including the common aliases "water",
//"chloroform" and "n-hexane") to its Solvent, case-insensitively.
func GetSolvent(name string) (Solvent, bool) {
	s, ok := solventNames[strings.ToLower(name)]
	return s, ok
}

//SolventNames returns the accepted solvent names, aliases included.
func SolventNames() []string {
	names := make([]string, 0, len(solventNames))
	for n := range solventNames {
		names = append(names, n)
	}
	return names
}
