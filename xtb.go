/*
 * xtb.go, part of goxtb.
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

//Package xtb wraps the C-API of the xtb semiempirical tight-binding
//library (libxtb) for in-process singlepoint calculations. Unlike the
//qm drivers in goChem, which write input files and shell out to the xtb
//binary, everything here happens through the shared library, so there
//are no scratch files and no output parsing.
//
//The package is organized around four resources, each wrapping one
//opaque native handle: Environment (error stack and IO of a call chain),
//Molecule (fixed atoms, mutable coordinates, in Bohr), Calculator (one
//loaded parametrisation plus its knobs) and Results (the property bag a
//singlepoint fills). Each resource exclusively owns its handle and,
//except the Environment itself, its own Environment; Close releases
//everything deterministically and a finalizer catches whatever is
//forgotten. All quantities use the atomic units of the native library
//(Hartree, Bohr, e); converting to Å/eV/kcal is the job of the adapter
//packages, never of this one.
package xtb

import (
	"github.com/rmera/goxtb/capi"
)

//Version is the version of the goxtb wrapper itself.
const Version = "0.1.0"

//APIMajor is the major version of the xtb C-API this wrapper is written
//against. A library reporting a different major version is refused at
//load time; nothing else is allowed to happen after that.
const APIMajor = 1

//Library is a loaded, version-checked xtb implementation. It is the
//entry point for every resource in this package. The Library itself
//holds no mutable state, so one Library can serve many independent
//Environment/Molecule/Calculator/Results chains; the chains themselves
//must not be shared between goroutines, as the native side is not
//reentrant.
type Library struct {
	api     capi.API
	version int
}

//Load dlopens libxtb (from path, or searching the usual locations if
//path is empty, see capi.Open) and verifies its API version.
func Load(path string) (*Library, error) {
	api, err := capi.Open(path)
	if err != nil {
		return nil, Error{message: ErrLinkage, context: err.Error()}
	}
	return NewLibrary(api)
}

//NewLibrary wraps any capi.API implementation, applying the same version
//guard as Load. This is how the emulated backend in capi/capitest gets
//plugged in for testing.
func NewLibrary(api capi.API) (*Library, error) {
	v := api.APIVersion()
	if major, _, _ := capi.DecodeVersion(v); major != APIMajor {
		return nil, Error{
			message: ErrLinkage,
			context: "native library reports API version " + capi.VersionString(v) +
				", this wrapper needs " + capi.VersionString(APIMajor*10000) + " series",
		}
	}
	return &Library{api: api, version: v}, nil
}

//APIVersion returns the API version reported by the native library,
//as a semantic version string.
func (L *Library) APIVersion() string {
	return capi.VersionString(L.version)
}
