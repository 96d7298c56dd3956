/*
 * errors.go, part of goxtb.
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

import (
	"fmt"
	"strings"
)

//The closed set of failure kinds of the binding. These are the "message"
//part of every Error this package returns, so you can switch on
//err.Kind() without parsing text.
const (
	//the caller handed us arrays with the wrong dimensions; detected
	//before anything crosses into the native layer
	ErrShape = "Malformed input dimensions"
	//the native layer rejected a molecular structure (usually the
	//nuclear fusion check on degenerate geometries)
	ErrStructure = "Could not generate or update molecular structure"
	//a parametrisation failed to load
	ErrLoad = "Could not load parametrisation data"
	//a calculator setting was rejected
	ErrConfiguration = "Could not apply calculator setting"
	//the singlepoint evaluation itself failed
	ErrComputation = "Single point calculation failed"
	//a property was requested that the results object does not hold
	ErrUnavailable = "Property not available"
	//the native library can't be used at all (not loadable, or its API
	//version is incompatible with this wrapper)
	ErrLinkage = "Cannot use native xtb library"
)

//Error is the error type returned by everything in this package. The
//APILog field carries whatever the native error stack contained when the
//failure was detected, verbatim and oldest-first, so no diagnostic text
//is ever dropped on the way up. It implements the same Error/Decorate
//contract as the goChem errors.
type Error struct {
	message string //one of the Err* constants above
	context string //what we were doing, or which property was missing
	apilog  string //drained native error stack, empty for local errors
	deco    []string
}

func (err Error) Error() string {
	parts := []string{err.message}
	if err.context != "" {
		parts = append(parts, err.context)
	}
	if err.apilog != "" {
		parts = append(parts, err.apilog)
	}
	return strings.Join(parts, ": ")
}

//Kind returns which of the Err* constants this error carries.
func (err Error) Kind() string { return err.message }

//APILog returns the text drained from the native error stack when this
//error was created, or an empty string for purely local errors.
func (err Error) APILog() string { return err.apilog }

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	//Even though this method does not use a pointer as a receiver, and tries to alter the receiver,
	//it should work, since err.deco is a slice, and hence a pointer itself.
	if dec != "" {
		err.deco = append(err.deco, dec)
	}
	return err.deco
}

//IsKind tells whether err is a goxtb Error of the given kind.
func IsKind(err error, kind string) bool {
	xerr, ok := err.(Error)
	return ok && xerr.message == kind
}

func shapeError(format string, args ...interface{}) Error {
	return Error{message: ErrShape, context: fmt.Sprintf(format, args...)}
}
