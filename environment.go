/*
 * environment.go, part of goxtb.
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
	"runtime"

	"github.com/rmera/goxtb/capi"
)

//Verbosity levels for the native output. Muted suppresses everything,
//Full prints the whole SCC iteration history.
const (
	Muted   = capi.VerbosityMuted
	Minimal = capi.VerbosityMinimal
	Full    = capi.VerbosityFull
)

//Environment wraps one native calculation environment: the FIFO error
//stack every native call reports into, plus the output unit diagnostics
//are printed to. Every other resource of this package owns exactly one
//Environment, so error checks after a native call are always local to
//the resource that made the call.
//
//The Environment itself never returns the structured errors of this
//package: Check and GetError are the raw protocol, and the owning
//resources translate nonzero status into Error values.
type Environment struct {
	api capi.API
	env capi.Env
}

//NewEnvironment allocates a fresh native environment. Native allocation
//failure is not a recoverable condition, it panics.
func (L *Library) NewEnvironment() *Environment {
	return newEnvironment(L.api)
}

func newEnvironment(api capi.API) *Environment {
	h := api.NewEnvironment()
	if h == 0 {
		panic("goxtb: native environment allocation failed")
	}
	E := &Environment{api: api, env: h}
	runtime.SetFinalizer(E, (*Environment).Close)
	return E
}

//Close releases the native environment. Idempotent: the handle slot is
//nulled before deallocation, so calling Close again (or letting the
//finalizer run afterwards) does nothing.
func (E *Environment) Close() {
	E.api.DelEnvironment(&E.env)
}

//Check reports the current status of the environment: 0 means the error
//stack is empty, nonzero means errors are pending. Callers are expected
//to Check after every state-mutating native call.
func (E *Environment) Check() int {
	return E.api.CheckEnvironment(E.env)
}

//GetError drains the queued error messages, oldest first, into a single
//string (the native side truncates at a fixed buffer size). If context
//is not empty it is prefixed to the result.
func (E *Environment) GetError(context string) string {
	msg := E.api.GetError(E.env)
	if context != "" {
		return context + ": " + msg
	}
	return msg
}

//Show prints message and empties the error stack to the currently bound
//output target.
func (E *Environment) Show(message string) {
	E.api.ShowEnvironment(E.env, message)
}

//SetOutput redirects the diagnostic output of this environment to the
//file at path. At most one target is bound at a time; binding again
//replaces the previous target.
func (E *Environment) SetOutput(path string) {
	E.api.SetOutput(E.env, path)
}

//ReleaseOutput restores the default output unit.
func (E *Environment) ReleaseOutput() {
	E.api.ReleaseOutput(E.env)
}

//SetVerbosity sets the native logging volume to one of Muted, Minimal
//or Full.
func (E *Environment) SetVerbosity(level int) {
	E.api.SetVerbosity(E.env, level)
}

//check translates a pending native error into a structured Error of the
//given kind, draining the stack into it. Returns nil when the stack is
//clean. This is the single choke point of the whole error-propagation
//design: always called right after the triggering native call, never
//batched.
func (E *Environment) check(kind, context string) error {
	if E.Check() == 0 {
		return nil
	}
	return Error{message: kind, context: context, apilog: E.api.GetError(E.env)}
}
