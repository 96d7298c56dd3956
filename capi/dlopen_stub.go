/*
 * dlopen_stub.go, part of goxtb.
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

//go:build !(darwin || freebsd || linux)

package capi

import (
	"errors"
	"runtime"
)

//DynLib only exists on the platforms where purego can dlopen. Elsewhere
//Open fails and the emulated backend in capitest is the only API
//implementation available.
type DynLib struct{ API }

func Open(path string) (*DynLib, error) {
	return nil, errors.New("loading libxtb is not supported on " + runtime.GOOS)
}
