/*
 * info.go, part of goxtb.
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
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	xtb "github.com/rmera/goxtb"
)

var methodsCmd = &cobra.Command{
	Use:   "methods",
	Short: "list the available parametrisations",
	Run: func(cmd *cobra.Command, args []string) {
		for _, name := range xtb.MethodNames() {
			fmt.Println(name)
		}
	},
}

var solventsCmd = &cobra.Command{
	Use:   "solvents",
	Short: "list the accepted implicit-solvent names",
	Run: func(cmd *cobra.Command, args []string) {
		names := xtb.SolventNames()
		sort.Strings(names)
		for _, name := range names {
			fmt.Println(name)
		}
	},
}
