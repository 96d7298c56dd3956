/*
 * root.go, part of goxtb.
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
	"context"
	"os"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	xtb "github.com/rmera/goxtb"
)

var (
	verbose bool
	libpath string

	rootCmd = &cobra.Command{
		Use:   "goxtb",
		Short: "in-process xtb singlepoint calculations",
		Long: `goxtb runs extended tight-binding singlepoint calculations through
the xtb shared library, loaded at runtime, without scratch files or
output parsing. Input is an XYZ geometry or a QCSchema JSON request;
output is a QCSchema JSON response.

The library is searched in GOXTB_LIBRARY, XTB_LIBRARY, XTBHOME and
CONDA_PREFIX unless --lib points somewhere explicit.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				log.SetLevel(log.DebugLevel)
			}
		},
	}
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "chatty logging")
	rootCmd.PersistentFlags().StringVar(&libpath, "lib", "", "path to the xtb shared library")
	viper.SetEnvPrefix("goxtb")
	viper.AutomaticEnv()
	viper.BindPFlag("lib", rootCmd.PersistentFlags().Lookup("lib"))
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(methodsCmd)
	rootCmd.AddCommand(solventsCmd)
}

//loadLibrary dlopens libxtb from --lib, $GOXTB_LIB, or the usual
//search locations, and logs what it found.
func loadLibrary() (*xtb.Library, error) {
	lib, err := xtb.Load(viper.GetString("lib"))
	if err != nil {
		return nil, err
	}
	log.Debug("loaded native library", "api", lib.APIVersion())
	return lib, nil
}

//Execute runs the CLI. Fang wraps cobra for the styled help, errors
//and the version flag.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(xtb.Version),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}
