/*
 * plot.go, part of goxtb.
 *
 * Copyright 2021 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as published by
 * the Free Software Foundation, either version 2.1 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program.  If not, see <http://www.gnu.org/licenses/>.
 *
 * Goxtb is developed at the laboratory for instruction in Swedish, Department of Chemistry,
 * University of Helsinki, Finland.
 *
 */
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

//Package xtbplot draws quick-look figures from singlepoint results: an
//orbital level diagram and a partial-charge bar chart. Nothing here is
//publication quality, these are the plots you glance at to see whether
//a calculation makes sense.
package xtbplot

import (
	"fmt"
	"image/color"

	xtb "github.com/rmera/goxtb"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//OrbitalLevels draws the orbital energy diagram from eigenvalues (Eh)
//and matching occupations: occupied levels in blue, virtual ones in
//gray, each as a short horizontal bar at its energy. The figure is
//saved as outname.png.
func OrbitalLevels(emo, focc []float64, title, outname string) error {
	if len(emo) == 0 {
		return fmt.Errorf("xtbplot: no orbitals to draw")
	}
	if len(emo) != len(focc) {
		return fmt.Errorf("xtbplot: %d eigenvalues but %d occupations", len(emo), len(focc))
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.X.Label.Text = "Orbital"
	p.Y.Label.Text = "Energy (Eh)"
	for k, e := range emo {
		level := plotter.XYs{
			{X: float64(k) - 0.3, Y: e},
			{X: float64(k) + 0.3, Y: e},
		}
		line, err := plotter.NewLine(level)
		if err != nil {
			return fmt.Errorf("xtbplot: %v", err)
		}
		line.Width = vg.Points(2)
		if focc[k] > 0 {
			line.Color = color.RGBA{B: 255, A: 255}
		} else {
			line.Color = color.RGBA{R: 128, G: 128, B: 128, A: 255}
		}
		p.Add(line)
	}
	return p.Save(5*vg.Inch, 4*vg.Inch, outname+".png")
}

//Charges draws the partial charges as bars, one per atom, labeled with
//the element symbols. The figure is saved as outname.png.
func Charges(charges []float64, numbers []int, title, outname string) error {
	if len(charges) == 0 {
		return fmt.Errorf("xtbplot: no charges to draw")
	}
	if len(numbers) != len(charges) {
		return fmt.Errorf("xtbplot: %d charges but %d atoms", len(charges), len(numbers))
	}
	p := plot.New()
	p.Title.Text = title
	p.Title.Padding = 3 * vg.Millimeter
	p.Y.Label.Text = "Partial charge (e)"
	bars, err := plotter.NewBarChart(plotter.Values(charges), vg.Points(20))
	if err != nil {
		return fmt.Errorf("xtbplot: %v", err)
	}
	bars.Color = color.RGBA{R: 178, B: 60, A: 255}
	p.Add(bars)
	labels := make([]string, len(numbers))
	for i, z := range numbers {
		labels[i] = fmt.Sprintf("%s%d", xtb.Symbol(z), i+1)
	}
	p.NominalX(labels...)
	return p.Save(5*vg.Inch, 4*vg.Inch, outname+".png")
}

//Levels is a convenience over OrbitalLevels that pulls the orbital data
//straight out of a Results.
func Levels(res *xtb.Results, title, outname string) error {
	emo, err := res.OrbitalEigenvalues()
	if err != nil {
		return err
	}
	focc, err := res.OrbitalOccupations()
	if err != nil {
		return err
	}
	return OrbitalLevels(emo, focc, title, outname)
}
