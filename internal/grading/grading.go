// Package grading assigns performance grades to panchayaths.
package grading

import "sort"

type Grade string

const (
	GradeAPlus Grade = "A+"
	GradeA     Grade = "A"
	GradeBPlus Grade = "B+"
	GradeB     Grade = "B"
	GradeCPlus Grade = "C+"
	GradeC     Grade = "C"
	GradeD     Grade = "D"
)

// Threshold is the minimum registrations and revenue for a grade.
type Threshold struct {
	Grade            Grade
	MinRegistrations int64
	MinRevenue       int64
}

// Thresholds are evaluated top-down; both minimums must hold.
var Thresholds = []Threshold{
	{GradeAPlus, 100, 50000},
	{GradeA, 75, 35000},
	{GradeBPlus, 50, 25000},
	{GradeB, 30, 15000},
	{GradeCPlus, 20, 10000},
	{GradeC, 10, 5000},
}

// Rank orders grades from best (0) to worst.
func (g Grade) Rank() int {
	for i, t := range Thresholds {
		if t.Grade == g {
			return i
		}
	}
	return len(Thresholds)
}

// Assign returns the first grade whose thresholds are both met, else D.
func Assign(registrations, revenue int64) Grade {
	for _, t := range Thresholds {
		if registrations >= t.MinRegistrations && revenue >= t.MinRevenue {
			return t.Grade
		}
	}
	return GradeD
}

// LocalityStats is the per-panchayath aggregate grading works on.
type LocalityStats struct {
	PanchayathID  int64
	Name          string
	District      string
	Registrations int64
	Approved      int64
	Revenue       int64
}

type Graded struct {
	LocalityStats
	Grade Grade
}

// Rank grades every locality and sorts by grade, then registrations descending.
func Rank(stats []LocalityStats) []Graded {
	out := make([]Graded, 0, len(stats))
	for _, s := range stats {
		out = append(out, Graded{LocalityStats: s, Grade: Assign(s.Registrations, s.Revenue)})
	}
	sort.SliceStable(out, func(i, j int) bool {
		ri, rj := out[i].Grade.Rank(), out[j].Grade.Rank()
		if ri != rj {
			return ri < rj
		}
		if out[i].Registrations != out[j].Registrations {
			return out[i].Registrations > out[j].Registrations
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// Distribution counts localities per grade.
func Distribution(graded []Graded) map[Grade]int {
	out := make(map[Grade]int, len(Thresholds)+1)
	for _, g := range graded {
		out[g.Grade]++
	}
	return out
}
