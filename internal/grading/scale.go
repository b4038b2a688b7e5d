package grading

// Letter is a published letter grade.
type Letter string

const (
	LetterAPlus  Letter = "A+"
	LetterA      Letter = "A"
	LetterAMinus Letter = "A-"
	LetterBPlus  Letter = "B+"
	LetterB      Letter = "B"
	LetterBMinus Letter = "B-"
	LetterCPlus  Letter = "C+"
	LetterC      Letter = "C"
	LetterD      Letter = "D"
	LetterF      Letter = "F"
)

// Bracket is one row of the grading table. MinPercent is an inclusive lower bound.
type Bracket struct {
	MinPercent float64
	Letter     Letter
	GradePoint float64
}

// brackets is evaluated top-down; the first bracket whose MinPercent is met wins.
var brackets = []Bracket{
	{MinPercent: 80, Letter: LetterAPlus, GradePoint: 4.00},
	{MinPercent: 75, Letter: LetterA, GradePoint: 3.75},
	{MinPercent: 70, Letter: LetterAMinus, GradePoint: 3.50},
	{MinPercent: 65, Letter: LetterBPlus, GradePoint: 3.25},
	{MinPercent: 60, Letter: LetterB, GradePoint: 3.00},
	{MinPercent: 55, Letter: LetterBMinus, GradePoint: 2.75},
	{MinPercent: 50, Letter: LetterCPlus, GradePoint: 2.50},
	{MinPercent: 45, Letter: LetterC, GradePoint: 2.25},
	{MinPercent: 40, Letter: LetterD, GradePoint: 2.00},
}

var failing = Bracket{Letter: LetterF, GradePoint: 0}

// Classify maps a total percentage to its letter grade and grade point.
// Any input is accepted; values under the lowest threshold (including NaN) fail.
func Classify(totalPercent float64) (Letter, float64) {
	for _, b := range brackets {
		if totalPercent >= b.MinPercent {
			return b.Letter, b.GradePoint
		}
	}
	return failing.Letter, failing.GradePoint
}

// Scale returns a copy of the grading table, highest bracket first, ending with F.
func Scale() []Bracket {
	out := make([]Bracket, 0, len(brackets)+1)
	out = append(out, brackets...)
	return append(out, failing)
}

// IsFail reports whether the letter is a failing grade.
func (l Letter) IsFail() bool {
	return l == LetterF
}

// rank orders letters best-first; unknown letters sort last.
func (l Letter) rank() int {
	for i, b := range brackets {
		if b.Letter == l {
			return i
		}
	}
	if l == LetterF {
		return len(brackets)
	}
	return len(brackets) + 1
}
