// Package dice provides the die-size rating scale used for qualities and
// combat dice, and the randomness abstraction used by automated drivers.
package dice

import "fmt"

// Rating is a polyhedral die size. A smaller die is better: qualities and
// combat dice are rolled under, so d4 is the best rating and d20 the worst.
//
// Invariant: a Rating produced by this package is always a member of Scale.
type Rating int

// Rating values in ascending number of sides.
const (
	D4  Rating = 4
	D6  Rating = 6
	D8  Rating = 8
	D10 Rating = 10
	D12 Rating = 12
	D20 Rating = 20
)

// Scale lists every valid Rating from best (d4) to worst (d20).
var Scale = []Rating{D4, D6, D8, D10, D12, D20}

func (r Rating) index() int {
	for i, v := range Scale {
		if v == r {
			return i
		}
	}
	return -1
}

// Valid reports whether r is a member of Scale.
func (r Rating) Valid() bool {
	return r.index() >= 0
}

// Int returns the number of sides.
func (r Rating) Int() int {
	return int(r)
}

// String returns the conventional "dN" notation.
func (r Rating) String() string {
	return fmt.Sprintf("d%d", int(r))
}

// Improve moves r one step toward d4.
//
// Precondition: r must be valid.
// Postcondition: Returns false and leaves r unchanged when r is already d4.
func (r *Rating) Improve() bool {
	i := r.mustIndex("Improve")
	if i == 0 {
		return false
	}
	*r = Scale[i-1]
	return true
}

// Worsen moves r one step toward d20.
//
// Precondition: r must be valid.
// Postcondition: Returns false and leaves r unchanged when r is already d20.
func (r *Rating) Worsen() bool {
	i := r.mustIndex("Worsen")
	if i == len(Scale)-1 {
		return false
	}
	*r = Scale[i+1]
	return true
}

func (r Rating) mustIndex(op string) int {
	i := r.index()
	if i < 0 {
		panic(fmt.Sprintf("dice: Rating.%s precondition violated: %d is not a valid die size", op, int(r)))
	}
	return i
}

// NewRating returns the Rating with the given number of sides.
//
// Postcondition: Returns an error if sides is not one of 4, 6, 8, 10, 12, 20.
func NewRating(sides int) (Rating, error) {
	r := Rating(sides)
	if !r.Valid() {
		return 0, fmt.Errorf("dice: die size %d not one of %v", sides, Scale)
	}
	return r, nil
}

// MustRating is NewRating that panics on an invalid size. Useful for defaults.
func MustRating(sides int) Rating {
	r, err := NewRating(sides)
	if err != nil {
		panic(err.Error())
	}
	return r
}

// Source is the randomness provider for automated choices.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
}
