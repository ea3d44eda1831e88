package choice

// Equal compares two choices with ==. Choices whose dynamic type is not
// comparable are never equal.
func Equal[T any](a, b T) (equal bool) {
	defer func() {
		if recover() != nil {
			equal = false
		}
	}()
	return any(a) == any(b)
}

// Positions locates choices in a candidate list. Hashable candidates are
// indexed once; lists holding non-comparable values fall back to a scan.
type Positions[T any] struct {
	choices []T
	byValue map[any]int
}

// NewPositions indexes choices. When a value appears twice the first
// position wins.
func NewPositions[T any](choices []T) *Positions[T] {
	p := &Positions[T]{choices: choices}
	index := make(map[any]int, len(choices))
	for i, c := range choices {
		if !insertPosition(index, c, i) {
			return p
		}
	}
	p.byValue = index
	return p
}

// Of returns the position of value, or -1 when it is absent.
func (p *Positions[T]) Of(value T) int {
	if p == nil {
		return -1
	}
	if p.byValue != nil {
		if i, ok := lookupPosition(p.byValue, value); ok {
			return i
		}
		return -1
	}
	for i := range p.choices {
		if Equal(p.choices[i], value) {
			return i
		}
	}
	return -1
}

// OrDefault returns the position of value, or fallback when it is absent.
func (p *Positions[T]) OrDefault(value T, fallback int) int {
	if i := p.Of(value); i >= 0 {
		return i
	}
	return fallback
}

func insertPosition[T any](index map[any]int, value T, i int) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	if _, exists := index[any(value)]; !exists {
		index[any(value)] = i
	}
	return true
}

func lookupPosition[T any](index map[any]int, value T) (i int, ok bool) {
	defer func() {
		if recover() != nil {
			i, ok = -1, false
		}
	}()
	i, ok = index[any(value)]
	return i, ok
}
