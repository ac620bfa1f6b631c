package wavetable

import "errors"

var ErrArenaFull = errors.New("wavetable: arena exhausted")

// Arena is a fixed pool of tables sized once at startup. Oscillators share
// table pointers handed out by Alloc; nothing is ever freed or resized.
type Arena struct {
	tables []Table
	used   int
}

// NewArena reserves n tables. n <= 0 allocates a single table.
func NewArena(n int) *Arena {
	if n <= 0 {
		n = 1
	}
	return &Arena{tables: make([]Table, n)}
}

// Alloc hands out the next unused table.
func (a *Arena) Alloc() (*Table, error) {
	if a.used >= len(a.tables) {
		return nil, ErrArenaFull
	}
	t := &a.tables[a.used]
	a.used++
	return t, nil
}

// MustAlloc allocates a table filled by g, panicking if the arena is
// exhausted. Intended for startup wiring where exhaustion is a
// programming error.
func (a *Arena) MustAlloc(g Generator) *Table {
	t, err := a.Alloc()
	if err != nil {
		panic(err)
	}
	t.Fill(g)
	return t
}

// Remaining reports how many tables are still unallocated.
func (a *Arena) Remaining() int {
	return len(a.tables) - a.used
}
