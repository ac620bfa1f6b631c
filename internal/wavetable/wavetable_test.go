package wavetable

import "testing"

func TestSineShape(t *testing.T) {
	var tab Table
	tab.Fill(Sine)
	if tab.At(0) != 0 {
		t.Errorf("sine at 0: got %d, want 0", tab.At(0))
	}
	if got := tab.At(Size / 4); got != MaxSample {
		t.Errorf("sine at quarter cycle: got %d, want %d", got, MaxSample)
	}
	if got := tab.At(3 * Size / 4); got != -MaxSample {
		t.Errorf("sine at three-quarter cycle: got %d, want %d", got, -MaxSample)
	}
}

func TestAtWrapsCyclically(t *testing.T) {
	var tab Table
	tab.Fill(Saw)
	if tab.At(Size) != tab.At(0) {
		t.Error("index Size should wrap to 0")
	}
	if tab.At(Size*3+5) != tab.At(5) {
		t.Error("large index should wrap by mask")
	}
}

func TestSquareDutyCycle(t *testing.T) {
	var tab Table
	tab.Fill(Square(16384)) // 50%
	high := 0
	for i := 0; i < Size; i++ {
		if tab.At(i) > 0 {
			high++
		}
	}
	if high != Size/2 {
		t.Errorf("50%% square: got %d high samples, want %d", high, Size/2)
	}

	tab.Fill(Square(8192)) // 25%
	high = 0
	for i := 0; i < Size; i++ {
		if tab.At(i) > 0 {
			high++
		}
	}
	if high != Size/4 {
		t.Errorf("25%% pulse: got %d high samples, want %d", high, Size/4)
	}
}

func TestTriangleEndpoints(t *testing.T) {
	var tab Table
	tab.Fill(Triangle)
	if tab.At(0) != 0 {
		t.Errorf("triangle at 0: got %d", tab.At(0))
	}
	if got := tab.At(Size / 4); got != MaxSample {
		t.Errorf("triangle peak: got %d, want %d", got, MaxSample)
	}
	if got := tab.At(3 * Size / 4); got != -MaxSample {
		t.Errorf("triangle trough: got %d, want %d", got, -MaxSample)
	}
}

func TestNoiseIsSeedDeterministic(t *testing.T) {
	for name, gen := range map[string]func(int64) Generator{
		"white": WhiteNoise,
		"pink":  PinkNoise,
		"brown": BrownNoise,
	} {
		var a, b, c Table
		a.Fill(gen(42))
		b.Fill(gen(42))
		c.Fill(gen(43))
		if *a.Samples() != *b.Samples() {
			t.Errorf("%s: same seed should give identical tables", name)
		}
		if *a.Samples() == *c.Samples() {
			t.Errorf("%s: different seeds should differ", name)
		}
	}
}

func TestNoiseStaysInRange(t *testing.T) {
	var tab Table
	for name, g := range map[string]Generator{
		"pink":  PinkNoise(7),
		"brown": BrownNoise(7),
	} {
		tab.Fill(g)
		for i := 0; i < Size; i++ {
			v := int(tab.At(i))
			if v > MaxSample || v < MinSample {
				t.Fatalf("%s sample %d out of range: %d", name, i, v)
			}
		}
	}
}

func TestFromSamplesResamples(t *testing.T) {
	var tab Table
	if err := tab.FromSamples(nil); err != ErrEmptyInput {
		t.Fatalf("empty input: got %v, want ErrEmptyInput", err)
	}

	short := []int16{100, -100}
	if err := tab.FromSamples(short); err != nil {
		t.Fatal(err)
	}
	if tab.At(0) != 100 || tab.At(Size/2) != -100 {
		t.Errorf("short input should spread across the table: %d %d", tab.At(0), tab.At(Size/2))
	}

	exact := make([]int16, Size)
	for i := range exact {
		exact[i] = int16(i)
	}
	if err := tab.FromSamples(exact); err != nil {
		t.Fatal(err)
	}
	if tab.At(10) != 10 {
		t.Errorf("exact-size input should copy verbatim")
	}
}

func TestArenaAllocatesFixedPool(t *testing.T) {
	a := NewArena(2)
	t1, err := a.Alloc()
	if err != nil {
		t.Fatal(err)
	}
	t2, err := a.Alloc()
	if err != nil {
		t.Fatal(err)
	}
	if t1 == t2 {
		t.Error("allocations should be distinct tables")
	}
	if a.Remaining() != 0 {
		t.Errorf("remaining: got %d, want 0", a.Remaining())
	}
	if _, err := a.Alloc(); err != ErrArenaFull {
		t.Errorf("exhausted arena: got %v, want ErrArenaFull", err)
	}
}
