package ring

// Elem is the capability set spec.md §9 requires of a ring element before
// it can live inside a Mat: the "tagged trait-like interface" of
// {zero, add, sub, neg, mul} (one and decompose are supplied by the
// gadget package, which is generic over the same Elem constraint). The
// self-referential constraint `T Elem[T]` is what lets PolyCRTEval (whose
// methods already take PolyCRTEval by value and mutate the receiver's
// backing slices) satisfy Mat's type parameter with no adapter code.
type Elem[T any] interface {
	Add(a, b T)
	Sub(a, b T)
	Neg(a T)
	Mul(a, b T)
	MulScalar(a T, c uint64)
}

// Mat is an N*M dense matrix over a ring element T, stored as a flat
// row-major slice (spec.md §3 Mat<N,M,R>, §4.E). Dynamic dispatch in the
// inner loops is avoided by resolving to a single monomorphization of T
// per concrete ring, per spec.md §9.
type Mat[T Elem[T]] struct {
	N, M int
	Data []T
	new  func() T
}

// NewMat allocates an N*M matrix of zero elements, using newElem to
// construct each cell (element construction needs the runtime ring shape
// — degree and modulus — so it cannot be inferred from T alone).
func NewMat[T Elem[T]](N, M int, newElem func() T) *Mat[T] {
	data := make([]T, N*M)
	for i := range data {
		data[i] = newElem()
	}
	return &Mat[T]{N: N, M: M, Data: data, new: newElem}
}

// At returns the (i,j) entry.
func (m *Mat[T]) At(i, j int) T { return m.Data[i*m.M+j] }

// Set overwrites the (i,j) entry's contents (the caller's T must already
// be compatible with the matrix's shape: i.e. came from the same ring).
func (m *Mat[T]) Set(i, j int, v T) { m.Data[i*m.M+j] = v }

// Add computes a+b entrywise into the receiver.
func (m *Mat[T]) Add(a, b *Mat[T]) {
	for i := range m.Data {
		m.Data[i].Add(a.Data[i], b.Data[i])
	}
}

// Sub computes a-b entrywise into the receiver.
func (m *Mat[T]) Sub(a, b *Mat[T]) {
	for i := range m.Data {
		m.Data[i].Sub(a.Data[i], b.Data[i])
	}
}

// Neg computes -a entrywise into the receiver.
func (m *Mat[T]) Neg(a *Mat[T]) {
	for i := range m.Data {
		m.Data[i].Neg(a.Data[i])
	}
}

// Mul computes the standard matrix product a (N x K) times b (K x M) into
// the receiver (N x M), using a scratch element per cell as the ring's
// add_eq_mul accumulator (spec.md §4.E).
func (m *Mat[T]) Mul(a, b *Mat[T]) {
	K := a.M
	tmp := m.new()
	for i := 0; i < a.N; i++ {
		for j := 0; j < b.M; j++ {
			acc := m.new()
			for k := 0; k < K; k++ {
				tmp.Mul(a.At(i, k), b.At(k, j))
				acc.Add(acc, tmp)
			}
			m.Set(i, j, acc)
		}
	}
}

// Fill populates every cell by calling sample(), e.g. for rand_uniform()
// (spec.md §4.E) where sample closes over a PRNG.
func (m *Mat[T]) Fill(sample func() T) {
	for i := range m.Data {
		m.Data[i] = sample()
	}
}

// Zero resets every cell's receiver in place (the cell must already have
// a correctly-shaped backing T).
func (m *Mat[T]) ZeroInto(zero func(T)) {
	for i := range m.Data {
		zero(m.Data[i])
	}
}
