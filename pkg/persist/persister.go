package persist

// Persister handles file I/O for a specific state type using a Codec.
type Persister[T any] struct {
	codec Codec
}

// NewPersister creates a persister with the given codec.
func NewPersister[T any](codec Codec) *Persister[T] {
	return &Persister[T]{codec: codec}
}

// Codec returns the codec used by the persister.
func (p *Persister[T]) Codec() Codec {
	return p.codec
}

// Save writes state to path.
func (p *Persister[T]) Save(path string, state T) error {
	return SaveFile(path, p.codec, state)
}

// Load reads a state from path.
func (p *Persister[T]) Load(path string) (T, error) {
	var state T

	err := LoadFile(path, p.codec, &state)

	return state, err
}
