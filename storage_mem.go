package jsondoc

// memStorage is a transient storage implementation intended for tests.
type memStorage struct {
	name string
	data []byte
}

func newMemStorage(name string, initial []byte) *memStorage {
	return &memStorage{name: name, data: initial}
}

func (s *memStorage) String() string {
	return InMemory + "/" + s.name
}

func (s *memStorage) Load() (*Object, error) {
	if len(s.data) == 0 {
		return NewObject(), nil
	}
	obj, err := ParseObject(s.data)
	if err != nil {
		return nil, codecErrf("parse", s.String(), err, "")
	}
	return obj, nil
}

func (s *memStorage) Store(_ *Object, rendered []byte) error {
	s.data = append([]byte(nil), rendered...)
	return nil
}

func (s *memStorage) Close() error {
	return nil
}

// Bytes returns the last stored contents.
func (s *memStorage) Bytes() []byte {
	return s.data
}
