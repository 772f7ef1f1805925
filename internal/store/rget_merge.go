package store

// mergeCursor is the external merge over every data shard's RGet cursor,
// advancing whichever source cursor currently holds the least key, per
// spec.md §4.5's fan-out-and-merge range scan.
type mergeCursor struct {
	cursors []Cursor
	valid   []bool
	curKey  Key
	curVal  Value
	started bool
}

func newMergeCursor(cursors []Cursor) *mergeCursor {
	valid := make([]bool, len(cursors))
	for i, c := range cursors {
		valid[i] = c.Next()
	}
	return &mergeCursor{cursors: cursors, valid: valid}
}

func (m *mergeCursor) Next() bool {
	if m.started {
		// Advance every cursor that supplied the key just returned.
		for i, c := range m.cursors {
			if m.valid[i] && keyEqual(c.Key(), m.curKey) {
				m.valid[i] = c.Next()
			}
		}
	}
	m.started = true

	least := -1
	for i, ok := range m.valid {
		if !ok {
			continue
		}
		if least == -1 || keyLess(m.cursors[i].Key(), m.cursors[least].Key()) {
			least = i
		}
	}
	if least == -1 {
		return false
	}
	m.curKey = m.cursors[least].Key()
	m.curVal = m.cursors[least].Value()
	return true
}

func (m *mergeCursor) Key() Key     { return m.curKey }
func (m *mergeCursor) Value() Value { return m.curVal }

func (m *mergeCursor) Close() {
	for _, c := range m.cursors {
		c.Close()
	}
}

func keyLess(a, b Key) bool {
	return string(a) < string(b)
}

func keyEqual(a, b Key) bool {
	return string(a) == string(b)
}
