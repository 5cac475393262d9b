package rlp

// Item is the generic decoded form of an RLP value: either a byte string or
// an ordered list of Items. It exists mainly to exercise the round-trip
// codec property, decode(encode(x)) == x, for arbitrary items.
type Item struct {
	IsList bool
	Bytes  []byte // valid when !IsList
	List   []Item // valid when IsList
}

func Str(b []byte) Item      { return Item{Bytes: CopyOf(b)} }
func Lst(items ...Item) Item { return Item{IsList: true, List: items} }

// EncodeItem renders a generic Item into canonical RLP bytes.
func EncodeItem(it Item) ([]byte, error) {
	eb := encoderPool.Get().(*Encoder)
	defer encoderPool.Put(eb)
	eb.Reset()
	appendItem(eb, it)
	return eb.Bytes(), nil
}

func appendItem(eb *Encoder, it Item) {
	if !it.IsList {
		eb.AppendString(it.Bytes)
		return
	}
	lh := eb.ListStart()
	for _, child := range it.List {
		appendItem(eb, child)
	}
	eb.ListEnd(lh)
}

// DecodeItem parses b as a single top-level RLP item, failing if there are
// any trailing bytes after it.
func DecodeItem(b []byte) (Item, error) {
	it, rest, err := decodeItem(b)
	if err != nil {
		return Item{}, err
	}
	if len(rest) != 0 {
		return Item{}, errf("trailing bytes after top-level item")
	}
	return it, nil
}

func decodeItem(b []byte) (Item, []byte, error) {
	k, content, rest, err := Split(b)
	if err != nil {
		return Item{}, nil, err
	}
	if k != List {
		return Item{Bytes: CopyOf(content)}, rest, nil
	}
	items := []Item{}
	for len(content) > 0 {
		var child Item
		child, content, err = decodeItem(content)
		if err != nil {
			return Item{}, nil, err
		}
		items = append(items, child)
	}
	return Item{IsList: true, List: items}, rest, nil
}

// CopyOf returns an independent copy of b (never nil, so an empty byte
// string round-trips as a non-nil zero-length slice).
func CopyOf(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
