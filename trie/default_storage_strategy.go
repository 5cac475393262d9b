package trie

// DefaultStorageStrategy stores keys verbatim.
type DefaultStorageStrategy byte

func (DefaultStorageStrategy) MapKey(key []byte) (mpt_key []byte, err error) {
	return key, nil
}
