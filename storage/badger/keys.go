package badger

import "fmt"

// Key prefixes for different data types
const (
	recordPrefix         = "vecrec"
	collectionMetaPrefix = "colmeta"
)

// makeRecordKey generates a key for an index record within a collection.
func makeRecordKey(collection, id string) []byte {
	return []byte(fmt.Sprintf("%s:%s:%s", recordPrefix, collection, id))
}

// makeRecordScanPrefix generates the prefix shared by every record key
// in a collection.
func makeRecordScanPrefix(collection string) []byte {
	return []byte(fmt.Sprintf("%s:%s:", recordPrefix, collection))
}

// makeCollectionMetaKey generates a key for collection metadata.
func makeCollectionMetaKey(name string) []byte {
	return []byte(fmt.Sprintf("%s:%s", collectionMetaPrefix, name))
}

// collectionMetaScanPrefix is the prefix shared by all collection
// metadata keys.
func collectionMetaScanPrefix() []byte {
	return []byte(collectionMetaPrefix + ":")
}
