package core

import (
	"bytes"
	"encoding/gob"
)

// encodeGob and decodeGob are small helpers used by Target's and
// Artifact's GobEncode/GobDecode methods, which otherwise have no access
// to a single shared encoder/decoder without an import cycle into package db.
func encodeGob(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func decodeGob(data []byte, v interface{}) error {
	return gob.NewDecoder(bytes.NewReader(data)).Decode(v)
}
