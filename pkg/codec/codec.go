// Package codec wraps the JSON library used for documents and component values.
package codec

import (
	"bytes"

	"github.com/goccy/go-json"
	"github.com/rotisserie/eris"
)

// RawMessage is a raw encoded JSON value.
type RawMessage = json.RawMessage

func Decode[T any](bz []byte) (T, error) {
	comp := new(T)
	err := json.Unmarshal(bz, comp)
	if err != nil {
		return *comp, eris.Wrap(err, "")
	}
	return *comp, nil
}

// DecodeStrict is Decode but rejects object fields that T does not declare and anything but
// whitespace after the value.
func DecodeStrict[T any](bz []byte) (T, error) {
	comp := new(T)
	dec := json.NewDecoder(bytes.NewReader(bz))
	dec.DisallowUnknownFields()
	if err := dec.Decode(comp); err != nil {
		return *comp, eris.Wrap(err, "")
	}
	consumed := min(dec.InputOffset(), int64(len(bz)))
	if rest := bytes.TrimLeft(bz[consumed:], " \t\r\n"); len(rest) > 0 {
		return *comp, eris.Errorf("trailing data after value at offset %d", consumed)
	}
	return *comp, nil
}

func Encode(comp any) ([]byte, error) {
	bz, err := json.Marshal(comp)
	if err != nil {
		return nil, eris.Wrap(err, "")
	}
	return bz, nil
}
