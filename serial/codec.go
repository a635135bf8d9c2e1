// Package serial defines the pluggable serialization capability that hosts
// use to move Op and state values across process boundaries, mirroring the
// teacher's own json.Marshal/json.Unmarshal wire format for its Message
// envelope.
package serial

import "encoding/json"

// Codec marshals and unmarshals Op and state values for a host's transport
// of choice. The zero-value requirement is that Marshal/Unmarshal round-trip
// every exported field losslessly, including map-shaped VClocks and
// slice-shaped LSeq identifiers.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON is the default Codec, built directly on encoding/json. The Op types,
// dot.Dot, clock.VClock and lseq.Level are tagged (or encoded) for it; the
// MVReg and LSeq state types have only unexported fields and encode as an
// empty object, so replica state does not round-trip through it.
type JSON struct{}

var _ Codec = JSON{}

// Marshal encodes v using encoding/json.
func (JSON) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

// Unmarshal decodes data into v using encoding/json.
func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}
