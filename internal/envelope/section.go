package envelope

import (
	"bytes"
	"encoding/binary"

	"ciphera/internal/protoerr"
)

// Section names, one per wire message kind.
const (
	SectionClutchOffer     = "clutch_offer"
	SectionClutchKEM       = "clutch_kem"
	SectionClutchComplete  = "clutch_complete"
	SectionMessage         = "message"
	SectionRouting         = "routing"
	SectionAcks            = "acks"
	SectionPing            = "ping"
	SectionPong            = "pong"
	SectionRequestMessage  = "request_message"
)

// Section is a named, ordered collection of typed fields.
type Section struct {
	Name   string
	Fields []Field
}

func encodeSection(buf *bytes.Buffer, s Section) error {
	writeUvarint(buf, uint64(len(s.Name)))
	buf.WriteString(s.Name)
	writeUvarint(buf, uint64(len(s.Fields)))
	for _, f := range s.Fields {
		if err := encodeField(buf, f); err != nil {
			return err
		}
	}
	return nil
}

func decodeSection(r *bytes.Reader) (Section, error) {
	nameLen, err := binary.ReadUvarint(r)
	if err != nil {
		return Section{}, protoerr.New(protoerr.FormatError, "truncated section name length")
	}
	nameBytes := make([]byte, nameLen)
	if nameLen > 0 {
		if _, err := r.Read(nameBytes); err != nil {
			return Section{}, protoerr.New(protoerr.FormatError, "truncated section name")
		}
	}
	fieldCount, err := binary.ReadUvarint(r)
	if err != nil {
		return Section{}, protoerr.New(protoerr.FormatError, "truncated section field count")
	}
	fields := make([]Field, 0, fieldCount)
	for i := uint64(0); i < fieldCount; i++ {
		f, err := decodeField(r)
		if err != nil {
			return Section{}, err
		}
		fields = append(fields, f)
	}
	return Section{Name: string(nameBytes), Fields: fields}, nil
}

// BySectionName returns the first section with the given name.
func BySectionName(sections []Section, name string) (Section, bool) {
	for _, s := range sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}
