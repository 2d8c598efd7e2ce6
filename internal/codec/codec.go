// Package codec wraps msgpack-encoded network snapshots in a fixed binary
// envelope: magic bytes, version, length, and a checksum, so a stored
// generation checkpoint can be validated before it's trusted (spec.md
// §10.1 supplements the distilled spec's bare persistence need with the
// wire format the pack's other persistence-layer example uses).
package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/vmihailenco/msgpack/v5"

	"protogonos/internal/model"
)

const (
	magicBytes    = "PGNS"
	formatVersion = 1
)

var (
	ErrBadMagic           = errors.New("codec: invalid magic bytes")
	ErrUnsupportedVersion = errors.New("codec: unsupported format version")
	ErrChecksumMismatch   = errors.New("codec: checksum mismatch")
	ErrTruncated          = errors.New("codec: data too short")
)

type header struct {
	Magic    [4]byte
	Version  uint16
	Reserved uint16
	DataLen  uint64
	Checksum uint32
}

const headerSize = 4 + 2 + 2 + 8 + 4

// EncodeRecords serialises a NodeRecords snapshot: msgpack payload wrapped
// in the magic/version/length/checksum envelope.
func EncodeRecords(records model.NodeRecords) ([]byte, error) {
	data, err := msgpack.Marshal(records)
	if err != nil {
		return nil, err
	}

	h := header{
		Version:  formatVersion,
		DataLen:  uint64(len(data)),
		Checksum: checksum(data),
	}
	copy(h.Magic[:], magicBytes)

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	if _, err := buf.Write(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeRecords validates the envelope and unmarshals the payload back
// into a NodeRecords value.
func DecodeRecords(raw []byte) (model.NodeRecords, error) {
	if len(raw) < headerSize {
		return nil, ErrTruncated
	}

	buf := bytes.NewReader(raw)
	var h header
	if err := binary.Read(buf, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Magic[:]) != magicBytes {
		return nil, ErrBadMagic
	}
	if h.Version > formatVersion {
		return nil, ErrUnsupportedVersion
	}

	data := make([]byte, h.DataLen)
	if _, err := io.ReadFull(buf, data); err != nil {
		return nil, err
	}
	if checksum(data) != h.Checksum {
		return nil, ErrChecksumMismatch
	}

	var records model.NodeRecords
	if err := msgpack.Unmarshal(data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// EncodeScoredNetworks serialises a full generation's scored networks the
// same way, for checkpoint storage.
func EncodeScoredNetworks(scored model.ScoredNodeRecords) ([]byte, error) {
	data, err := msgpack.Marshal(scored)
	if err != nil {
		return nil, err
	}
	h := header{Version: formatVersion, DataLen: uint64(len(data)), Checksum: checksum(data)}
	copy(h.Magic[:], magicBytes)

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	if _, err := buf.Write(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeScoredNetworks(raw []byte) (model.ScoredNodeRecords, error) {
	if len(raw) < headerSize {
		return nil, ErrTruncated
	}
	buf := bytes.NewReader(raw)
	var h header
	if err := binary.Read(buf, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Magic[:]) != magicBytes {
		return nil, ErrBadMagic
	}
	if h.Version > formatVersion {
		return nil, ErrUnsupportedVersion
	}
	data := make([]byte, h.DataLen)
	if _, err := io.ReadFull(buf, data); err != nil {
		return nil, err
	}
	if checksum(data) != h.Checksum {
		return nil, ErrChecksumMismatch
	}
	var scored model.ScoredNodeRecords
	if err := msgpack.Unmarshal(data, &scored); err != nil {
		return nil, err
	}
	return scored, nil
}

// EncodeLineage serialises a run's lineage history the same way.
func EncodeLineage(lineage []model.LineageRecord) ([]byte, error) {
	data, err := msgpack.Marshal(lineage)
	if err != nil {
		return nil, err
	}
	h := header{Version: formatVersion, DataLen: uint64(len(data)), Checksum: checksum(data)}
	copy(h.Magic[:], magicBytes)

	buf := new(bytes.Buffer)
	if err := binary.Write(buf, binary.LittleEndian, h); err != nil {
		return nil, err
	}
	if _, err := buf.Write(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func DecodeLineage(raw []byte) ([]model.LineageRecord, error) {
	if len(raw) < headerSize {
		return nil, ErrTruncated
	}
	buf := bytes.NewReader(raw)
	var h header
	if err := binary.Read(buf, binary.LittleEndian, &h); err != nil {
		return nil, err
	}
	if string(h.Magic[:]) != magicBytes {
		return nil, ErrBadMagic
	}
	if h.Version > formatVersion {
		return nil, ErrUnsupportedVersion
	}
	data := make([]byte, h.DataLen)
	if _, err := io.ReadFull(buf, data); err != nil {
		return nil, err
	}
	if checksum(data) != h.Checksum {
		return nil, ErrChecksumMismatch
	}
	var lineage []model.LineageRecord
	if err := msgpack.Unmarshal(data, &lineage); err != nil {
		return nil, err
	}
	return lineage, nil
}

func checksum(data []byte) uint32 {
	var sum uint32
	for _, b := range data {
		sum = sum*31 + uint32(b)
	}
	return sum
}
