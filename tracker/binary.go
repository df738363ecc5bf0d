package tracker

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"unicode/utf8"
)

// The compact track encoding uses native byte order:
//
//	file  = u32 track count, tracks...
//	track = u16 name length, name bytes, u32 key count, keys...
//	key   = u32 row, f32 value
var order = binary.NativeEndian

func writeKey(w io.Writer, k Key) error {
	var b [8]byte
	order.PutUint32(b[0:4], k.Row)
	order.PutUint32(b[4:8], math.Float32bits(k.Value))
	_, err := w.Write(b[:])
	return err
}

func readKey(r io.Reader) (Key, error) {
	var b [8]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return Key{}, err
	}
	return Key{
		Row:   order.Uint32(b[0:4]),
		Value: math.Float32frombits(order.Uint32(b[4:8])),
	}, nil
}

func writeTrack(w io.Writer, t *Track) error {
	if len(t.Name) > math.MaxUint16 {
		return fmt.Errorf("track name %.16q... is too long", t.Name)
	}
	if err := binary.Write(w, order, uint16(len(t.Name))); err != nil {
		return err
	}
	if _, err := io.WriteString(w, t.Name); err != nil {
		return err
	}
	if err := binary.Write(w, order, uint32(len(t.Keys))); err != nil {
		return err
	}
	for _, k := range t.Keys {
		if err := writeKey(w, k); err != nil {
			return err
		}
	}
	return nil
}

func readTrack(r io.Reader) (Track, error) {
	var nameLen uint16
	if err := binary.Read(r, order, &nameLen); err != nil {
		return Track{}, err
	}
	name := make([]byte, nameLen)
	if _, err := io.ReadFull(r, name); err != nil {
		return Track{}, err
	}
	if !utf8.Valid(name) {
		return Track{}, fmt.Errorf("track name is not valid UTF-8")
	}
	var count uint32
	if err := binary.Read(r, order, &count); err != nil {
		return Track{}, err
	}
	t := Track{Name: string(name)}
	for i := uint32(0); i < count; i++ {
		k, err := readKey(r)
		if err != nil {
			return Track{}, fmt.Errorf("track %q key %d: %w", t.Name, i, err)
		}
		t.set(k.Row, k.Value)
	}
	return t, nil
}

// EncodeBinary writes tracks in the compact encoding.
func EncodeBinary(w io.Writer, tracks []Track) error {
	if err := binary.Write(w, order, uint32(len(tracks))); err != nil {
		return err
	}
	for i := range tracks {
		if err := writeTrack(w, &tracks[i]); err != nil {
			return err
		}
	}
	return nil
}

// DecodeBinary reads tracks written by EncodeBinary.
func DecodeBinary(r io.Reader) ([]Track, error) {
	var count uint32
	if err := binary.Read(r, order, &count); err != nil {
		return nil, err
	}
	tracks := make([]Track, 0, min(count, 1024))
	for i := uint32(0); i < count; i++ {
		t, err := readTrack(r)
		if err != nil {
			return nil, fmt.Errorf("track %d: %w", i, err)
		}
		tracks = append(tracks, t)
	}
	return tracks, nil
}
