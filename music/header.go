package music

import (
	"bytes"
	"encoding/binary"
	"errors"
)

type header struct {
	channels   int
	sampleRate int
}

var errShortHeader = errors.New("truncated header")

func readHeader(ext string, data []byte) (header, error) {
	if ext == ".ogg" {
		return oggHeader(data)
	}
	return wavHeader(data)
}

// wavHeader walks the RIFF chunks up to "fmt ".
func wavHeader(data []byte) (header, error) {
	if len(data) < 12 || string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return header{}, errors.New("not a RIFF/WAVE file")
	}
	for off := 12; off+8 <= len(data); {
		id := string(data[off : off+4])
		size := int(binary.LittleEndian.Uint32(data[off+4 : off+8]))
		body := off + 8
		if id == "fmt " {
			if size < 16 || body+16 > len(data) {
				return header{}, errShortHeader
			}
			return header{
				channels:   int(binary.LittleEndian.Uint16(data[body+2:])),
				sampleRate: int(binary.LittleEndian.Uint32(data[body+4:])),
			}, nil
		}
		off = body + size + size%2
	}
	return header{}, errors.New("missing fmt chunk")
}

// oggHeader reads the vorbis identification packet from the first page.
func oggHeader(data []byte) (header, error) {
	if len(data) < 27 || string(data[0:4]) != "OggS" {
		return header{}, errors.New("not an ogg file")
	}
	segments := int(data[26])
	packet := 27 + segments
	// packet type, "vorbis", version, channels, sample rate
	if len(data) < packet+16 {
		return header{}, errShortHeader
	}
	p := data[packet:]
	if p[0] != 1 || !bytes.Equal(p[1:7], []byte("vorbis")) {
		return header{}, errors.New("first packet is not a vorbis identification header")
	}
	return header{
		channels:   int(p[11]),
		sampleRate: int(binary.LittleEndian.Uint32(p[12:16])),
	}, nil
}
