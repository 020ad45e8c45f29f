package wire

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Packet is a single protocol message: an opcode plus a little-endian
// payload. Field order within the payload is significant; existing clients
// of this protocol family read fields positionally.
type Packet struct {
	Opcode  Opcode
	payload []byte
	rpos    int
}

func NewPacket(op Opcode) *Packet {
	return &Packet{Opcode: op}
}

// Decode splits a raw frame into a readable packet. The frame layout is
// uint16 opcode followed by the payload.
func Decode(frame []byte) (*Packet, error) {
	if len(frame) < 2 {
		return nil, fmt.Errorf("frame too short: %d bytes", len(frame))
	}
	return &Packet{
		Opcode:  Opcode(binary.LittleEndian.Uint16(frame)),
		payload: frame[2:],
	}, nil
}

// Frame returns the full wire frame, opcode included.
func (p *Packet) Frame() []byte {
	frame := make([]byte, 2+len(p.payload))
	binary.LittleEndian.PutUint16(frame, uint16(p.Opcode))
	copy(frame[2:], p.payload)
	return frame
}

// Payload returns the encoded payload without the opcode.
func (p *Packet) Payload() []byte {
	return p.payload
}

func (p *Packet) Len() int {
	return len(p.payload)
}

// Empty reports whether any payload remains unread.
func (p *Packet) Empty() bool {
	return p.rpos >= len(p.payload)
}

/* writers */

func (p *Packet) WriteUint8(v uint8) *Packet {
	p.payload = append(p.payload, v)
	return p
}

func (p *Packet) WriteUint16(v uint16) *Packet {
	p.payload = binary.LittleEndian.AppendUint16(p.payload, v)
	return p
}

func (p *Packet) WriteUint32(v uint32) *Packet {
	p.payload = binary.LittleEndian.AppendUint32(p.payload, v)
	return p
}

func (p *Packet) WriteUint64(v uint64) *Packet {
	p.payload = binary.LittleEndian.AppendUint64(p.payload, v)
	return p
}

func (p *Packet) WriteInt32(v int32) *Packet {
	return p.WriteUint32(uint32(v))
}

func (p *Packet) WriteBool(v bool) *Packet {
	if v {
		return p.WriteUint8(1)
	}
	return p.WriteUint8(0)
}

func (p *Packet) WriteFloat32(v float32) *Packet {
	return p.WriteUint32(math.Float32bits(v))
}

// WriteString appends a NUL-terminated string.
func (p *Packet) WriteString(s string) *Packet {
	p.payload = append(p.payload, s...)
	p.payload = append(p.payload, 0)
	return p
}

// WritePackedGUID appends a GUID in packed form: a mask byte flagging which
// of the eight bytes are non-zero, followed by those bytes low-to-high.
func (p *Packet) WritePackedGUID(guid uint64) *Packet {
	var mask uint8
	var packed [8]byte
	n := 0
	for i := 0; guid != 0; i++ {
		if b := byte(guid & 0xFF); b != 0 {
			mask |= 1 << i
			packed[n] = b
			n++
		}
		guid >>= 8
	}
	p.payload = append(p.payload, mask)
	p.payload = append(p.payload, packed[:n]...)
	return p
}

// PutUint64 overwrites an already-written uint64 at the given payload
// offset. Used for masks whose value is only known after the fields they
// describe have been encoded.
func (p *Packet) PutUint64(pos int, v uint64) {
	binary.LittleEndian.PutUint64(p.payload[pos:], v)
}

// Pos returns the current write position within the payload.
func (p *Packet) Pos() int {
	return len(p.payload)
}

/* readers */

var errShortPacket = fmt.Errorf("packet payload exhausted")

func (p *Packet) ReadUint8() (uint8, error) {
	if p.rpos+1 > len(p.payload) {
		return 0, errShortPacket
	}
	v := p.payload[p.rpos]
	p.rpos++
	return v, nil
}

func (p *Packet) ReadUint16() (uint16, error) {
	if p.rpos+2 > len(p.payload) {
		return 0, errShortPacket
	}
	v := binary.LittleEndian.Uint16(p.payload[p.rpos:])
	p.rpos += 2
	return v, nil
}

func (p *Packet) ReadUint32() (uint32, error) {
	if p.rpos+4 > len(p.payload) {
		return 0, errShortPacket
	}
	v := binary.LittleEndian.Uint32(p.payload[p.rpos:])
	p.rpos += 4
	return v, nil
}

func (p *Packet) ReadUint64() (uint64, error) {
	if p.rpos+8 > len(p.payload) {
		return 0, errShortPacket
	}
	v := binary.LittleEndian.Uint64(p.payload[p.rpos:])
	p.rpos += 8
	return v, nil
}

func (p *Packet) ReadInt32() (int32, error) {
	v, err := p.ReadUint32()
	return int32(v), err
}

func (p *Packet) ReadBool() (bool, error) {
	v, err := p.ReadUint8()
	return v != 0, err
}

func (p *Packet) ReadFloat32() (float32, error) {
	v, err := p.ReadUint32()
	return math.Float32frombits(v), err
}

// ReadString consumes bytes up to and including the NUL terminator.
func (p *Packet) ReadString() (string, error) {
	for i := p.rpos; i < len(p.payload); i++ {
		if p.payload[i] == 0 {
			s := string(p.payload[p.rpos:i])
			p.rpos = i + 1
			return s, nil
		}
	}
	return "", fmt.Errorf("unterminated string")
}

// ReadPackedGUID reverses WritePackedGUID.
func (p *Packet) ReadPackedGUID() (uint64, error) {
	mask, err := p.ReadUint8()
	if err != nil {
		return 0, err
	}
	var guid uint64
	for i := 0; i < 8; i++ {
		if mask&(1<<i) == 0 {
			continue
		}
		b, err := p.ReadUint8()
		if err != nil {
			return 0, err
		}
		guid |= uint64(b) << (8 * i)
	}
	return guid, nil
}
