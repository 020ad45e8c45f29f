package game

import "github.com/pixil98/go-realm/internal/wire"

// Change-mask bits for member-state replication. Bit order is wire order:
// fields are serialized strictly in ascending bit position.
const (
	UpdateFlagStatus       uint32 = 0x00000001
	UpdateFlagCurHealth    uint32 = 0x00000002
	UpdateFlagMaxHealth    uint32 = 0x00000004
	UpdateFlagPowerType    uint32 = 0x00000008
	UpdateFlagCurPower     uint32 = 0x00000010
	UpdateFlagMaxPower     uint32 = 0x00000020
	UpdateFlagLevel        uint32 = 0x00000040
	UpdateFlagZone         uint32 = 0x00000080
	UpdateFlagPosition     uint32 = 0x00000100
	UpdateFlagAuras        uint32 = 0x00000200
	UpdateFlagPetGUID      uint32 = 0x00000400
	UpdateFlagPetName      uint32 = 0x00000800
	UpdateFlagPetModelID   uint32 = 0x00001000
	UpdateFlagPetCurHealth uint32 = 0x00002000
	UpdateFlagPetMaxHealth uint32 = 0x00004000
	UpdateFlagPetPowerType uint32 = 0x00008000
	UpdateFlagPetCurPower  uint32 = 0x00010000
	UpdateFlagPetMaxPower  uint32 = 0x00020000
	UpdateFlagVehicleSeat  uint32 = 0x00040000
	UpdateFlagPetAuras     uint32 = 0x00080000
	UpdateFlagPhase        uint32 = 0x00100000

	// UpdatePet covers every pet-related bit.
	UpdatePet = UpdateFlagPetGUID | UpdateFlagPetName | UpdateFlagPetModelID |
		UpdateFlagPetCurHealth | UpdateFlagPetMaxHealth | UpdateFlagPetPowerType |
		UpdateFlagPetCurPower | UpdateFlagPetMaxPower | UpdateFlagPetAuras

	// UpdateFull is the maximal mask used by full snapshots.
	UpdateFull = UpdateFlagStatus | UpdateFlagCurHealth | UpdateFlagMaxHealth |
		UpdateFlagPowerType | UpdateFlagCurPower | UpdateFlagMaxPower |
		UpdateFlagLevel | UpdateFlagZone | UpdateFlagPosition |
		UpdateFlagAuras | UpdatePet
)

// Member status bits.
const (
	StatusOffline uint16 = 0x0000
	StatusOnline  uint16 = 0x0001
	StatusPVP     uint16 = 0x0002
)

// Aura replication limits.
const (
	MaxAuraSlots   = 64
	MaxAuraEffects = 3
)

// AuraFlagIncludeAmounts marks an aura entry as carrying one signed
// magnitude per possible effect slot.
const AuraFlagIncludeAmounts uint16 = 0x0080

// statField binds one change-mask bit to its encoder. The table is
// evaluated in fixed bit order so the wire layout stays stable as fields
// are added.
type statField struct {
	flag   uint32
	encode func(pkt *wire.Packet, p *PlayerState)
}

var statFields = []statField{
	{UpdateFlagStatus, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint16(p.Stats.Status)
	}},
	{UpdateFlagCurHealth, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint32(p.Stats.CurHealth)
	}},
	{UpdateFlagMaxHealth, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint32(p.Stats.MaxHealth)
	}},
	{UpdateFlagPowerType, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint8(p.Stats.PowerType)
	}},
	{UpdateFlagCurPower, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint16(p.Stats.CurPower)
	}},
	{UpdateFlagMaxPower, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint16(p.Stats.MaxPower)
	}},
	{UpdateFlagLevel, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint16(p.Stats.Level)
	}},
	{UpdateFlagZone, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint16(p.Stats.Zone)
	}},
	{UpdateFlagPosition, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint16(p.Stats.PosX)
		pkt.WriteUint16(p.Stats.PosY)
	}},
	{UpdateFlagAuras, func(pkt *wire.Packet, p *PlayerState) {
		writeAuras(pkt, &p.Stats.Auras)
	}},
	{UpdateFlagPetGUID, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteUint64(p.Pet.GUID)
		} else {
			pkt.WriteUint64(0)
		}
	}},
	{UpdateFlagPetName, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteString(p.Pet.Name)
		} else {
			pkt.WriteUint8(0)
		}
	}},
	{UpdateFlagPetModelID, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteUint16(p.Pet.ModelID)
		} else {
			pkt.WriteUint16(0)
		}
	}},
	{UpdateFlagPetCurHealth, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteUint32(p.Pet.CurHealth)
		} else {
			pkt.WriteUint32(0)
		}
	}},
	{UpdateFlagPetMaxHealth, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteUint32(p.Pet.MaxHealth)
		} else {
			pkt.WriteUint32(0)
		}
	}},
	{UpdateFlagPetPowerType, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteUint8(p.Pet.PowerType)
		} else {
			pkt.WriteUint8(0)
		}
	}},
	{UpdateFlagPetCurPower, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteUint16(p.Pet.CurPower)
		} else {
			pkt.WriteUint16(0)
		}
	}},
	{UpdateFlagPetMaxPower, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			pkt.WriteUint16(p.Pet.MaxPower)
		} else {
			pkt.WriteUint16(0)
		}
	}},
	{UpdateFlagVehicleSeat, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint32(p.Stats.VehicleSeat)
	}},
	{UpdateFlagPetAuras, func(pkt *wire.Packet, p *PlayerState) {
		if p.Pet != nil {
			writeAuras(pkt, &p.Pet.Auras)
		} else {
			pkt.WriteUint8(1)
			pkt.WriteUint64(0)
			pkt.WriteUint32(0)
		}
	}},
	{UpdateFlagPhase, func(pkt *wire.Packet, p *PlayerState) {
		pkt.WriteUint32(0)
		pkt.WriteUint32(0)
	}},
}

// writeAuras emits the 64-slot presence mask followed by one entry per
// present slot, plus fixed-arity magnitudes for entries flagged as
// carrying them.
func writeAuras(pkt *wire.Packet, auras *[MaxAuraSlots]*Aura) {
	var mask uint64
	for i, a := range auras {
		if a != nil {
			mask |= uint64(1) << i
		}
	}
	pkt.WriteUint8(0)
	pkt.WriteUint64(mask)
	pkt.WriteUint32(MaxAuraSlots)
	for _, a := range auras {
		if a == nil {
			continue
		}
		pkt.WriteUint32(a.ID)
		pkt.WriteUint16(a.Flags)
		if a.Flags&AuraFlagIncludeAmounts != 0 {
			for _, amount := range a.Amounts {
				pkt.WriteInt32(amount)
			}
		}
	}
}

// effectiveMask widens a raw change mask with the dependency rule: a
// power-type change always carries the dependent current/max power fields.
func effectiveMask(mask uint32) uint32 {
	if mask&UpdateFlagPowerType != 0 {
		mask |= UpdateFlagCurPower | UpdateFlagMaxPower
	}
	if mask&UpdateFlagPetPowerType != 0 {
		mask |= UpdateFlagPetCurPower | UpdateFlagPetMaxPower
	}
	return mask
}

// BuildMemberStats serializes a delta update of the player's changed
// fields, gated by the pending change mask. A zero mask yields nil.
func BuildMemberStats(p *PlayerState) *wire.Packet {
	mask := effectiveMask(p.UpdateMask)
	if mask == 0 {
		return nil
	}

	pkt := wire.NewPacket(wire.OpMemberStats)
	pkt.WritePackedGUID(p.ID)
	pkt.WriteUint32(mask)
	for _, f := range statFields {
		if mask&f.flag != 0 {
			f.encode(pkt, p)
		}
	}
	return pkt
}

// BuildMemberStatsFull serializes the full snapshot variant: the maximal
// applicable mask regardless of what changed, always including an auras
// section and a pet section (zeroed placeholders when there is no pet) so
// the record shape stays constant.
func BuildMemberStatsFull(p *PlayerState) *wire.Packet {
	pkt := wire.NewPacket(wire.OpMemberStatsFull)
	pkt.WriteUint8(0)
	pkt.WritePackedGUID(p.ID)

	mask := UpdateFull
	if p.Pet == nil {
		mask &^= UpdatePet
	}
	pkt.WriteUint32(mask)

	pkt.WriteUint16(StatusOnline)
	pkt.WriteUint32(p.Stats.CurHealth)
	pkt.WriteUint32(p.Stats.MaxHealth)
	pkt.WriteUint8(p.Stats.PowerType)
	pkt.WriteUint16(p.Stats.CurPower)
	pkt.WriteUint16(p.Stats.MaxPower)
	pkt.WriteUint16(p.Stats.Level)
	pkt.WriteUint16(p.Stats.Zone)
	pkt.WriteUint16(p.Stats.PosX)
	pkt.WriteUint16(p.Stats.PosY)

	writeAuras(pkt, &p.Stats.Auras)

	if p.Pet != nil {
		pkt.WriteUint64(p.Pet.GUID)
		pkt.WriteString(p.Pet.Name)
		pkt.WriteUint16(p.Pet.ModelID)
		pkt.WriteUint32(p.Pet.CurHealth)
		pkt.WriteUint32(p.Pet.MaxHealth)
		pkt.WriteUint8(p.Pet.PowerType)
		pkt.WriteUint16(p.Pet.CurPower)
		pkt.WriteUint16(p.Pet.MaxPower)
		writeAuras(pkt, &p.Pet.Auras)
	} else {
		pkt.WriteUint8(0)
		pkt.WriteUint8(0)
		pkt.WriteUint64(0)
		pkt.WriteUint32(0)
	}

	return pkt
}

// BuildMemberStatsOffline is the minimal full-snapshot reply for an
// unknown or offline subject: only the status bit, flagged offline.
func BuildMemberStatsOffline(id uint64) *wire.Packet {
	pkt := wire.NewPacket(wire.OpMemberStatsFull)
	pkt.WriteUint8(0)
	pkt.WritePackedGUID(id)
	pkt.WriteUint32(UpdateFlagStatus)
	pkt.WriteUint16(StatusOffline)
	return pkt
}
