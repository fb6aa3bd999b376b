package core

import (
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
)

// Serializers for persisted catalog types. Timestamps are stored as Unix
// microseconds.

var IDMUS = idMUS{}

type idMUS struct{}

func (s idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (s idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	tmp, n, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ID(tmp)
	return
}

func (s idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (s idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

var ProgramKindMUS = programKindMUS{}

type programKindMUS struct{}

func (s programKindMUS) Marshal(v ProgramKind, bs []byte) (n int) {
	return varint.Int64.Marshal(int64(v), bs)
}

func (s programKindMUS) Unmarshal(bs []byte) (v ProgramKind, n int, err error) {
	tmp, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = ProgramKind(tmp)
	return
}

func (s programKindMUS) Size(v ProgramKind) (size int) {
	return varint.Int64.Size(int64(v))
}

func (s programKindMUS) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

var timeMicroMUS = timeMicro{}

type timeMicro struct{}

func (s timeMicro) Marshal(v time.Time, bs []byte) (n int) {
	return varint.Int64.Marshal(v.UnixMicro(), bs)
}

func (s timeMicro) Unmarshal(bs []byte) (v time.Time, n int, err error) {
	tmp, n, err := varint.Int64.Unmarshal(bs)
	if err != nil {
		return
	}
	v = time.UnixMicro(tmp).UTC()
	return
}

func (s timeMicro) Size(v time.Time) (size int) {
	return varint.Int64.Size(v.UnixMicro())
}

func (s timeMicro) Skip(bs []byte) (n int, err error) {
	return varint.Int64.Skip(bs)
}

var ProgramEntryMUS = programEntryMUS{}

type programEntryMUS struct{}

func (s programEntryMUS) Marshal(v ProgramEntry, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += ord.String.Marshal(v.Path, bs[n:])
	n += ProgramKindMUS.Marshal(v.Kind, bs[n:])
	n += ord.Bool.Marshal(v.Enabled, bs[n:])
	return n + timeMicroMUS.Marshal(v.IndexedAt, bs[n:])
}

func (s programEntryMUS) Unmarshal(bs []byte) (v ProgramEntry, n int, err error) {
	v.Id, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Name, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Path, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Kind, n1, err = ProgramKindMUS.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Enabled, n1, err = ord.Bool.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.IndexedAt, n1, err = timeMicroMUS.Unmarshal(bs[n:])
	n += n1
	return
}

func (s programEntryMUS) Size(v ProgramEntry) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += ord.String.Size(v.Path)
	size += ProgramKindMUS.Size(v.Kind)
	size += ord.Bool.Size(v.Enabled)
	return size + timeMicroMUS.Size(v.IndexedAt)
}

func (s programEntryMUS) Skip(bs []byte) (n int, err error) {
	n, err = IDMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ProgramKindMUS.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.Bool.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = timeMicroMUS.Skip(bs[n:])
	n += n1
	return
}

var CheckpointMUS = checkpointMUS{}

type checkpointMUS struct{}

func (s checkpointMUS) Marshal(v Checkpoint, bs []byte) (n int) {
	n = timeMicroMUS.Marshal(v.LastIndexTime, bs)
	return n + varint.Int64.Marshal(int64(v.EntryCount), bs[n:])
}

func (s checkpointMUS) Unmarshal(bs []byte) (v Checkpoint, n int, err error) {
	v.LastIndexTime, n, err = timeMicroMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var (
		n1  int
		tmp int64
	)
	tmp, n1, err = varint.Int64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.EntryCount = int(tmp)
	return
}

func (s checkpointMUS) Size(v Checkpoint) (size int) {
	return timeMicroMUS.Size(v.LastIndexTime) + varint.Int64.Size(int64(v.EntryCount))
}

func (s checkpointMUS) Skip(bs []byte) (n int, err error) {
	n, err = timeMicroMUS.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Int64.Skip(bs[n:])
	n += n1
	return
}
