package stepform

import (
	"encoding/json"
	"fmt"
	"mime/multipart"
	"os"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// snapshotVersion is bumped when the persisted layout changes incompatibly.
const snapshotVersion = 1

// Snapshot is the durable form of an in-progress wizard.
type Snapshot struct {
	Version        int       `json:"version" msgpack:"version"`
	ID             string    `json:"id" msgpack:"id"` // controller instance that wrote it
	SavedAt        time.Time `json:"saved_at" msgpack:"saved_at"`
	FormData       Data      `json:"form_data" msgpack:"form_data"`
	ActiveStep     int       `json:"active_step" msgpack:"active_step"`
	CompletedSteps []int     `json:"completed_steps" msgpack:"completed_steps"`
}

// File is implemented by upload handles. Values implementing it never reach
// durable storage: they are dropped before every write and lost across a resume.
type File interface {
	Name() string
	Size() int64
}

// IsFile reports whether v is a binary file handle.
func IsFile(v any) bool {
	switch v.(type) {
	case File, *os.File, *multipart.FileHeader, []*multipart.FileHeader:
		return true
	}
	return false
}

// StripFiles returns a copy of d without file-valued entries.
func StripFiles(d Data) Data {
	out := make(Data, len(d))
	for k, v := range d {
		if IsFile(v) {
			continue
		}
		out[k] = v
	}
	return out
}

// Codec turns snapshots into bytes and back.
type Codec interface {
	Name() string
	Encode(s Snapshot) ([]byte, error)
	Decode(b []byte) (Snapshot, error)
}

// JSONCodec stores snapshots as JSON. Numbers come back as float64.
type JSONCodec struct{}

func (JSONCodec) Name() string { return "json" }

func (JSONCodec) Encode(s Snapshot) ([]byte, error) {
	return json.Marshal(s)
}

func (JSONCodec) Decode(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding json snapshot: %w", err)
	}
	return s, nil
}

// MsgPackCodec stores snapshots as MessagePack, keeping integer and
// binary values intact and the payload small.
type MsgPackCodec struct{}

func (MsgPackCodec) Name() string { return "msgpack" }

func (MsgPackCodec) Encode(s Snapshot) ([]byte, error) {
	return msgpack.Marshal(s)
}

func (MsgPackCodec) Decode(b []byte) (Snapshot, error) {
	var s Snapshot
	if err := msgpack.Unmarshal(b, &s); err != nil {
		return Snapshot{}, fmt.Errorf("decoding msgpack snapshot: %w", err)
	}
	return s, nil
}

// CodecByName returns the codec registered under name.
func CodecByName(name string) (Codec, error) {
	switch name {
	case "", "json":
		return JSONCodec{}, nil
	case "msgpack":
		return MsgPackCodec{}, nil
	default:
		return nil, fmt.Errorf("unknown snapshot codec %q", name)
	}
}
