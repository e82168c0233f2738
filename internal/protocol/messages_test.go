package protocol

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
)

func TestDecodeHelloRoundTrip(t *testing.T) {
	want := Hello{ProtoVersion: 3, ID: "abc12345", GameMode: uint8(GameModeMatchedRemote1v1)}
	data, err := cbor.Marshal(want)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	got, err := DecodeHello(data)
	if err != nil {
		t.Fatalf("DecodeHello: %v", err)
	}
	if got != want {
		t.Errorf("DecodeHello round trip = %+v, want %+v", got, want)
	}
}

func TestDecodeHelloInvalidCBOR(t *testing.T) {
	_, err := DecodeHello([]byte{0xff, 0xff})
	if !errors.Is(err, ErrParsingFailed) {
		t.Fatalf("expected ErrParsingFailed, got %v", err)
	}
}

func TestDecodeInputMode0(t *testing.T) {
	tests := []struct {
		name    string
		delta   int8
		wantErr bool
	}{
		{"negative one", -1, false},
		{"zero", 0, false},
		{"positive one", 1, false},
		{"two is out of range", 2, true},
		{"negative two is out of range", -2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := cbor.Marshal(InputMode0{Delta: tt.delta})
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			got, err := DecodeInputMode0(data)
			if tt.wantErr {
				if !errors.Is(err, ErrProtocolViolation) {
					t.Fatalf("DecodeInputMode0(%d) error = %v, want ErrProtocolViolation", tt.delta, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("DecodeInputMode0(%d) unexpected error: %v", tt.delta, err)
			}
			if got != tt.delta {
				t.Errorf("DecodeInputMode0(%d) = %d", tt.delta, got)
			}
		})
	}
}

func TestDecodeInputMode1(t *testing.T) {
	data, err := cbor.Marshal(InputMode1{LeftMovement: -1, RightMovement: 1})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	left, right, err := DecodeInputMode1(data)
	if err != nil {
		t.Fatalf("DecodeInputMode1: %v", err)
	}
	if left != -1 || right != 1 {
		t.Errorf("DecodeInputMode1 = (%d, %d), want (-1, 1)", left, right)
	}

	badData, err := cbor.Marshal(InputMode1{LeftMovement: 5, RightMovement: 0})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if _, _, err := DecodeInputMode1(badData); !errors.Is(err, ErrProtocolViolation) {
		t.Fatalf("DecodeInputMode1 with out-of-range value error = %v, want ErrProtocolViolation", err)
	}
}

func TestEncodeMessagesCarryMsgID(t *testing.T) {
	tests := []struct {
		name     string
		data     []byte
		wantID   uint8
		decodeAs func([]byte) (uint8, error)
	}{
		{
			name:   "position update",
			data:   EncodePositionUpdate(0.1, 0.2, 0.3, 0.4),
			wantID: msgIDPositionUpdate,
			decodeAs: func(b []byte) (uint8, error) {
				var m PositionUpdate
				return m.MsgID, cbor.Unmarshal(b, &m)
			},
		},
		{
			name:   "point scored",
			data:   EncodePointScored(SideRight, 0.1, 0.2, 0.3, 0.4),
			wantID: msgIDPointScored,
			decodeAs: func(b []byte) (uint8, error) {
				var m PointScored
				return m.MsgID, cbor.Unmarshal(b, &m)
			},
		},
		{
			name:   "game completed",
			data:   EncodeGameCompleted(SideLeft),
			wantID: msgIDGameCompleted,
			decodeAs: func(b []byte) (uint8, error) {
				var m GameCompleted
				return m.MsgID, cbor.Unmarshal(b, &m)
			},
		},
		{
			name:   "game aborted",
			data:   EncodeGameAborted(),
			wantID: msgIDGameAborted,
			decodeAs: func(b []byte) (uint8, error) {
				var m GameAborted
				return m.MsgID, cbor.Unmarshal(b, &m)
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotID, err := tt.decodeAs(tt.data)
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if gotID != tt.wantID {
				t.Errorf("msg id = %d, want %d", gotID, tt.wantID)
			}
		})
	}
}

func TestEncodeGameMode0StartRoundTrip(t *testing.T) {
	data := EncodeGameMode0Start("opponent", SideRight, 123456)
	var got GameMode0Start
	if err := cbor.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if got.EnemyUsername != "opponent" || got.Side != uint8(SideRight) || got.StartingTimeMS != 123456 {
		t.Errorf("round trip = %+v", got)
	}
}
