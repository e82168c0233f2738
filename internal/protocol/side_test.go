package protocol

import (
	"errors"
	"testing"
)

func TestSideOpposite(t *testing.T) {
	tests := []struct {
		name string
		side Side
		want Side
	}{
		{"left becomes right", SideLeft, SideRight},
		{"right becomes left", SideRight, SideLeft},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.side.Opposite(); got != tt.want {
				t.Errorf("Opposite() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSideFromByte(t *testing.T) {
	tests := []struct {
		name    string
		b       uint8
		want    Side
		wantErr bool
	}{
		{"zero is left", 0, SideLeft, false},
		{"one is right", 1, SideRight, false},
		{"two is a violation", 2, 0, true},
		{"255 is a violation", 255, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SideFromByte(tt.b)
			if tt.wantErr {
				if err == nil || !errors.Is(err, ErrProtocolViolation) {
					t.Fatalf("SideFromByte(%d) error = %v, want ErrProtocolViolation", tt.b, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("SideFromByte(%d) unexpected error: %v", tt.b, err)
			}
			if got != tt.want {
				t.Errorf("SideFromByte(%d) = %v, want %v", tt.b, got, tt.want)
			}
		})
	}
}
