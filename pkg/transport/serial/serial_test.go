package serial

import (
	"testing"

	"go.bug.st/serial"
)

func TestPortConfigParity(t *testing.T) {
	tests := []struct {
		name string
		cfg  PortConfig
		want serial.Parity
	}{
		{"odd", PortConfig{Parity: "odd"}, serial.OddParity},
		{"even", PortConfig{Parity: "even"}, serial.EvenParity},
		{"mark", PortConfig{Parity: "mark"}, serial.MarkParity},
		{"space", PortConfig{Parity: "space"}, serial.SpaceParity},
		{"unset defaults to none", PortConfig{}, serial.NoParity},
		{"unrecognized defaults to none", PortConfig{Parity: "bogus"}, serial.NoParity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.parity(); got != tt.want {
				t.Fatalf("parity() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPortConfigStopBits(t *testing.T) {
	tests := []struct {
		name string
		cfg  PortConfig
		want serial.StopBits
	}{
		{"1.5", PortConfig{StopBits: 1.5}, serial.OnePointFiveStopBits},
		{"2", PortConfig{StopBits: 2}, serial.TwoStopBits},
		{"1 defaults to one stop bit", PortConfig{StopBits: 1}, serial.OneStopBit},
		{"unset defaults to one stop bit", PortConfig{}, serial.OneStopBit},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cfg.stopBits(); got != tt.want {
				t.Fatalf("stopBits() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestPortConfigMode(t *testing.T) {
	cfg := DefaultPortConfig()
	mode := cfg.mode()
	if mode.BaudRate != 9600 || mode.DataBits != 8 {
		t.Fatalf("mode() = %+v, want default 9600 8N1", mode)
	}
	if mode.Parity != serial.NoParity || mode.StopBits != serial.OneStopBit {
		t.Fatalf("mode() parity/stopbits = %v/%v, want none/one", mode.Parity, mode.StopBits)
	}
}
