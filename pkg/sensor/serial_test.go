package sensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseReading(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		want    Reading
		wantErr error
	}{
		{
			name: "valid line",
			line: "152340.25,24.81,41.20,101325.00,0xb0",
			want: Reading{
				GasOhm:  152340.25,
				TempC:   24.81,
				HumPct:  41.20,
				PressPa: 101325.00,
				Status:  0xB0,
			},
		},
		{
			name: "status without 0x prefix",
			line: "1000,25,40,101325,b0",
			want: Reading{GasOhm: 1000, TempC: 25, HumPct: 40, PressPa: 101325, Status: 0xB0},
		},
		{
			name:    "no data marker",
			line:    "NODATA",
			wantErr: ErrNoData,
		},
		{
			name:    "bridge error",
			line:    "ERR,timeout",
			wantErr: ErrCommFail,
		},
		{
			name:    "wrong field count",
			line:    "1000,25,40",
			wantErr: ErrCommFail,
		},
		{
			name:    "garbage gas value",
			line:    "abc,25,40,101325,0xb0",
			wantErr: ErrCommFail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseReading(tt.line)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBus_CloseIsOneShot(t *testing.T) {
	// A bus whose port was never opened still closes cleanly, once.
	b := &Bus{port: "test"}
	assert.NoError(t, b.Close())
	assert.NoError(t, b.Close())

	_, err := b.roundTrip("I,0x76")
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestSerial_DeinitLeavesBusOpen(t *testing.T) {
	b := &Bus{port: "test"}
	d := NewSerial(b, 0x76)
	assert.Equal(t, uint8(0x76), d.Addr())

	// Deinit releases only the channel; the bus is closed once by its owner.
	assert.NoError(t, d.Deinit())
	assert.NoError(t, d.Deinit())
	assert.False(t, b.closed)
}
