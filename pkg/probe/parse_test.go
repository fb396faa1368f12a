// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package probe

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePingOutput(t *testing.T) {
	tests := []struct {
		name        string
		out         string
		wantLatency *float64
		wantHops    int
	}{
		{
			name: "Linux reply",
			out: "PING 192.0.2.1 (192.0.2.1) 56(84) bytes of data.\n" +
				"64 bytes from 192.0.2.1: icmp_seq=1 ttl=54 time=23.4 ms\n",
			wantLatency: ptr(23.4),
			wantHops:    10,
		},
		{
			name:        "Windows reply with sub-millisecond latency",
			out:         "Reply from 192.0.2.1: bytes=32 time<1ms TTL=128",
			wantLatency: ptr(1.0),
			wantHops:    0,
		},
		{
			name:        "Reply TTL above 128 assumes initial 255",
			out:         "64 bytes from 192.0.2.1: icmp_seq=1 ttl=200 time=5.0 ms",
			wantLatency: ptr(5.0),
			wantHops:    55,
		},
		{
			name:     "Reply without latency token keeps hops and is not a loss",
			out:      "64 bytes from 192.0.2.1: icmp_seq=1 ttl=64",
			wantHops: 0,
		},
		{
			name:     "Reply without TTL assumes initial 64",
			out:      "some unexpected but successful output",
			wantHops: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := parsePingOutput(tt.out)

			assert.False(t, res.Loss)
			if tt.wantLatency == nil {
				assert.Nil(t, res.Latency)
			} else {
				require.NotNil(t, res.Latency)
				assert.InDelta(t, *tt.wantLatency, *res.Latency, 1e-9)
			}
			require.NotNil(t, res.Hops)
			assert.Equal(t, tt.wantHops, *res.Hops)
		})
	}
}

func TestAssumedInitialTTL(t *testing.T) {
	assert.Equal(t, 64, assumedInitialTTL(1))
	assert.Equal(t, 64, assumedInitialTTL(64))
	assert.Equal(t, 128, assumedInitialTTL(65))
	assert.Equal(t, 128, assumedInitialTTL(128))
	assert.Equal(t, 255, assumedInitialTTL(129))
	assert.Equal(t, 255, assumedInitialTTL(255))
}

func ptr(v float64) *float64 {
	return &v
}
