package l3signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicDriverFaceProvider_NoFaceDetectedIsZeroSignal(t *testing.T) {
	p := NewHeuristicDriverFaceProvider(10.0)
	sig := p.Process(Frame{Face: FaceMeasurement{Detected: false}}, 0)
	assert.Equal(t, DriverFaceSignal{}, sig)
}

func TestHeuristicDriverFaceProvider_FatigueLatchesOnSustainedClosedEyes(t *testing.T) {
	p := NewHeuristicDriverFaceProvider(10.0)
	var sig DriverFaceSignal
	for i := 0; i < 25; i++ {
		sig = p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.10, MAR: 0.1, YawRatio: 0}}, int64(i)*100)
	}
	assert.True(t, sig.EyesClosed)
	assert.True(t, sig.FatigueActive)
	assert.Greater(t, sig.FatigueConf, 0.0)
}

func TestHeuristicDriverFaceProvider_FatigueLatchesOnSustainedYawn(t *testing.T) {
	p := NewHeuristicDriverFaceProvider(10.0)
	var sig DriverFaceSignal
	for i := 0; i < 20; i++ {
		sig = p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.3, MAR: 0.8, YawRatio: 0}}, int64(i)*100)
	}
	assert.True(t, sig.FatigueActive)
}

func TestHeuristicDriverFaceProvider_NoFatigueBelowThreshold(t *testing.T) {
	p := NewHeuristicDriverFaceProvider(10.0)
	var sig DriverFaceSignal
	for i := 0; i < 3; i++ {
		sig = p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.10, MAR: 0.1, YawRatio: 0}}, int64(i)*100)
	}
	assert.False(t, sig.FatigueActive)
	assert.Equal(t, 0.0, sig.FatigueConf)
}

func TestHeuristicDriverFaceProvider_DistractionLatchesOnSustainedLookAway(t *testing.T) {
	p := NewHeuristicDriverFaceProvider(10.0)
	var sig DriverFaceSignal
	for i := 0; i < 15; i++ {
		sig = p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.3, MAR: 0.1, YawRatio: 0.5}}, int64(i)*100)
	}
	assert.True(t, sig.DistractedActive)
	assert.Greater(t, sig.DistractedConf, 0.0)
}

func TestHeuristicDriverFaceProvider_StreaksResetOnRecovery(t *testing.T) {
	p := NewHeuristicDriverFaceProvider(10.0)
	for i := 0; i < 25; i++ {
		p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.10, MAR: 0.1, YawRatio: 0}}, int64(i)*100)
	}
	sig := p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.30, MAR: 0.1, YawRatio: 0}}, 2500)
	assert.False(t, sig.EyesClosed)
	assert.False(t, sig.FatigueActive)
}

func TestHeuristicDriverFaceProvider_ResetReinitializesCounters(t *testing.T) {
	p := NewHeuristicDriverFaceProvider(10.0)
	for i := 0; i < 25; i++ {
		p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.10}}, int64(i)*100)
	}
	p.Reset(10.0)
	sig := p.Process(Frame{Face: FaceMeasurement{Detected: true, EAR: 0.10}}, 0)
	assert.False(t, sig.FatigueActive)
}
