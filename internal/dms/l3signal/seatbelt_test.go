package l3signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeuristicSeatbeltProvider_NoLinesFoundIsMissingWithLowConfidence(t *testing.T) {
	p := NewHeuristicSeatbeltProvider()
	sig := p.Process(Frame{Seatbelt: SeatbeltMeasurement{LinesFound: false}}, 0)
	assert.Equal(t, SeatbeltSignal{Missing: true, Confidence: 0.55}, sig)
}

func TestHeuristicSeatbeltProvider_FewDiagonalsIsMissingWithHigherConfidence(t *testing.T) {
	p := NewHeuristicSeatbeltProvider()
	sig := p.Process(Frame{Seatbelt: SeatbeltMeasurement{LinesFound: true, DiagonalCount: 1}}, 0)
	assert.Equal(t, SeatbeltSignal{Missing: true, Confidence: 0.65}, sig)
}

func TestHeuristicSeatbeltProvider_TwoDiagonalsIsWorn(t *testing.T) {
	p := NewHeuristicSeatbeltProvider()
	sig := p.Process(Frame{Seatbelt: SeatbeltMeasurement{LinesFound: true, DiagonalCount: 2}}, 0)
	assert.Equal(t, SeatbeltSignal{Missing: false, Confidence: 0}, sig)
}
