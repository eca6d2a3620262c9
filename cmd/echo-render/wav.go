package main

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
)

const (
	wavFormatFloat = 3
	wavHeaderSize  = 44
)

// writeWAV writes interleaved float32 frames as a 32-bit float WAV file.
func writeWAV(w io.Writer, sampleRate, channels int, interleaved []float32) error {
	if channels <= 0 {
		return fmt.Errorf("wav: %d channels", channels)
	}
	dataSize := uint32(len(interleaved) * 4)
	blockAlign := uint16(channels * 4)

	bw := bufio.NewWriter(w)
	header := []any{
		[4]byte{'R', 'I', 'F', 'F'},
		uint32(wavHeaderSize - 8 + dataSize),
		[4]byte{'W', 'A', 'V', 'E'},
		[4]byte{'f', 'm', 't', ' '},
		uint32(16),
		uint16(wavFormatFloat),
		uint16(channels),
		uint32(sampleRate),
		uint32(sampleRate) * uint32(blockAlign),
		blockAlign,
		uint16(32),
		[4]byte{'d', 'a', 't', 'a'},
		dataSize,
	}
	for _, field := range header {
		if err := binary.Write(bw, binary.LittleEndian, field); err != nil {
			return fmt.Errorf("wav: header: %w", err)
		}
	}
	if err := binary.Write(bw, binary.LittleEndian, interleaved); err != nil {
		return fmt.Errorf("wav: data: %w", err)
	}
	return bw.Flush()
}

// interleave appends frames samples of each channel to dst as L R L R ...
func interleave(dst []float32, channels [][]float32, frames int) []float32 {
	for i := 0; i < frames; i++ {
		for _, ch := range channels {
			dst = append(dst, ch[i])
		}
	}
	return dst
}
