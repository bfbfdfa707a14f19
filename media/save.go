package media

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	af "github.com/agentcookbook/gemini-agents/agentframework"
)

// DefaultSampleRate is the rate of Gemini's speech output.
const DefaultSampleRate = 24000

// SaveImage writes a generated image to path.
func SaveImage(img *af.DataContent, path string) error {
	if img == nil || len(img.Data) == 0 {
		return fmt.Errorf("no image data")
	}
	return writeFile(path, img.Data)
}

// SaveAudio writes generated audio to path. Raw PCM (audio/L16 or
// audio/pcm) is wrapped in a WAV header first.
func SaveAudio(audio *af.DataContent, path string) error {
	if audio == nil || len(audio.Data) == 0 {
		return fmt.Errorf("no audio data")
	}
	if rate, ok := PCMRate(audio.MediaType); ok {
		return WriteWAV(path, audio.Data, rate, 1, 16)
	}
	return writeFile(path, audio.Data)
}

// PCMRate reports whether mediaType is raw PCM and its sample rate, such
// as 24000 for "audio/L16;codec=pcm;rate=24000".
func PCMRate(mediaType string) (int, bool) {
	lower := strings.ToLower(mediaType)
	if !strings.HasPrefix(lower, "audio/l16") && !strings.HasPrefix(lower, "audio/pcm") {
		return 0, false
	}
	for _, p := range strings.Split(lower, ";") {
		if v, ok := strings.CutPrefix(strings.TrimSpace(p), "rate="); ok {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n, true
			}
		}
	}
	return DefaultSampleRate, true
}

// WriteWAV writes little-endian PCM samples as a RIFF/WAVE file.
func WriteWAV(path string, pcm []byte, sampleRate, channels, bitsPerSample int) error {
	var b bytes.Buffer
	blockAlign := channels * bitsPerSample / 8
	le := binary.LittleEndian

	b.WriteString("RIFF")
	binary.Write(&b, le, uint32(36+len(pcm)))
	b.WriteString("WAVE")
	b.WriteString("fmt ")
	binary.Write(&b, le, uint32(16))
	binary.Write(&b, le, uint16(1)) // PCM
	binary.Write(&b, le, uint16(channels))
	binary.Write(&b, le, uint32(sampleRate))
	binary.Write(&b, le, uint32(sampleRate*blockAlign))
	binary.Write(&b, le, uint16(blockAlign))
	binary.Write(&b, le, uint16(bitsPerSample))
	b.WriteString("data")
	binary.Write(&b, le, uint32(len(pcm)))
	b.Write(pcm)

	return writeFile(path, b.Bytes())
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
