package narration

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"

	"golang.org/x/sync/singleflight"
)

// Synthesizer turns text into MP3 audio.
type Synthesizer interface {
	Speech(ctx context.Context, text string) ([]byte, error)
}

// Speaker caches synthesised lines on disk and returns the URL they are served under.
type Speaker struct {
	synth     Synthesizer
	dir       string
	urlPrefix string
	group     singleflight.Group
}

func NewSpeaker(synth Synthesizer, dir, urlPrefix string) (*Speaker, error) {
	if synth == nil {
		return nil, errors.New("narration: nil synthesizer")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("narration: audio dir: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = "/audio/"
	}
	return &Speaker{synth: synth, dir: dir, urlPrefix: urlPrefix}, nil
}

// Dir is where audio files are written.
func (s *Speaker) Dir() string { return s.dir }

// Say returns the URL of text's audio, synthesising it on a cache miss.
// Callers asking for the same text share one synthesis; cancelling ctx only stops this caller waiting.
func (s *Speaker) Say(ctx context.Context, text string) (string, error) {
	name := fileName(text)
	file := filepath.Join(s.dir, name)
	if _, err := os.Stat(file); err == nil {
		return s.url(name), nil
	}

	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(name, func() (interface{}, error) {
		if _, err := os.Stat(file); err == nil {
			return nil, nil
		}
		ctx, cancel := context.WithTimeout(shared, speechTimeout)
		defer cancel()
		audio, err := s.synth.Speech(ctx, text)
		if err != nil {
			return nil, err
		}
		tmp, err := os.CreateTemp(s.dir, name+".*.tmp")
		if err != nil {
			return nil, err
		}
		if _, err := tmp.Write(audio); err != nil {
			tmp.Close()
			os.Remove(tmp.Name())
			return nil, err
		}
		if err := tmp.Close(); err != nil {
			os.Remove(tmp.Name())
			return nil, err
		}
		return nil, os.Rename(tmp.Name(), file)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return s.url(name), nil
	}
}

func (s *Speaker) url(name string) string {
	return path.Join(s.urlPrefix, name)
}

func fileName(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:16]) + ".mp3"
}
