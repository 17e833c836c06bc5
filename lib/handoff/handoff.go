// Package handoff carries the captured frames from the capture view to the
// preview view, exactly once.
//
// The wire form is a JSON array of data-URL strings, the value historically
// stored under the "photos" session key.
package handoff

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/nvlled/photocage/lib/photo"
)

const Key = "photos"

var ErrAlreadySent = errors.New("frames were already handed off")

type Channel struct {
	ch   chan []byte
	mu   sync.Mutex
	sent bool
}

func NewChannel() *Channel {
	return &Channel{ch: make(chan []byte, 1)}
}

// Send serializes frames into the channel. A channel carries one message.
func (c *Channel) Send(frames []photo.Frame) error {
	payload, err := Encode(frames)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sent {
		return ErrAlreadySent
	}
	c.sent = true
	c.ch <- payload
	return nil
}

// Receive takes the message without blocking. ok is false when nothing was
// sent or the message was already taken.
func (c *Channel) Receive() (frames []photo.Frame, ok bool, err error) {
	select {
	case payload := <-c.ch:
		frames, err = Decode(payload)
		return frames, err == nil, err
	default:
		return nil, false, nil
	}
}

func Encode(frames []photo.Frame) ([]byte, error) {
	urls := make([]string, len(frames))
	for i, frame := range frames {
		urls[i] = frame.DataURL()
	}
	return json.Marshal(urls)
}

func Decode(payload []byte) ([]photo.Frame, error) {
	var urls []string
	if err := json.Unmarshal(payload, &urls); err != nil {
		return nil, fmt.Errorf("%v: %w", Key, err)
	}
	frames := make([]photo.Frame, 0, len(urls))
	for i, url := range urls {
		frame, err := photo.ParseDataURL(url)
		if err != nil {
			return nil, fmt.Errorf("%v[%v]: %w", Key, i, err)
		}
		frames = append(frames, frame)
	}
	return frames, nil
}

// Write and Read move the wire form through files for the headless
// commands.
func Write(w io.Writer, frames []photo.Frame) error {
	payload, err := Encode(frames)
	if err != nil {
		return err
	}
	_, err = w.Write(payload)
	return err
}

func Read(r io.Reader) ([]photo.Frame, error) {
	payload, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Decode(payload)
}
