package strip

import (
	"errors"
	"fmt"
	"image"
	"sync/atomic"
	"time"

	"github.com/nvlled/photocage/lib/photo"
	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

var ErrDecode = errors.New("cannot decode frame")

const (
	sessionTTL      = 30 * time.Minute
	cleanupInterval = 10 * time.Minute
)

// Decoder turns frames into drawable images once per session. Concurrent
// requests for the same frame share one decode.
type Decoder struct {
	cache   *cache.Cache
	group   singleflight.Group
	decodes atomic.Int64
}

func NewDecoder() *Decoder {
	return &Decoder{cache: cache.New(sessionTTL, cleanupInterval)}
}

func (d *Decoder) Decode(frame photo.Frame) (image.Image, error) {
	key := frame.Key()
	if img, ok := d.cache.Get(key); ok {
		return img.(image.Image), nil
	}

	val, err, _ := d.group.Do(key, func() (interface{}, error) {
		if img, ok := d.cache.Get(key); ok {
			return img, nil
		}
		img, err := frame.Decode()
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDecode, err)
		}
		d.decodes.Add(1)
		d.cache.SetDefault(key, img)
		return img, nil
	})
	if err != nil {
		return nil, err
	}

	img, ok := val.(image.Image)
	if !ok {
		return nil, fmt.Errorf("unexpected decode result %T", val)
	}
	return img, nil
}

// Decodes counts the decodes that actually ran.
func (d *Decoder) Decodes() int64 { return d.decodes.Load() }

// Flush drops every cached image, ending the session.
func (d *Decoder) Flush() { d.cache.Flush() }
