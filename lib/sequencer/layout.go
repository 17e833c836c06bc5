package sequencer

import "strings"

// Layout decides how many poses a strip holds.
type Layout struct {
	Name       string `json:"name"`
	FrameCount int    `json:"frameCount"`
}

const (
	MinFrames = 2
	MaxFrames = 4
)

var Layouts = []Layout{
	{Name: "4 Pose", FrameCount: 4},
	{Name: "3 Pose", FrameCount: 3},
	{Name: "2 Pose", FrameCount: 2},
}

var DefaultLayout = Layouts[2]

func (l Layout) Valid() bool {
	return l.FrameCount >= MinFrames && l.FrameCount <= MaxFrames
}

func (l Layout) String() string { return l.Name }

func LookupLayout(name string) (Layout, bool) {
	for _, l := range Layouts {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
	}
	return Layout{}, false
}

// NextLayout cycles through Layouts.
func NextLayout(l Layout) Layout {
	for i, candidate := range Layouts {
		if candidate == l {
			return Layouts[(i+1)%len(Layouts)]
		}
	}
	return Layouts[0]
}
