package building

import "errors"

var (
	ErrUnknownRoom  = errors.New("unknown room")
	ErrUnknownFloor = errors.New("unknown floor")
)

// Layout describes a building as a grid of floors and rooms.
// Room ids are encoded as `<code>-<floor:2 digits><room:2 digits>`.
type Layout struct {
	Code          string `json:"code"`
	Floors        int    `json:"floors"`
	RoomsPerFloor int    `json:"rooms_per_floor"`
}

// Default is the FUB building: 10 floors with 8 rooms each.
var Default = Layout{
	Code:          "FUB",
	Floors:        10,
	RoomsPerFloor: 8,
}
