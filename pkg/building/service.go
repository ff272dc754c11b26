package building

import (
	"fmt"
	"strconv"
	"strings"
)

// Valid reports whether the layout can be encoded in the room id format.
func (l Layout) Valid() bool {
	return l.Code != "" && !strings.Contains(l.Code, "-") &&
		l.Floors >= 1 && l.Floors <= 99 &&
		l.RoomsPerFloor >= 1 && l.RoomsPerFloor <= 99
}

// RoomCount is the total number of rooms in the layout.
func (l Layout) RoomCount() int {
	return l.Floors * l.RoomsPerFloor
}

// RoomID encodes a 1-based floor and room index.
func (l Layout) RoomID(floor, room int) (string, error) {
	if floor < 1 || floor > l.Floors {
		return "", fmt.Errorf("%w: %d", ErrUnknownFloor, floor)
	}
	if room < 1 || room > l.RoomsPerFloor {
		return "", fmt.Errorf("%w: floor %d room %d", ErrUnknownRoom, floor, room)
	}
	return fmt.Sprintf("%s-%02d%02d", l.Code, floor, room), nil
}

// ParseRoom is the only place room ids are taken apart.
// It returns the 1-based floor and room index, or ErrUnknownRoom when the id
// is malformed or falls outside the layout.
func (l Layout) ParseRoom(id string) (floor, room int, err error) {
	prefix := l.Code + "-"
	digits, ok := strings.CutPrefix(id, prefix)
	if !ok || len(digits) != 4 {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRoom, id)
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRoom, id)
		}
	}
	floor, _ = strconv.Atoi(digits[:2])
	room, _ = strconv.Atoi(digits[2:])
	if floor < 1 || floor > l.Floors || room < 1 || room > l.RoomsPerFloor {
		return 0, 0, fmt.Errorf("%w: %q", ErrUnknownRoom, id)
	}
	return floor, room, nil
}

// Floor returns the floor number encoded in a room id.
func (l Layout) Floor(id string) (int, error) {
	floor, _, err := l.ParseRoom(id)
	return floor, err
}

// Ordinal is the zero-based position of a room in Rooms().
func (l Layout) Ordinal(id string) (int, error) {
	floor, room, err := l.ParseRoom(id)
	if err != nil {
		return 0, err
	}
	return (floor-1)*l.RoomsPerFloor + (room - 1), nil
}

// Rooms lists every room, floor by floor.
func (l Layout) Rooms() []string {
	out := make([]string, 0, l.RoomCount())
	for f := 1; f <= l.Floors; f++ {
		for r := 1; r <= l.RoomsPerFloor; r++ {
			id, _ := l.RoomID(f, r)
			out = append(out, id)
		}
	}
	return out
}

func (l Layout) FloorRooms(floor int) ([]string, error) {
	if floor < 1 || floor > l.Floors {
		return nil, fmt.Errorf("%w: %d", ErrUnknownFloor, floor)
	}
	out := make([]string, 0, l.RoomsPerFloor)
	for r := 1; r <= l.RoomsPerFloor; r++ {
		id, _ := l.RoomID(floor, r)
		out = append(out, id)
	}
	return out, nil
}

func (l Layout) FloorNumbers() []int {
	out := make([]int, l.Floors)
	for i := range out {
		out[i] = i + 1
	}
	return out
}
