package game

import "math/rand/v2"

// BoardSticker is a sticker placed on the play field. Coordinates are
// percentages of the viewport so clients of any size can render them.
type BoardSticker struct {
	Sticker  Sticker `json:"sticker"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Rotation float64 `json:"rotation"`
	Scale    float64 `json:"scale"`
}

const placementAttempts = 50

// LayoutBoard assigns every sticker a random position, rotation, and size
// class, avoiding overlaps where it can. Placement gives up on collision
// avoidance after a bounded number of attempts per sticker, matching the
// best-effort behavior players see on a crowded board.
func LayoutBoard(stickers []Sticker) []BoardSticker {
	board := make([]BoardSticker, 0, len(stickers))
	for _, st := range stickers {
		b := BoardSticker{
			Sticker:  st,
			Rotation: rand.Float64() * 360,
			Scale:    randomScale(),
		}
		b.X, b.Y = findSpot(board, b.Scale)
		board = append(board, b)
	}

	rand.Shuffle(len(board), func(i, j int) {
		board[i], board[j] = board[j], board[i]
	})
	return board
}

// ShuffleBoard re-randomizes placement of every sticker in place,
// including already-found ones. Targets, scores, and timers are untouched.
func ShuffleBoard(board []BoardSticker) {
	placed := make([]BoardSticker, 0, len(board))
	for i := range board {
		board[i].X, board[i].Y = findSpot(placed, board[i].Scale)
		board[i].Rotation = rand.Float64() * 360
		placed = append(placed, board[i])
	}
}

// randomScale draws a size class: 30% small, 40% medium, 30% large.
func randomScale() float64 {
	switch c := rand.Float64(); {
	case c < 0.3:
		return 0.4 + rand.Float64()*0.3
	case c < 0.7:
		return 0.7 + rand.Float64()*0.4
	default:
		return 1.1 + rand.Float64()*0.5
	}
}

func findSpot(placed []BoardSticker, scale float64) (float64, float64) {
	var x, y float64
	for attempt := 0; attempt < placementAttempts; attempt++ {
		x = rand.Float64()*80 + 5
		y = rand.Float64()*80 + 5
		if !collides(placed, x, y, scale) {
			break
		}
	}
	return x, y
}

func collides(placed []BoardSticker, x, y, scale float64) bool {
	for _, p := range placed {
		// Percent-space distance check with a margin scaled by both sizes.
		minDist := (scale+p.Scale)*6 + 3
		dx := x - p.X
		dy := y - p.Y
		if dx*dx+dy*dy < minDist*minDist {
			return true
		}
	}
	return false
}
