package minigame

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
)

const (
	ActorSize      = 200.0
	BallSize       = 20.0
	DrinkSize      = 20.0
	StepDistance   = 30.0
	BoostFactor    = 1.5
	ActorGravity   = 0.8
	JumpImpulse    = -20.0
	BallGravity    = 0.1
	Restitution    = 0.5
	HitSpin        = 3.0
	HitCarry       = 0.1
	HitLift        = 6.0
	DrinkSpawnRate = 0.001
	BoostFrames    = 300.0
	drinkTopMargin = 100.0
)

var ErrInvalidBounds = errors.New("invalid playfield bounds")

// Rect is an axis-aligned box with its origin at the top-left corner.
type Rect struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// Overlaps reports whether both axis intervals of a and b intersect.
func Overlaps(a, b Rect) bool {
	return a.X < b.X+b.W &&
		a.X+a.W > b.X &&
		a.Y < b.Y+b.H &&
		a.Y+a.H > b.Y
}

type Body struct {
	Rect
	VX float64 `json:"vx"`
	VY float64 `json:"vy"`
}

// Input is the set of controls held during one step.
type Input struct {
	Left  bool `json:"left"`
	Right bool `json:"right"`
	Jump  bool `json:"jump"`
}

// State is a copy of the world for rendering.
type State struct {
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	Actor       Body    `json:"actor"`
	Ball        Body    `json:"ball"`
	Drink       Rect    `json:"drink"`
	DrinkActive bool    `json:"drink_active"`
	Score       int     `json:"score"`
	Boosted     bool    `json:"boosted"`
	BoostLeft   float64 `json:"boost_left"`
	Frames      float64 `json:"frames"`
}

// World is the juggling game: one actor, one ball and an occasional drink.
type World struct {
	width  float64
	height float64
	rng    *rand.Rand

	actor       Body
	ball        Body
	drink       Rect
	drinkActive bool
	score       int
	boostLeft   float64
	frames      float64
}

func New(width, height float64, rng *rand.Rand) (*World, error) {
	if width < ActorSize || height < ActorSize+drinkTopMargin {
		return nil, fmt.Errorf("%w: %.0fx%.0f, need at least %.0fx%.0f", ErrInvalidBounds, width, height, ActorSize, ActorSize+drinkTopMargin)
	}
	if rng == nil {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}

	w := &World{width: width, height: height, rng: rng}
	w.Reset()
	return w, nil
}

// Reset puts the actor on the floor with the ball floating above it.
func (w *World) Reset() {
	centerX := w.width / 2
	floor := w.floor()

	w.actor = Body{Rect: Rect{X: centerX - ActorSize/2, Y: floor, W: ActorSize, H: ActorSize}}
	w.ball = Body{Rect: Rect{X: centerX - BallSize/2, Y: floor - 100, W: BallSize, H: BallSize}, VY: -1}
	w.drink = Rect{W: DrinkSize, H: DrinkSize}
	w.drinkActive = false
	w.score = 0
	w.boostLeft = 0
	w.frames = 0
}

func (w *World) State() State {
	return State{
		Width:       w.width,
		Height:      w.height,
		Actor:       w.actor,
		Ball:        w.ball,
		Drink:       w.drink,
		DrinkActive: w.drinkActive,
		Score:       w.score,
		Boosted:     w.boostLeft > 0,
		BoostLeft:   w.boostLeft,
		Frames:      w.frames,
	}
}

func (w *World) Score() int { return w.score }

func (w *World) Grounded() bool {
	return w.actor.Y >= w.floor()
}

// Step advances the world by dt frames of 1/60s under the given input.
func (w *World) Step(in Input, dt float64) {
	if dt <= 0 {
		return
	}
	w.frames += dt

	w.applyInput(in, dt)
	w.moveActor(dt)
	w.moveBall(dt)
	w.resolveHit()
	w.updateDrink(dt)
}

func (w *World) applyInput(in Input, dt float64) {
	step := StepDistance
	if w.boostLeft > 0 {
		step *= BoostFactor
	}

	before := w.actor.X
	if in.Left && !in.Right {
		w.actor.X = math.Max(0, w.actor.X-step)
	}
	if in.Right && !in.Left {
		w.actor.X = math.Min(w.width-w.actor.W, w.actor.X+step)
	}
	w.actor.VX = (w.actor.X - before) / dt

	if in.Jump && w.Grounded() {
		w.actor.VY = JumpImpulse
	}
}

func (w *World) moveActor(dt float64) {
	w.actor.VY += ActorGravity * dt
	w.actor.Y += w.actor.VY * dt
	if floor := w.floor(); w.actor.Y >= floor {
		w.actor.Y = floor
		if w.actor.VY > 0 {
			w.actor.VY = 0
		}
	}
}

func (w *World) moveBall(dt float64) {
	b := &w.ball
	b.VY += BallGravity * dt
	b.X += b.VX * dt
	b.Y += b.VY * dt

	maxX := w.width - b.W
	if b.X <= 0 || b.X >= maxX {
		b.VX *= -Restitution
		b.X = math.Max(0, math.Min(b.X, maxX))
	}
	if b.Y <= 0 {
		b.VY *= -Restitution
		b.Y = 0
	}
	if maxY := w.height - b.H; b.Y >= maxY {
		b.VY = -math.Abs(b.VY) * Restitution
		b.Y = maxY
	}
}

func (w *World) resolveHit() {
	if !Overlaps(w.actor.Rect, w.ball.Rect) {
		return
	}

	hitAngle := (w.ball.X - w.actor.X) / w.actor.W
	w.ball.VX = hitAngle*HitSpin + w.actor.VX*HitCarry
	w.ball.VY = -math.Abs(w.ball.VY) - HitLift
	// Lift the ball clear so one contact scores once.
	w.ball.Y = w.actor.Y - w.ball.H
	w.score++
}

func (w *World) updateDrink(dt float64) {
	if !w.drinkActive {
		chance := 1 - math.Pow(1-DrinkSpawnRate, dt)
		if w.rng.Float64() < chance {
			w.drinkActive = true
			w.drink.X = w.rng.Float64() * math.Max(0, w.width-DrinkSize)
			w.drink.Y = w.rng.Float64() * math.Max(0, w.height-drinkTopMargin)
		}
	}

	if w.drinkActive && Overlaps(w.actor.Rect, w.drink) {
		w.drinkActive = false
		w.boostLeft = BoostFrames
	}

	if w.boostLeft > 0 {
		w.boostLeft = math.Max(0, w.boostLeft-dt)
	}
}

func (w *World) floor() float64 {
	return w.height - w.actor.H
}
