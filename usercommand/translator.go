package usercommand

import (
	"go.viam.com/usercommand/input"
	"go.viam.com/usercommand/logging"
)

// confirmAnswer is the only answer that accepts a confirmation request.
const confirmAnswer = 'y'

// Options configure a Translator. Zero values take the package defaults.
type Options struct {
	// Initial is the command the translator starts from; nil means DefaultPendingCommand.
	Initial *PendingCommand

	LinearStep   float64
	AngularStep  float64
	DurationStep float64

	// TerrainCount is the size of the terrain enumeration. Cycling stops one short of the last
	// terrain, so the selectable ids are [0, TerrainCount-1).
	TerrainCount int
	MaxGaits     int
}

func (opts Options) withDefaults() Options {
	if opts.LinearStep == 0 {
		opts.LinearStep = DefaultLinearStep
	}
	if opts.AngularStep == 0 {
		opts.AngularStep = DefaultAngularStep
	}
	if opts.DurationStep == 0 {
		opts.DurationStep = DefaultDurationStep
	}
	if opts.TerrainCount <= 0 {
		opts.TerrainCount = int(TerrainCount)
	}
	if opts.MaxGaits <= 0 {
		opts.MaxGaits = DefaultMaxGaits
	}
	return opts
}

// ConfirmationControls lists the controls whose press asks for a confirmation.
func ConfirmationControls() []input.Control {
	return []input.Control{input.KeyP}
}

// A ConfirmationRequest asks the operator to confirm sending the optimized trajectory to the
// robot. The answer goes back through Translator.Confirm along with the token.
type ConfirmationRequest struct {
	Token  uint64
	Prompt string
}

// Result describes what Apply did with a key.
type Result struct {
	// Recognized is false for keys without a binding; those leave the state untouched.
	Recognized bool
	// Confirmation is set when the key needs an answer before it takes effect.
	Confirmation *ConfirmationRequest
}

// Translator applies key presses to a PendingCommand. It is not safe for concurrent use; a single
// goroutine is expected to own it.
type Translator struct {
	opts   Options
	state  PendingCommand
	logger logging.Logger

	lastToken   uint64
	outstanding uint64
}

// NewTranslator returns a Translator starting from opts.Initial.
func NewTranslator(opts Options, logger logging.Logger) *Translator {
	opts = opts.withDefaults()
	state := DefaultPendingCommand()
	if opts.Initial != nil {
		state = *opts.Initial
	}
	tr := &Translator{opts: opts, logger: logger}

	terrainBound, gaitBound := tr.terrainBound(), opts.MaxGaits
	if wrapped := wrapIndex(state.TerrainID, terrainBound); wrapped != state.TerrainID {
		logger.Warnw("initial terrain out of range, wrapping", "terrain_id", state.TerrainID, "wrapped", wrapped)
		state.TerrainID = wrapped
	}
	if wrapped := wrapIndex(state.GaitID, gaitBound); wrapped != state.GaitID {
		logger.Warnw("initial gait out of range, wrapping", "gait_id", state.GaitID, "wrapped", wrapped)
		state.GaitID = wrapped
	}
	tr.state = state
	return tr
}

// State returns a copy of the live command.
func (tr *Translator) State() PendingCommand {
	return tr.state
}

// Apply mutates the command according to the key. Keys without a binding are ignored.
func (tr *Translator) Apply(control input.Control) Result {
	lin, ang := tr.opts.LinearStep, tr.opts.AngularStep
	st := &tr.state

	switch control {
	// goal position; the robot frame has x pointing left and y pointing down the screen
	case input.KeyRight:
		st.GoalPosition.X -= lin
		tr.logPosition()
	case input.KeyLeft:
		st.GoalPosition.X += lin
		tr.logPosition()
	case input.KeyDown:
		st.GoalPosition.Y += lin
		tr.logPosition()
	case input.KeyUp:
		st.GoalPosition.Y -= lin
		tr.logPosition()
	case input.KeyPageUp:
		st.GoalPosition.Z += 0.5 * lin
		tr.logPosition()
	case input.KeyPageDown:
		st.GoalPosition.Z -= 0.5 * lin
		tr.logPosition()

	// goal orientation
	case input.KeyKP4:
		st.GoalOrientation.Roll -= ang
		tr.logOrientation()
	case input.KeyKP6:
		st.GoalOrientation.Roll += ang
		tr.logOrientation()
	case input.KeyKP8:
		st.GoalOrientation.Pitch += ang
		tr.logOrientation()
	case input.KeyKP2:
		st.GoalOrientation.Pitch -= ang
		tr.logOrientation()
	case input.KeyKP1:
		st.GoalOrientation.Yaw += ang
		tr.logOrientation()
	case input.KeyKP9:
		st.GoalOrientation.Yaw -= ang
		tr.logOrientation()

	case input.Key1:
		st.TerrainID = advanceCircular(st.TerrainID, tr.terrainBound())
		tr.logger.Infow("switched terrain", "terrain_id", st.TerrainID, "terrain", TerrainID(st.TerrainID).String())
	case input.KeyG:
		st.GaitID = advanceCircular(st.GaitID, tr.opts.MaxGaits)
		tr.logger.Infow("switched gait combo", "gait_id", st.GaitID)

	// no clamping, the planner validates durations
	case input.KeyKPPlus:
		st.TotalDuration += tr.opts.DurationStep
		tr.logger.Infow("total duration increased", "total_duration", st.TotalDuration)
	case input.KeyKPMinus:
		st.TotalDuration -= tr.opts.DurationStep
		tr.logger.Infow("total duration decreased", "total_duration", st.TotalDuration)

	case input.KeyO:
		st.Optimize = true
		tr.logger.Info("optimize motion request sent")
	case input.KeyP:
		return Result{Recognized: true, Confirmation: tr.requestConfirmation()}
	case input.KeyS:
		st.UseAlternateSolver = !st.UseAlternateSolver
		tr.logger.Infow("toggled NLP solver type", "use_alternate_solver", st.UseAlternateSolver)
	case input.KeyR:
		st.Replay = true
		tr.logger.Info("replaying already optimized trajectory")

	default:
		tr.logger.Debugw("ignoring unbound key", "control", control)
		return Result{}
	}
	return Result{Recognized: true}
}

func (tr *Translator) requestConfirmation() *ConfirmationRequest {
	if tr.outstanding != 0 {
		tr.logger.Debugw("superseding unanswered confirmation", "token", tr.outstanding)
	}
	tr.lastToken++
	tr.outstanding = tr.lastToken
	tr.logger.Warn("ATTENTION: are you sure you want to send this to the robot?")
	return &ConfirmationRequest{
		Token:  tr.outstanding,
		Prompt: "Press y and Enter to send the optimized trajectory to the robot...",
	}
}

// Confirm answers the confirmation request with the given token. Only 'y' accepts and sets the
// publish trajectory request; any other answer aborts. Answers to superseded or already answered
// requests are ignored. It reports whether the request was accepted.
func (tr *Translator) Confirm(token uint64, answer rune) bool {
	if token == 0 || token != tr.outstanding {
		tr.logger.Debugw("ignoring answer to stale confirmation", "token", token, "outstanding", tr.outstanding)
		return false
	}
	tr.outstanding = 0
	if answer != confirmAnswer {
		tr.logger.Info("aborted")
		return false
	}
	tr.state.PublishTrajectory = true
	tr.logger.Info("publish optimized trajectory request sent")
	return true
}

// Pending reports the token of the unanswered confirmation request, if any.
func (tr *Translator) Pending() (uint64, bool) {
	return tr.outstanding, tr.outstanding != 0
}

// Flush snapshots the command and clears its one-shot requests.
func (tr *Translator) Flush() UserCommand {
	return tr.state.Take()
}

// Handle applies a key and flushes, the unit of work for one key event.
func (tr *Translator) Handle(control input.Control) (UserCommand, Result) {
	res := tr.Apply(control)
	return tr.Flush(), res
}

// Answer confirms and flushes, the unit of work for one confirmation answer.
func (tr *Translator) Answer(token uint64, answer rune) UserCommand {
	tr.Confirm(token, answer)
	return tr.Flush()
}

func (tr *Translator) terrainBound() int {
	return tr.opts.TerrainCount - 1
}

func (tr *Translator) logPosition() {
	pos := tr.state.GoalPosition
	tr.logger.Infow("goal position set", "x", pos.X, "y", pos.Y, "z", pos.Z)
}

func (tr *Translator) logOrientation() {
	ori := tr.state.GoalOrientation
	q := ori.Quaternion()
	tr.logger.Infow("goal orientation set",
		"roll", ori.Roll, "pitch", ori.Pitch, "yaw", ori.Yaw,
		"quaternion", []float64{q.Real, q.Imag, q.Jmag, q.Kmag})
}

// advanceCircular steps an index through [0, bound), wrapping to 0.
func advanceCircular(curr, bound int) int {
	if bound <= 0 {
		return 0
	}
	return wrapIndex(curr+1, bound)
}

func wrapIndex(idx, bound int) int {
	if bound <= 0 {
		return 0
	}
	return ((idx % bound) + bound) % bound
}
