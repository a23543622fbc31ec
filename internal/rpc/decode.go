// Package rpc receives pose update messages over HTTP and WebSocket and
// forwards them to the simulation as commands.
package rpc

import (
	"encoding/json"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/Faultbox/posegraph/internal/command"
	"github.com/Faultbox/posegraph/pkg/math"
)

// Version is the only accepted JSON-RPC version.
const Version = "2.0"

// MethodUpdate is the only supported method.
const MethodUpdate = "update"

// Envelope errors. A message failing with one of these is rejected whole.
var (
	ErrParse          = errors.New("invalid JSON")
	ErrVersion        = errors.New(`jsonrpc must be "2.0"`)
	ErrMethod         = errors.New(`method must be "update"`)
	ErrMissingParams  = errors.New("params missing")
	ErrInvalidElement = errors.New("invalid element")
)

type envelope struct {
	JSONRPC *string         `json:"jsonrpc"`
	Method  *string         `json:"method"`
	Params  *params         `json:"params"`
	ID      json.RawMessage `json:"id,omitempty"`
}

type params struct {
	MorphWeights    json.RawMessage `json:"morph_weights"`
	JointTransforms json.RawMessage `json:"joint_transforms"`
}

type morphWeight struct {
	TargetID *int     `json:"target_id"`
	Weight   *float32 `json:"weight"`
}

type jointTransform struct {
	JointID     *int      `json:"joint_id"`
	Translation []float32 `json:"translation"`
	Scale       []float32 `json:"scale"`
	Rotate      []float32 `json:"rotate"`
	RotateAngle []float32 `json:"rotate_angle"`
}

// Decode parses one update message into commands. Envelope problems return
// no commands. Malformed elements of the morph_weights or joint_transforms
// arrays are skipped; the remaining commands are returned together with an
// error describing every skipped element.
func Decode(msg []byte) ([]command.Command, error) {
	_, cmds, err := decode(msg)
	return cmds, err
}

func decode(msg []byte) (json.RawMessage, []command.Command, error) {
	var env envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		return nil, nil, errors.Wrap(ErrParse, err.Error())
	}
	if env.JSONRPC == nil || *env.JSONRPC != Version {
		return env.ID, nil, ErrVersion
	}
	if env.Method == nil || *env.Method != MethodUpdate {
		return env.ID, nil, ErrMethod
	}
	if env.Params == nil {
		return env.ID, nil, ErrMissingParams
	}

	switch {
	case len(env.Params.MorphWeights) > 0:
		cmds, err := decodeArray(env.Params.MorphWeights, "morph_weights", decodeMorphWeight)
		return env.ID, cmds, err
	case len(env.Params.JointTransforms) > 0:
		cmds, err := decodeArray(env.Params.JointTransforms, "joint_transforms", decodeJointTransform)
		return env.ID, cmds, err
	}
	return env.ID, nil, nil
}

func decodeArray(raw json.RawMessage, field string, elem func(json.RawMessage) (command.Command, error)) ([]command.Command, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, errors.Wrapf(ErrInvalidElement, "%s must be an array", field)
	}

	var (
		cmds []command.Command
		errs error
	)
	for i, item := range items {
		cmd, err := elem(item)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "%s[%d]", field, i))
			continue
		}
		cmds = append(cmds, cmd)
	}
	return cmds, errs
}

func decodeMorphWeight(raw json.RawMessage) (command.Command, error) {
	var mw morphWeight
	if err := json.Unmarshal(raw, &mw); err != nil {
		return nil, errors.Wrap(ErrInvalidElement, err.Error())
	}
	if mw.TargetID == nil {
		return nil, errors.Wrap(ErrInvalidElement, "target_id missing")
	}
	if mw.Weight == nil {
		return nil, errors.Wrap(ErrInvalidElement, "weight missing")
	}
	return command.MorphWeight{Target: *mw.TargetID, Weight: *mw.Weight}, nil
}

func decodeJointTransform(raw json.RawMessage) (command.Command, error) {
	var jt jointTransform
	if err := json.Unmarshal(raw, &jt); err != nil {
		return nil, errors.Wrap(ErrInvalidElement, err.Error())
	}
	if jt.JointID == nil {
		return nil, errors.Wrap(ErrInvalidElement, "joint_id missing")
	}

	cmd := command.NewJointTransform(*jt.JointID)
	if jt.Translation != nil {
		v, err := vec3(jt.Translation, "translation")
		if err != nil {
			return nil, err
		}
		cmd.Translation = v
	}
	if jt.Scale != nil {
		v, err := vec3(jt.Scale, "scale")
		if err != nil {
			return nil, err
		}
		cmd.Scale = v
	}
	switch {
	case jt.Rotate != nil:
		if len(jt.Rotate) != 4 {
			return nil, errors.Wrapf(ErrInvalidElement, "rotate needs 4 values, got %d", len(jt.Rotate))
		}
		cmd.Rotation = math.QuatFromArray([4]float32(jt.Rotate))
	case jt.RotateAngle != nil:
		deg, err := vec3(jt.RotateAngle, "rotate_angle")
		if err != nil {
			return nil, err
		}
		cmd.Rotation = eulerDegrees(deg)
	}
	return cmd, nil
}

func vec3(v []float32, field string) (math.Vec3, error) {
	if len(v) != 3 {
		return math.Vec3{}, errors.Wrapf(ErrInvalidElement, "%s needs 3 values, got %d", field, len(v))
	}
	return math.Vec3FromArray([3]float32(v)), nil
}

// eulerDegrees converts XYZ euler angles in degrees to a quaternion
// equivalent to rotating about X, then Y, then Z.
func eulerDegrees(deg math.Vec3) math.Quat {
	q := mgl32.AnglesToQuat(mgl32.DegToRad(deg.Z), mgl32.DegToRad(deg.Y), mgl32.DegToRad(deg.X), mgl32.ZYX)
	return math.Quat{X: q.V[0], Y: q.V[1], Z: q.V[2], W: q.W}
}

// response is the JSON-RPC reply for one message.
type response struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  *result         `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      json.RawMessage `json:"id"`
}

type result struct {
	Queued  int      `json:"queued"`
	Skipped []string `json:"skipped,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// JSON-RPC 2.0 error codes.
const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

func errorResponse(id json.RawMessage, err error) response {
	code := codeInvalidRequest
	switch {
	case errors.Is(err, ErrParse):
		code = codeParseError
	case errors.Is(err, ErrMethod):
		code = codeMethodNotFound
	case errors.Is(err, ErrMissingParams):
		code = codeInvalidParams
	}
	return response{JSONRPC: Version, Error: &rpcError{Code: code, Message: err.Error()}, ID: nullID(id)}
}

func resultResponse(id json.RawMessage, queued int, skipped error) response {
	res := &result{Queued: queued}
	for _, err := range multierr.Errors(skipped) {
		res.Skipped = append(res.Skipped, err.Error())
	}
	return response{JSONRPC: Version, Result: res, ID: nullID(id)}
}

func nullID(id json.RawMessage) json.RawMessage {
	if len(id) == 0 {
		return json.RawMessage("null")
	}
	return id
}

func (r response) String() string {
	if r.Error != nil {
		return fmt.Sprintf("error %d: %s", r.Error.Code, r.Error.Message)
	}
	return fmt.Sprintf("queued %d", r.Result.Queued)
}
