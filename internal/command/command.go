// Package command carries pose mutations from external controllers to the
// simulation goroutine that owns the scene graph.
package command

import (
	"fmt"

	"github.com/Faultbox/posegraph/pkg/math"
)

// Command is a decoded pose mutation: MorphWeight or JointTransform.
type Command interface {
	fmt.Stringer
	command()
}

// MorphWeight sets one blend weight of the morph target node.
type MorphWeight struct {
	Target int
	Weight float32
}

// JointTransform replaces the pose of one joint of the flat bone list.
type JointTransform struct {
	Joint       int
	Translation math.Vec3
	Rotation    math.Quat
	Scale       math.Vec3
}

// NewJointTransform returns a JointTransform holding the neutral pose.
func NewJointTransform(joint int) JointTransform {
	return JointTransform{
		Joint:    joint,
		Rotation: math.QuatIdentity(),
		Scale:    math.Vec3One(),
	}
}

func (MorphWeight) command()    {}
func (JointTransform) command() {}

func (c MorphWeight) String() string {
	return fmt.Sprintf("morph_weight[%d]=%g", c.Target, c.Weight)
}

func (c JointTransform) String() string {
	return fmt.Sprintf("joint_transform[%d] t=%v r=%v s=%v", c.Joint, c.Translation, c.Rotation, c.Scale)
}
