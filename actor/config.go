package actor

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/milk9111/slingshot/band"
	"github.com/milk9111/slingshot/controller"
	"github.com/milk9111/slingshot/launch"
	"github.com/milk9111/slingshot/prefabs"
	"github.com/milk9111/slingshot/scene"
)

// ControllerConfig converts launch tuning. Zero reach, zero impulse per
// meter and zero preview distance take the defaults; every other zero is
// taken as written. Limit nodes are only wired when the spec sets them.
func ControllerConfig(spec prefabs.LaunchSpec, startLimit, endLimit *scene.Node) (controller.Config, error) {
	def := controller.DefaultConfig()
	cfg := controller.Config{
		MaxPullDistance:           spec.MaxPullDistance,
		MinPullDistance:           spec.MinPullDistance,
		DistanceAxis:              def.DistanceAxis,
		MaxYawAtFullPull:          spec.MaxYawAtFullPull,
		MinLaunchAngleDeg:         spec.MinLaunchAngleDeg,
		MaxLaunchAngleDeg:         spec.MaxLaunchAngleDeg,
		ForceMultiplierAtMinAngle: 1,
		ForceMultiplierAtMaxAngle: 1,
		ImpulsePerMeter:           spec.ImpulsePerMeter,
		MinImpulse:                spec.MinImpulse,
		MaxImpulse:                spec.MaxImpulse,
		ClampBetweenPoles:         spec.ClampBetweenPoles,
		PoleInset:                 spec.PoleInset,
		PreviewMaxDistance:        spec.PreviewMaxDistance,
	}
	if cfg.MaxPullDistance <= 0 {
		cfg.MaxPullDistance = def.MaxPullDistance
	}
	if cfg.ImpulsePerMeter <= 0 {
		cfg.ImpulsePerMeter = def.ImpulsePerMeter
	}
	if cfg.PreviewMaxDistance <= 0 {
		cfg.PreviewMaxDistance = def.PreviewMaxDistance
	}

	mode, err := controller.ParseDistanceMode(spec.DistanceMode)
	if err != nil {
		return controller.Config{}, err
	}
	cfg.DistanceMode = mode
	if spec.DistanceAxis != nil {
		cfg.DistanceAxis = spec.DistanceAxis.Vec()
	}

	if spec.ForceMultiplierAtMinAngle != nil {
		cfg.ForceMultiplierAtMinAngle = *spec.ForceMultiplierAtMinAngle
	}
	if spec.ForceMultiplierAtMaxAngle != nil {
		cfg.ForceMultiplierAtMaxAngle = *spec.ForceMultiplierAtMaxAngle
	}

	if cfg.TensionCurve, err = prefabs.BuildCurve(spec.TensionCurve); err != nil {
		return controller.Config{}, fmt.Errorf("tension curve: %w", err)
	}
	if cfg.AngleForceCurve, err = prefabs.BuildCurve(spec.AngleForceCurve); err != nil {
		return controller.Config{}, fmt.Errorf("angle force curve: %w", err)
	}

	if spec.MovementStartLimit != nil && startLimit != nil {
		startLimit.SetPosition(spec.MovementStartLimit.Vec())
		cfg.MovementStartLimit = startLimit
	}
	if spec.MovementEndYLimit != nil && endLimit != nil {
		endLimit.SetPosition(spec.MovementEndYLimit.Vec())
		cfg.MovementEndYLimit = endLimit
	}
	if spec.CancelZone != nil {
		cfg.CancelZone = controller.CancelZone{
			Center: spec.CancelZone.Center.Vec(),
			Radius: spec.CancelZone.Radius,
		}
	}

	if err := cfg.Validate(); err != nil {
		return controller.Config{}, err
	}
	return cfg, nil
}

func BandConfig(spec prefabs.BandSpec) band.Config {
	cfg := band.DefaultConfig()
	cfg.FlipForward = spec.FlipForward
	if spec.SnapDuration != nil {
		cfg.SnapDuration = *spec.SnapDuration
	}
	if spec.SnapOvershoot != nil {
		cfg.SnapOvershoot = *spec.SnapOvershoot
	}
	if spec.SnapEasing != "" {
		cfg.SnapEasing = spec.SnapEasing
	}
	return cfg
}

func DelayedConfig(spec *prefabs.DelayedSpec) launch.DelayedConfig {
	if spec == nil {
		return launch.DelayedConfig{InheritLauncherVelocity: true}
	}
	return launch.DelayedConfig{
		Delay:                   spec.RagdollEnableDelay,
		InheritLauncherVelocity: spec.Inherit(),
	}
}

func cameraVectors(spec prefabs.CameraSpec, start mgl64.Vec3) (eye, target mgl64.Vec3, fov float64) {
	eye, target, fov = spec.Eye.Vec(), spec.Target.Vec(), spec.FovYDeg
	if eye == target {
		eye = start.Add(mgl64.Vec3{0, 4, -6})
		target = start.Add(mgl64.Vec3{0, 0, 6})
	}
	if fov <= 0 {
		fov = defaultFovDeg
	}
	return eye, target, fov
}
