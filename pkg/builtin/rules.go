package builtin

import settings "github.com/goliatone/go-settings"

// ParkedOnlyOptions can only be changed while the vehicle is parked.
var ParkedOnlyOptions = []string{
	EnableMads, DisengageLateralOnBrake, AccMadsCombo, MadsCruiseMain, BelowSpeedPause,
	EnforceTorqueLateral, CustomTorqueLateral, LiveTorque, GapAdjustCruise,
	HkgSmoothStop, ToyotaTSS2Long, CustomMapbox,
}

// Rules returns the rule table in evaluation order. Order matters: the
// exclusion between the torque tunes runs before the master cascade so that
// switching the master off clears both tunes in the same resolution, and the
// speed limit value offset is gated by its type before the cascades above it
// can hide it.
func Rules() *settings.RuleSet {
	return settings.NewRuleSet(
		// general
		settings.ShowWhen("OnroadScreenOff != -2", OnroadScreenOffBrightness, OnroadScreenOffEvent),

		// controls
		settings.Cascade(EnableMads, DisengageLateralOnBrake, AccMadsCombo, MadsCruiseMain),
		settings.Cascade(DynamicLaneProfileToggle, DynamicLaneProfile, VisionCurveLaneless),
		settings.Cascade(CustomOffsets, CameraOffset, PathOffset),
		settings.Cascade(GapAdjustCruise, GapAdjustCruiseMode),
		settings.ShowWhen("AutoLaneChangeTimer != 0", AutoLaneChangeBsmDelay),

		// torque
		settings.Exclusive(CustomTorqueLateral, LiveTorque),
		settings.DisallowWhen(settings.CapabilityAngleOnly, EnforceTorqueLateral),
		settings.Cascade(EnforceTorqueLateral, CustomTorqueLateral, LiveTorque).ClearWhenHidden(),
		settings.Cascade(CustomTorqueLateral, TorqueFriction, TorqueMaxLatAccel),

		// speed limit control
		settings.ShowWhen("SpeedLimitOffsetType != 0", SpeedLimitValueOffset),
		settings.Cascade(SpeedLimitControl, SpeedLimitPercOffset),
		settings.Cascade(SpeedLimitPercOffset, SpeedLimitOffsetType, SpeedLimitValueOffset),

		// visuals
		settings.Cascade(DevUI, DevUIInfo),
		settings.Cascade(SidebarTemperature, SidebarTemperatureOptions),

		settings.ParkedOnly(ParkedOnlyOptions...),
	)
}

// NewResolver binds Rules to a fresh catalog.
func NewResolver(opts ...settings.ResolverOption) (*settings.Resolver, error) {
	catalog, err := NewCatalog()
	if err != nil {
		return nil, err
	}
	return settings.NewResolver(catalog, Rules(), opts...)
}
