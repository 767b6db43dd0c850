package builtin

import settings "github.com/goliatone/go-settings"

const restartNotice = "You must restart your car or your device to apply these changes."

func toggle(group, id, title, description string) settings.Descriptor {
	return settings.Descriptor{
		ID:          id,
		Kind:        settings.KindBool,
		Group:       group,
		Title:       title,
		Description: description,
	}
}

func confirmed(d settings.Descriptor) settings.Descriptor {
	d.ConfirmOn = true
	if d.ConfirmMessage == "" {
		d.ConfirmMessage = d.Title + ": " + d.Description
	}
	return d
}

func restarts(d settings.Descriptor) settings.Descriptor {
	d.RestartOnChange = true
	return d
}

func members(labels ...string) []settings.Member {
	out := make([]settings.Member, len(labels))
	for i, label := range labels {
		out[i] = settings.Member{Value: i, Label: label}
	}
	return out
}

// Descriptors returns every option in panel order.
func Descriptors() []settings.Descriptor {
	var out []settings.Descriptor
	out = append(out, general()...)
	out = append(out, controls()...)
	out = append(out, vehicles()...)
	out = append(out, visuals()...)
	return out
}

// NewCatalog builds the catalog of Descriptors.
func NewCatalog() (*settings.Catalog, error) {
	return settings.NewCatalog(Descriptors()...)
}

func general() []settings.Descriptor {
	g := GroupGeneral
	return []settings.Descriptor{
		toggle(g, QuietDrive, "Quiet Drive", "Display alerts but only play the most important warning sounds."),
		confirmed(toggle(g, EndToEndLongAlertLight, "Green Traffic Light Chime (Beta)",
			"A chime plays when the traffic light you are waiting for turns green and no vehicle is in front of you.")),
		toggle(g, EndToEndLongAlertLead, "Lead Vehicle Departure Alert", "Notify when the leading vehicle drives away."),
		toggle(g, HotspotOnBoot, "Retain hotspot/tethering state", "Retain the hotspot/tethering toggle state across reboots."),
		{
			ID:          MaxTimeOffroad,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "Max Time Offroad",
			Description: "Turn the device off after a set time once the engine is off.",
			Min:         0,
			Max:         12,
			Labels: map[int]string{
				0: "Always On", 1: "Immediate", 2: "30s", 3: "1m", 4: "3m", 5: "5m", 6: "10m",
				7: "30m", 8: "1h", 9: "3h", 10: "5h", 11: "10h", 12: "30h",
			},
		},
		{
			ID:          OnroadScreenOff,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "Driving Screen Off Timer",
			Description: "Turn off the screen or reduce brightness after driving starts.",
			Min:         -2,
			Max:         10,
			Default:     "-2",
			Unit:        "min(s)",
			Labels:      map[int]string{-2: "Always On", -1: "15s", 0: "30s"},
		},
		{
			ID:          OnroadScreenOffBrightness,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "Driving Screen Off Brightness (%)",
			Description: "Brightness used while the driving screen is off.",
			Min:         0,
			Max:         100,
			Step:        10,
			Default:     "50",
			Labels:      map[int]string{0: "Dark"},
		},
		toggle(g, OnroadScreenOffEvent, "Driving Screen Off: Non-Critical Events",
			"Wake the screen for all events instead of critical events only."),
		{
			ID:          BrightnessControl,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "Brightness Control (Global, %)",
			Description: "Manually adjust the global brightness of the screen.",
			Min:         0,
			Max:         100,
			Step:        5,
			Labels:      map[int]string{0: "Auto"},
		},
		toggle(g, ScreenRecorder, "Enable Screen Recorder", "Display a button on the onroad screen to record the screen."),
		toggle(g, DisableOnroadUploads, "Disable Onroad Uploads", "Disable uploads completely when onroad."),
		toggle(g, EnableDebugSnapshot, "Debug snapshot on screen center tap", "Store a snapshot file with the current state of some modules."),
	}
}

func controls() []settings.Descriptor {
	g := GroupControls
	return []settings.Descriptor{
		confirmed(toggle(g, EnableMads, "Enable M.A.D.S.", "Enable M.A.D.S. Disable to revert to stock engagement.")),
		confirmed(toggle(g, DisengageLateralOnBrake, "Disengage ALC On Brake Pedal",
			"Pressing the brake pedal disengages Automatic Lane Centering while M.A.D.S. is enabled.")),
		toggle(g, AccMadsCombo, "Enable ACC+MADS with RES+/SET-", "Engage both M.A.D.S. and ACC with a single press of RES+ or SET-."),
		toggle(g, MadsCruiseMain, "Toggle M.A.D.S. with Cruise Main", "Allow M.A.D.S. engagement with the Cruise Main button."),
		toggle(g, BelowSpeedPause, "Pause Lateral Below Speed w/ Blinker", "Pause lateral actuation with blinker below 30 MPH or 50 KM/H."),
		toggle(g, RoadEdge, "Block Lane Change: Road Edge Detection", "Block lane change when a road edge is detected on the signaled side."),
		toggle(g, DynamicLaneProfileToggle, "Enable Dynamic Lane Profile", "Use Dynamic Lane Profile. Disable to use Laneless only."),
		{
			ID:      DynamicLaneProfile,
			Kind:    settings.KindEnum,
			Group:   g,
			Title:   "Dynamic Lane Profile",
			Members: members("Laneful", "Laneless", "Auto"),
			Default: "2",
		},
		toggle(g, VisionCurveLaneless, "Laneless for Curves in \"Auto lane\"", "While in Auto Lane, switch to Laneless for curves."),
		toggle(g, CustomOffsets, "Custom Offsets", "Add custom offsets to Camera and Path."),
		{
			ID:          CameraOffset,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "Camera Offset (cm)",
			Description: "Bias the vehicle left or right in its lane.",
			Min:         -10,
			Max:         10,
			Default:     "0",
		},
		{
			ID:          PathOffset,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "Path Offset (cm)",
			Description: "Bias the model path left or right of the lane.",
			Min:         -10,
			Max:         10,
			Default:     "0",
		},
		{
			ID:          AutoLaneChangeTimer,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "Auto Lane Change Timer",
			Description: "Delay auto lane change after the blinker is used. No nudge is required when a timer is set.",
			Min:         0,
			Max:         5,
			Labels:      map[int]string{0: "Nudge", 1: "Nudgeless", 2: "0.5s", 3: "1s", 4: "1.5s", 5: "2s"},
		},
		toggle(g, AutoLaneChangeBsmDelay, "Auto Lane Change: Delay with Blind Spot",
			"Delay lane changes while blind spot monitoring detects an obstructing vehicle."),
		confirmed(toggle(g, GapAdjustCruise, "Enable Gap Adjust Cruise",
			"Use the Interval button on the steering wheel to adjust the cruise gap. Only available with openpilot longitudinal control.")),
		{
			ID:          GapAdjustCruiseMode,
			Kind:        settings.KindEnum,
			Group:       g,
			Title:       "Mode",
			Description: "Which buttons adjust the cruise gap.",
			Members:     members("S.W.", "UI", "S.W. + UI"),
		},
		toggle(g, EnforceTorqueLateral, "Enforce Torque Lateral Control", "Steer with Torque lateral control."),
		restarts(toggle(g, CustomTorqueLateral, "Torque Lateral Control Live Tune", "Enable live tune for Torque lateral control.")),
		{
			ID:          TorqueFriction,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "FRICTION",
			Description: "Adjust Friction for the Torque Lateral Controller.",
			Min:         0,
			Max:         50,
			Default:     "10",
			Scale:       100,
		},
		{
			ID:          TorqueMaxLatAccel,
			Kind:        settings.KindInt,
			Group:       g,
			Title:       "LAT_ACCEL_FACTOR",
			Description: "Adjust Max Lateral Acceleration for the Torque Lateral Controller.",
			Min:         1,
			Max:         500,
			Default:     "250",
			Scale:       100,
		},
		restarts(toggle(g, LiveTorque, "Torque Lateral Controller Self-Tune", "Enable self-tune for Torque lateral control.")),
		toggle(g, HandsOnWheelMonitoring, "Enable Hands on Wheel Monitoring", "Alert when the driver is not keeping hands on the steering wheel."),
		toggle(g, TurnVisionControl, "Enable Vision Based Turn Speed Control (V-TSC)", "Use vision path predictions to estimate speed through turns."),
		toggle(g, SpeedLimitControl, "Enable Speed Limit Control (SLC)", "Adapt cruise speed to road speed limits."),
		toggle(g, SpeedLimitPercOffset, "Enable Speed Limit Offset", "Set the speed limit slightly higher than the actual limit."),
		{
			ID:          SpeedLimitOffsetType,
			Kind:        settings.KindEnum,
			Group:       g,
			Title:       "Speed Limit Offset Type",
			Description: "Set speed limit higher or lower than the actual speed limit.",
			Members:     members("Default", "%", "Value"),
		},
		{
			ID:      SpeedLimitValueOffset,
			Kind:    settings.KindInt,
			Group:   g,
			Title:   "Speed Limit Value Offset",
			Min:     -30,
			Max:     30,
			Default: "0",
		},
		toggle(g, TurnSpeedControl, "Enable Map Data Turn Speed Control (M-TSC)", "Use map curvature to define speed limits for turns ahead."),
		toggle(g, ReverseAccChange, "ACC +/-: Long Press Reverse", "Swap short and long press cruise speed increments."),
		{
			ID:            OsmLocalDb,
			Kind:          settings.KindBool,
			Group:         g,
			Title:         "OSM: Use Offline Database",
			RemoveWhenOff: true,
		},
	}
}

func vehicles() []settings.Descriptor {
	g := GroupVehicles
	return []settings.Descriptor{
		{ID: CarModel, Kind: settings.KindText, Group: g, Title: "Car Model"},
		{ID: CarModelText, Kind: settings.KindText, Group: g, Title: "Selected Car"},
		confirmed(toggle(g, HkgSmoothStop, "HKG CAN: Smoother Stopping Performance (Beta)",
			"Smoother stopping behind a stopped car. Only applicable to HKG CAN platforms using openpilot longitudinal control.")),
		confirmed(toggle(g, StockLongToyota, "Enable Stock Toyota Longitudinal Control",
			"Stock Toyota longitudinal control will be used instead of taking over gas and brakes.")),
		confirmed(toggle(g, LkasToggle, "Allow M.A.D.S. toggling w/ LKAS Button (Beta)",
			"Allow M.A.D.S. engagement with the LKAS button on the steering wheel.")),
		confirmed(toggle(g, ToyotaTSS2Long, "TSS2 Longitudinal: Custom Tuning",
			"Smoother longitudinal performance for Toyota/Lexus TSS2/LSS2 cars.")),
	}
}

func visuals() []settings.Descriptor {
	g := GroupVisuals
	mapbox := toggle(g, CustomMapbox, "Enable Mapbox Navigation", "Enable built-in navigation powered by Mapbox.")
	mapbox.RebootPrompt = "\"Enable Mapbox Navigation\"\n" + restartNotice + "\nReboot now?"
	return []settings.Descriptor{
		toggle(g, BrakeLights, "Display Braking Status", "Turn the current speed red while braking."),
		toggle(g, StandStillTimer, "Display Stand Still Timer", "Display time spent at a stop."),
		toggle(g, DevUI, "Show Developer UI", "Show real-time parameters from various sources."),
		{
			ID:          DevUIInfo,
			Kind:        settings.KindEnum,
			Group:       g,
			Title:       "Developer UI List",
			Description: "Number of real-time parameters shown while driving.",
			Members:     members("5 Metrics", "10 Metrics"),
		},
		toggle(g, ButtonAutoHide, "Auto-Hide UI Buttons", "Hide driving screen buttons after a 30-second timeout."),
		toggle(g, ReverseDmCam, "Display DM Camera in Reverse Gear", "Show the driver monitoring camera in reverse gear."),
		toggle(g, ShowDebugUI, "OSM: Show debug UI elements", "Show UI elements that aid debugging."),
		mapbox,
		toggle(g, TrueVEgoUi, "Speedometer: Display True Speed", "Display the true speed from wheel speed sensors."),
		toggle(g, HideVEgoUi, "Speedometer: Hide from Onroad Screen", ""),
		{
			ID:          ChevronInfo,
			Kind:        settings.KindEnum,
			Group:       g,
			Title:       "Display Metrics above Chevron",
			Description: "Metrics shown above the lead car chevron.",
			Members:     members("OFF", "Distance", "Speed"),
		},
		toggle(g, EndToEndLongAlertUI, "Display End-to-end Longitudinal Status (Beta)", "Display an icon when the model decides to start or stop."),
		toggle(g, SidebarTemperature, "Display Temperature on Sidebar", "Display a temperature reading on the sidebar."),
		{
			ID:      SidebarTemperatureOptions,
			Kind:    settings.KindEnum,
			Group:   g,
			Title:   "Sidebar Temperature",
			Members: members("Ambient", "Memory", "CPU", "GPU", "Max"),
		},
	}
}
