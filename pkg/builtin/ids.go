// Package builtin declares the concrete driver-assistance option catalog and
// its dependency rules.
package builtin

// Groups.
const (
	GroupGeneral  = "General"
	GroupControls = "Controls"
	GroupVehicles = "Vehicles"
	GroupVisuals  = "Visuals"
)

// General.
const (
	QuietDrive                = "QuietDrive"
	EndToEndLongAlertLight    = "EndToEndLongAlertLight"
	EndToEndLongAlertLead     = "EndToEndLongAlertLead"
	HotspotOnBoot             = "HotspotOnBoot"
	MaxTimeOffroad            = "MaxTimeOffroad"
	OnroadScreenOff           = "OnroadScreenOff"
	OnroadScreenOffBrightness = "OnroadScreenOffBrightness"
	OnroadScreenOffEvent      = "OnroadScreenOffEvent"
	BrightnessControl         = "BrightnessControl"
	ScreenRecorder            = "ScreenRecorder"
	DisableOnroadUploads      = "DisableOnroadUploads"
	EnableDebugSnapshot       = "EnableDebugSnapshot"
)

// Controls.
const (
	EnableMads               = "EnableMads"
	DisengageLateralOnBrake  = "DisengageLateralOnBrake"
	AccMadsCombo             = "AccMadsCombo"
	MadsCruiseMain           = "MadsCruiseMain"
	BelowSpeedPause          = "BelowSpeedPause"
	RoadEdge                 = "RoadEdge"
	DynamicLaneProfileToggle = "DynamicLaneProfileToggle"
	DynamicLaneProfile       = "DynamicLaneProfile"
	VisionCurveLaneless      = "VisionCurveLaneless"
	CustomOffsets            = "CustomOffsets"
	CameraOffset             = "CameraOffset"
	PathOffset               = "PathOffset"
	AutoLaneChangeTimer      = "AutoLaneChangeTimer"
	AutoLaneChangeBsmDelay   = "AutoLaneChangeBsmDelay"
	GapAdjustCruise          = "GapAdjustCruise"
	GapAdjustCruiseMode      = "GapAdjustCruiseMode"
	EnforceTorqueLateral     = "EnforceTorqueLateral"
	CustomTorqueLateral      = "CustomTorqueLateral"
	TorqueFriction           = "TorqueFriction"
	TorqueMaxLatAccel        = "TorqueMaxLatAccel"
	LiveTorque               = "LiveTorque"
	HandsOnWheelMonitoring   = "HandsOnWheelMonitoring"
	TurnVisionControl        = "TurnVisionControl"
	SpeedLimitControl        = "SpeedLimitControl"
	SpeedLimitPercOffset     = "SpeedLimitPercOffset"
	SpeedLimitOffsetType     = "SpeedLimitOffsetType"
	SpeedLimitValueOffset    = "SpeedLimitValueOffset"
	TurnSpeedControl         = "TurnSpeedControl"
	ReverseAccChange         = "ReverseAccChange"
	OsmLocalDb               = "OsmLocalDb"
)

// Vehicles.
const (
	CarModel        = "CarModel"
	CarModelText    = "CarModelText"
	HkgSmoothStop   = "HkgSmoothStop"
	StockLongToyota = "StockLongToyota"
	LkasToggle      = "LkasToggle"
	ToyotaTSS2Long  = "ToyotaTSS2Long"
)

// Visuals.
const (
	BrakeLights               = "BrakeLights"
	StandStillTimer           = "StandStillTimer"
	DevUI                     = "DevUI"
	DevUIInfo                 = "DevUIInfo"
	ButtonAutoHide            = "ButtonAutoHide"
	ReverseDmCam              = "ReverseDmCam"
	ShowDebugUI               = "ShowDebugUI"
	CustomMapbox              = "CustomMapbox"
	TrueVEgoUi                = "TrueVEgoUi"
	HideVEgoUi                = "HideVEgoUi"
	ChevronInfo               = "ChevronInfo"
	EndToEndLongAlertUI       = "EndToEndLongAlertUI"
	SidebarTemperature        = "SidebarTemperature"
	SidebarTemperatureOptions = "SidebarTemperatureOptions"
)
