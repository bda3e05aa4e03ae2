package models

const (
	EventAmbulanceUpdate = "ambulance_update"
	EventSignalState     = "signal_state"
	EventSignalApproach  = "signal_approach"
	EventRouteStarted    = "route_started"
	EventRouteStopped    = "route_stopped"
	EventDriverUpdate    = "driverUpdateBroadcast"
	EventNurseUpdate     = "nurseUpdateBroadcast"
	EventRecordsCleared  = "records_cleared"

	CheckpointStrategyAngle    = "angle"
	CheckpointStrategyDistance = "distance"

	ProximityHaversine = "haversine"
	ProximityPlanar    = "planar"

	ConditionCritical = "CRITICAL"
	ConditionSerious  = "SERIOUS"
	ConditionStable   = "STABLE"
)
