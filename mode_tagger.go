package multimodal

// TagNetworkMode overwrites allowed modes of every link with exactly {mode}.
// Dataset is not checked for being homogeneous.
func TagNetworkMode(net *Network, mode TransportMode) {
	for _, link := range net.links {
		link.AllowedModes = NewModeSet(mode)
	}
}

// TagScheduleMode sets transport mode of every route of every line in the schedule
func TagScheduleMode(schedule *TransitSchedule, mode TransportMode) {
	for _, line := range schedule.lines {
		for _, route := range line.routes {
			route.TransportMode = mode
		}
	}
}
