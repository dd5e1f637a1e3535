package command

// Player-facing replies.
const (
	MsgUsage             = "Usage: /redstone <create|delete> [endpoint|waypoint] [url]"
	MsgEndpointMaterials = "This requires a redstone block and a quartz block."
	MsgWaypointMaterials = "This requires a redstone lamp."
	MsgInvalidURL        = "Invalid URL."
	MsgOccupied          = "There is already a redstone component here."
	MsgNothingHere       = "There is no redstone component here."
	MsgNotOwner          = "You are not the owner of this component."
	MsgEndpointCreated   = "Endpoint created! Use UUID: "
	MsgWaypointCreated   = "Waypoint created! Use UUID: "
	MsgDeleted           = "Component deleted!"
	MsgSaveFailed        = "Failed to save the component."
	MsgDeleteFailed      = "Failed to delete the component."
)
