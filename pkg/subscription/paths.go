package subscription

import "strconv"

// Hub poll endpoints. Paths are opaque to the transport; the core only
// assembles them from identifiers.

// commandPollPath returns the long-poll endpoint for commands.
func commandPollPath(target string) string {
	if target == TargetAll {
		return "/device/command/poll"
	}
	return "/device/" + target + "/command/poll"
}

// notificationPollPath returns the long-poll endpoint for notifications.
func notificationPollPath(target string) string {
	if target == TargetAll {
		return "/device/notification/poll"
	}
	return "/device/" + target + "/notification/poll"
}

// commandUpdatePollPath returns the long-poll endpoint for one
// command's update.
func commandUpdatePollPath(target string, commandID int64) string {
	return "/device/" + target + "/command/" + strconv.FormatInt(commandID, 10) + "/poll"
}

// commandPath returns the status endpoint for one command.
func commandPath(target string, commandID int64) string {
	return "/device/" + target + "/command/" + strconv.FormatInt(commandID, 10)
}
