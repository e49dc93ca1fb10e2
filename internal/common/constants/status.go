// internal/common/constants/status.go
package constants

const (
	AppName    = "mower-core"
	AppVersion = "1.0.0"
)

// Connection payloads published on the connection topic
const (
	ConnectionStateConnected    = "CONNECTED"
	ConnectionStateDisconnected = "DISCONNECTED"
)

// MQTT topic suffixes, appended to the configured prefix
const (
	TopicSuffixStatus     = "/status"
	TopicSuffixCommand    = "/command"
	TopicSuffixConnection = "/connection"
)

func StatusTopic(prefix string) string     { return prefix + TopicSuffixStatus }
func CommandTopic(prefix string) string    { return prefix + TopicSuffixCommand }
func ConnectionTopic(prefix string) string { return prefix + TopicSuffixConnection }

// Realtime message types sent over the websocket
const (
	RealtimeTypeStatus = "status"
)

// Battery levels reported as batteryLevel
const (
	BatteryLevelEmpty  = "EMPTY"
	BatteryLevelLow    = "LOW"
	BatteryLevelMedium = "MEDIUM"
	BatteryLevelFull   = "FULL"
)

// Redis key patterns
const (
	MowerStatusPattern    = "mower_status:%s"
	BatteryHistoryPattern = "battery_history:%s"

	BatteryHistoryLength = 500
)
