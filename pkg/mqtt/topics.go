package mqtt

import "fmt"

// Topic constants for the circadian agent
const (
	// Circadian context (output)
	TopicCircadianBase  = "automation/context/circadian"
	TopicCircadianTable = "automation/context/circadian_table"

	// Agent status, retained; the broker publishes "offline" via the last will
	TopicStatusBase = "automation/status"

	// Virtual time configuration used by end-to-end scenarios (input)
	TopicTestTimeConfig = "automation/test/time_config"
)

// CircadianTopic returns the context topic for a site
// Pattern: automation/context/circadian/{site}
func CircadianTopic(site string) string {
	return fmt.Sprintf("%s/%s", TopicCircadianBase, site)
}

// CircadianTableTopic returns the projection topic for a site
// Pattern: automation/context/circadian_table/{site}
func CircadianTableTopic(site string) string {
	return fmt.Sprintf("%s/%s", TopicCircadianTable, site)
}

// StatusTopic returns the retained status topic for a service
// Pattern: automation/status/{service}
func StatusTopic(service string) string {
	return fmt.Sprintf("%s/%s", TopicStatusBase, service)
}
