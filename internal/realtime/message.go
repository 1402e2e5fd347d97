package realtime

type Event string

const (
	EventConnected         Event = "Connected"
	EventLeadCreated       Event = "LeadCreated"
	EventLeadUpdated       Event = "LeadUpdated"
	EventLeadDeleted       Event = "LeadDeleted"
	EventPropertyChanged   Event = "PropertyChanged"
	EventSiteConfigUpdated Event = "SiteConfigUpdated"
)

const (
	// ChannelCRM carries back-office events.
	ChannelCRM = "crm"
	// ChannelPublic carries listing and site-content events.
	ChannelPublic = "public"
)

// UserChannel is the private channel of one back-office user.
func UserChannel(userID string) string { return "user:" + userID }

type Message struct {
	Channel string `json:"channel"`
	Event   Event  `json:"event"`
	Data    any    `json:"data,omitempty"`
}
