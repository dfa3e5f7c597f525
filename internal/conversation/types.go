package conversation

import "time"

// ChannelWhatsApp is the source channel stamped on bookings made over WhatsApp.
const ChannelWhatsApp = "whatsapp"

// InboundMessage is one message delivered by the messaging webhook.
type InboundMessage struct {
	SenderAddress string
	BodyText      string
	ReceivedAt    time.Time
}

// ExtractedEntities holds the booking fields found in a message body.
// Empty strings and a nil AppointmentTime mean the field was not found.
type ExtractedEntities struct {
	PersonName      string
	PhoneNumber     string
	AppointmentTime *time.Time
}

func (e ExtractedEntities) HasName() bool  { return e.PersonName != "" }
func (e ExtractedEntities) HasPhone() bool { return e.PhoneNumber != "" }
func (e ExtractedEntities) HasTime() bool {
	return e.AppointmentTime != nil && !e.AppointmentTime.IsZero()
}

// Complete reports whether every field required to book is present.
func (e ExtractedEntities) Complete() bool {
	return e.HasName() && e.HasPhone() && e.HasTime()
}

// Missing lists the absent booking fields in a stable order.
func (e ExtractedEntities) Missing() []string {
	var missing []string
	if !e.HasName() {
		missing = append(missing, "name")
	}
	if !e.HasPhone() {
		missing = append(missing, "phone")
	}
	if !e.HasTime() {
		missing = append(missing, "time")
	}
	return missing
}

// AppointmentRecord is a committed booking. Every field is always populated.
type AppointmentRecord struct {
	PersonName      string    `json:"person_name"`
	PhoneNumber     string    `json:"phone_number"`
	AppointmentTime time.Time `json:"appointment_time"`
	SourceChannel   string    `json:"source_channel"`
}

// ConversationLogEntry records one processed turn, whichever path produced the reply.
type ConversationLogEntry struct {
	SenderAddress string    `json:"sender_address"`
	IncomingText  string    `json:"incoming_text"`
	ReplyText     string    `json:"reply_text"`
	CreatedAt     time.Time `json:"created_at"`
}

// OutboundReply is the single reply produced for an inbound message.
type OutboundReply struct {
	Body               string
	DestinationAddress string
}

// ProcessResult is the full set of effects for the transport layer to apply.
type ProcessResult struct {
	Decision    Decision
	Reply       OutboundReply
	Appointment *AppointmentRecord
	Log         ConversationLogEntry
	// Sanitized is true when the assistant reply was replaced by FallbackReply.
	Sanitized bool
}
