package conversation

// Path names the branch a message took.
type Path string

const (
	PathBooking   Path = "booking"
	PathAssistant Path = "assistant"
)

// Decision is either a BookingDecision or an AssistantDecision.
type Decision interface {
	Path() Path
	isDecision()
}

// BookingDecision commits an appointment without consulting the assistant.
type BookingDecision struct {
	Appointment AppointmentRecord
}

func (BookingDecision) Path() Path  { return PathBooking }
func (BookingDecision) isDecision() {}

// AssistantDecision hands the message to the language model.
type AssistantDecision struct {
	Entities ExtractedEntities
	Missing  []string
}

func (AssistantDecision) Path() Path  { return PathAssistant }
func (AssistantDecision) isDecision() {}

// Decide books only when every field is present. Partial information always
// routes to the assistant.
func Decide(entities ExtractedEntities, sourceChannel string) Decision {
	if !entities.Complete() {
		return AssistantDecision{Entities: entities, Missing: entities.Missing()}
	}
	if sourceChannel == "" {
		sourceChannel = ChannelWhatsApp
	}
	return BookingDecision{Appointment: AppointmentRecord{
		PersonName:      entities.PersonName,
		PhoneNumber:     entities.PhoneNumber,
		AppointmentTime: *entities.AppointmentTime,
		SourceChannel:   sourceChannel,
	}}
}
