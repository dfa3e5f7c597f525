package bootstrap

import (
	"strings"

	appconfig "github.com/wolfman30/whatsapp-booking-assistant/internal/config"
	"github.com/wolfman30/whatsapp-booking-assistant/internal/messaging"
	"github.com/wolfman30/whatsapp-booking-assistant/pkg/logging"
)

// BuildReplyMessenger creates the Twilio WhatsApp sender. It returns a reason
// when credentials are missing.
func BuildReplyMessenger(cfg *appconfig.Config, logger *logging.Logger) (messaging.ReplyMessenger, string) {
	if cfg == nil {
		return nil, "missing config"
	}
	var missing []string
	if cfg.TwilioAccountSID == "" {
		missing = append(missing, "TWILIO_ACCOUNT_SID missing")
	}
	if cfg.TwilioAuthToken == "" {
		missing = append(missing, "TWILIO_AUTH_TOKEN missing")
	}
	if cfg.WhatsAppNumber == "" {
		missing = append(missing, "WHATSAPP_NUMBER missing")
	}
	if len(missing) > 0 {
		return nil, strings.Join(missing, ", ")
	}
	return messaging.NewTwilioSender(cfg.TwilioAccountSID, cfg.TwilioAuthToken, cfg.WhatsAppNumber, logger), ""
}
