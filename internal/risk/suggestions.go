package risk

// Suggestion is a human-readable remediation hint tied to a risk factor.
type Suggestion struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Factor  string `json:"factor,omitempty"`
}

type suggestionRule struct {
	factor  string
	message string
}

// Per-permission suggestions, emitted in declaration order.
var permissionSuggestions = []suggestionRule{
	{FactorPaymentInfo, "This app can access payment information. Use a virtual card or payment alias where possible."},
	{FactorHealthData, "This app can read health data. Check whether it really needs it to function."},
	{FactorSMS, "SMS access lets this app read one-time codes. Prefer an authenticator app for 2FA."},
	{FactorCallLogs, "Call log access exposes your contact graph. Revoke it if the app works without it."},
	{FactorLocation, "Location access enables movement profiling. Restrict it to while-in-use."},
	{FactorCameraMicrophone, "Camera/microphone access can record you. Review when this app last used them."},
	{FactorContacts, "Contact access shares other people's data too. Deny it unless essential."},
	{FactorStorage, "Storage access exposes files and photos. Use scoped access if the platform offers it."},
	{FactorCookiesTrackers, "This app embeds trackers. Consider a tracker-blocking DNS or firewall."},
	{FactorDeviceID, "Device identifiers enable cross-app tracking. Reset your advertising ID periodically."},
}

// Paired factors that compound each other's exposure.
var synergySuggestions = []struct {
	first, second string
	message       string
}{
	{FactorLocation, FactorCameraMicrophone, "Location combined with camera/microphone access allows full surveillance. Revoke at least one."},
	{FactorPaymentInfo, FactorSMS, "Payment info combined with SMS access can defeat bank confirmation codes. Revoke one of the two."},
}

// GenerateSuggestions maps risk factors to remediation text. The rule list is
// fixed and ordered; every matching rule emits, no priority sort.
func GenerateSuggestions(permissions map[string]bool, hasEmail, hasPhone bool, urlModifier int, level Level) []Suggestion {
	suggestions := []Suggestion{}

	for _, rule := range permissionSuggestions {
		if permissions[rule.factor] {
			suggestions = append(suggestions, Suggestion{
				Type:    "permission",
				Message: rule.message,
				Factor:  rule.factor,
			})
		}
	}

	if hasEmail {
		suggestions = append(suggestions, Suggestion{
			Type:    "identity",
			Message: "You shared an email address with this app. Consider a forwarding alias instead.",
			Factor:  FactorUserEmail,
		})
	}
	if hasPhone {
		suggestions = append(suggestions, Suggestion{
			Type:    "identity",
			Message: "You shared a phone number with this app. Consider a secondary or virtual number.",
			Factor:  FactorUserPhoneNumber,
		})
	}

	if urlModifier > 0 {
		suggestions = append(suggestions, Suggestion{
			Type:    "breach",
			Message: "This app's domain appears in known credential breaches. Change your password there and enable 2FA.",
		})
	}

	for _, rule := range synergySuggestions {
		if permissions[rule.first] && permissions[rule.second] {
			suggestions = append(suggestions, Suggestion{
				Type:    "synergy",
				Message: rule.message,
			})
		}
	}

	if level == LevelHigh || level == LevelCritical {
		suggestions = append(suggestions, Suggestion{
			Type:    "overall",
			Message: "Overall risk for this app is elevated. Review whether you still need it installed.",
		})
	}

	return suggestions
}
