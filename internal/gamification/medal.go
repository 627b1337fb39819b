package gamification

// Medal returns the medal for a 1-based podium position, or "" outside the podium.
func Medal(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return ""
	}
}
